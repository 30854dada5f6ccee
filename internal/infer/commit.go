package infer

import "nihil/internal/nullness"

// Commit resolves id and everything it transitively depends on, then
// returns id's value. Committing is idempotent: a second call returns
// the stored value without revisiting anything.
//
// Variable dependencies may form cycles (mutually recursive bindings
// widen each other). A cycle means the members' nullness flows into
// one another, so the whole strongly connected group resolves to a
// single value: Nullable when any member saw a Nullable or Oblivious
// bound, NonNull otherwise. Tarjan's walk pops groups in dependency
// order, so every bound outside a group is committed before the group
// reads it.
func (t *Table) Commit(id nullness.VarID) nullness.Value {
	v := t.state(id)
	if v == nil {
		return nullness.NonNull
	}
	v.mu.Lock()
	committed, val := v.committed, v.value
	v.mu.Unlock()
	if committed {
		return val
	}

	c := &committer{
		t:       t,
		index:   make(map[nullness.VarID]int),
		lowlink: make(map[nullness.VarID]int),
		onStack: make(map[nullness.VarID]bool),
	}
	c.visit(id)

	val, _ = t.Resolved(id)
	return val
}

type committer struct {
	t       *Table
	index   map[nullness.VarID]int
	lowlink map[nullness.VarID]int
	onStack map[nullness.VarID]bool
	stack   []nullness.VarID
	next    int
}

func (c *committer) visit(id nullness.VarID) {
	v := c.t.state(id)
	if v == nil {
		return
	}
	v.mu.Lock()
	if v.committed {
		v.mu.Unlock()
		return
	}
	deps := append([]nullness.VarID(nil), v.deps...)
	v.mu.Unlock()

	c.index[id] = c.next
	c.lowlink[id] = c.next
	c.next++
	c.stack = append(c.stack, id)
	c.onStack[id] = true

	for _, d := range deps {
		dv := c.t.state(d)
		if dv == nil {
			continue
		}
		dv.mu.Lock()
		done := dv.committed
		dv.mu.Unlock()
		if done {
			continue
		}
		if _, seen := c.index[d]; !seen {
			c.visit(d)
			if c.lowlink[d] < c.lowlink[id] {
				c.lowlink[id] = c.lowlink[d]
			}
		} else if c.onStack[d] {
			if c.index[d] < c.lowlink[id] {
				c.lowlink[id] = c.index[d]
			}
		}
	}

	if c.lowlink[id] == c.index[id] {
		var group []nullness.VarID
		for {
			n := len(c.stack) - 1
			m := c.stack[n]
			c.stack = c.stack[:n]
			c.onStack[m] = false
			group = append(group, m)
			if m == id {
				break
			}
		}
		c.resolve(group)
	}
}

// resolve commits one strongly connected group. Edges inside the group
// contribute through the shared verdict; edges out of it read values
// committed by earlier pops.
func (c *committer) resolve(group []nullness.VarID) {
	val := nullness.NonNull
	for _, m := range group {
		v := c.t.state(m)
		if v == nil {
			continue
		}
		v.mu.Lock()
		if v.bounds&(boundNullable|boundOblivious) != 0 {
			val = nullness.Nullable
		}
		deps := v.deps
		v.mu.Unlock()
		for _, d := range deps {
			if dval, ok := c.t.Resolved(d); ok && dval != nullness.NonNull {
				val = nullness.Nullable
			}
		}
	}
	for _, m := range group {
		v := c.t.state(m)
		if v == nil {
			continue
		}
		v.mu.Lock()
		v.committed = true
		v.value = val
		v.mu.Unlock()
	}
}
