// Package ui renders terminal progress for long-running checks.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"nihil/internal/driver"
)

const (
	defaultWidth  = 80
	maxLabelWidth = 48
)

// phaseWeight maps a finished phase to overall completion. The later
// analysis phases dominate wall time, so the bar spends most of its
// travel there.
var phaseWeight = map[string]float64{
	driver.PhaseReadBundle:     0.05,
	driver.PhaseReadManifest:   0.10,
	driver.PhaseResolveImports: 0.20,
	driver.PhaseDecode:         0.35,
	driver.PhaseInfer:          0.55,
	driver.PhaseNarrow:         0.85,
	driver.PhaseClassify:       0.95,
	driver.PhaseExport:         1.0,
}

type phaseItem struct {
	name    string
	status  string
	elapsed time.Duration
}

type eventMsg driver.PhaseEvent

type doneMsg struct{}

type progressModel struct {
	title   string
	events  <-chan driver.PhaseEvent
	spinner spinner.Model
	prog    progress.Model
	items   []phaseItem
	index   map[string]int
	width   int
	done    bool
}

// Observer adapts an event channel into the driver's observer
// callback. The send never blocks: when the channel is full the event
// is dropped, which only costs display fidelity.
func Observer(events chan<- driver.PhaseEvent) driver.PhaseObserver {
	return func(ev driver.PhaseEvent) {
		select {
		case events <- ev:
		default:
		}
	}
}

// NewProgressModel builds a Bubble Tea model showing one row per
// check phase. phases fixes the rows up front; events drive their
// status until the channel closes.
func NewProgressModel(title string, phases []string, events <-chan driver.PhaseEvent) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	pr := progress.New(progress.WithDefaultGradient())
	pr.Width = defaultWidth - 4

	items := make([]phaseItem, 0, len(phases))
	index := make(map[string]int, len(phases))
	for _, name := range phases {
		index[name] = len(items)
		items = append(items, phaseItem{name: name, status: "queued"})
	}

	return progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    pr,
		items:   items,
		index:   index,
		width:   defaultWidth,
	}
}

func (m progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, listenForEvent(m.events))
}

func listenForEvent(events <-chan driver.PhaseEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.applyEvent(driver.PhaseEvent(msg))
		return m, tea.Batch(cmd, listenForEvent(m.events))

	case doneMsg:
		m.done = true
		return m, tea.Quit

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.prog.Width = msg.Width - 4
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		pm, cmd := m.prog.Update(msg)
		m.prog = pm.(progress.Model)
		return m, cmd

	default:
		return m, nil
	}
}

func (m *progressModel) applyEvent(ev driver.PhaseEvent) tea.Cmd {
	idx, ok := m.index[ev.Name]
	if !ok {
		// Phases not announced up front still get a row.
		m.index[ev.Name] = len(m.items)
		m.items = append(m.items, phaseItem{name: ev.Name, status: "queued"})
		idx = len(m.items) - 1
	}
	switch ev.Status {
	case driver.PhaseStart:
		m.items[idx].status = "running"
	case driver.PhaseEnd:
		m.items[idx].status = "done"
		m.items[idx].elapsed = ev.Elapsed
		if pct, ok := phaseWeight[ev.Name]; ok {
			return m.prog.SetPercent(pct)
		}
	}
	return nil
}

func (m progressModel) View() string {
	var b strings.Builder

	title := truncate(m.title, m.width-4)
	if m.done {
		b.WriteString(doneStyle.Render("✓") + " " + title + "\n")
	} else {
		b.WriteString(m.spinner.View() + " " + title + "\n")
	}

	for _, it := range m.items {
		b.WriteString("  ")
		b.WriteString(styleStatus(it.status))
		b.WriteString(" ")
		b.WriteString(truncate(it.name, maxLabelWidth))
		if it.status == "done" && it.elapsed > 0 {
			b.WriteString(elapsedStyle.Render(fmt.Sprintf(" %.1fms", float64(it.elapsed.Microseconds())/1000.0)))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteString("\n")
	return b.String()
}

var (
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	workingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	queuedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	elapsedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func styleStatus(status string) string {
	padded := fmt.Sprintf("%-7s", status)
	switch status {
	case "done":
		return doneStyle.Render(padded)
	case "error":
		return errorStyle.Render(padded)
	case "running":
		return workingStyle.Render(padded)
	case "queued":
		return queuedStyle.Render(padded)
	default:
		return padded
	}
}

func truncate(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "...")
}
