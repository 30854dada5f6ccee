// Package prof toggles the runtime profilers for one CLI invocation.
package prof

import (
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"
)

// Session holds the profilers started for a run. Stop it exactly once
// when the run ends; a nil Session stops as a no-op.
type Session struct {
	cpu      *os.File
	trace    *os.File
	heapPath string
}

// Start enables the profilers whose paths are non-empty. On any
// failure it stops whatever already started and returns the error.
func Start(cpuPath, tracePath, heapPath string) (*Session, error) {
	s := &Session{heapPath: heapPath}
	if cpuPath != "" {
		f, err := os.Create(cpuPath)
		if err != nil {
			return nil, err
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return nil, err
		}
		s.cpu = f
	}
	if tracePath != "" {
		f, err := os.Create(tracePath)
		if err != nil {
			s.Stop()
			return nil, err
		}
		if err := trace.Start(f); err != nil {
			_ = f.Close()
			s.Stop()
			return nil, err
		}
		s.trace = f
	}
	return s, nil
}

// Stop ends the active profilers and writes the heap profile when one
// was requested. The heap write happens last so it sees the run's
// final allocation state. Safe to call more than once.
func (s *Session) Stop() error {
	if s == nil {
		return nil
	}
	if s.trace != nil {
		trace.Stop()
		_ = s.trace.Close()
		s.trace = nil
	}
	if s.cpu != nil {
		pprof.StopCPUProfile()
		_ = s.cpu.Close()
		s.cpu = nil
	}
	if s.heapPath != "" {
		path := s.heapPath
		s.heapPath = ""
		return WriteHeap(path)
	}
	return nil
}

// WriteHeap captures a heap profile after forcing a collection, so
// the snapshot shows live objects rather than garbage.
func WriteHeap(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	runtime.GC()
	if err := pprof.WriteHeapProfile(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
