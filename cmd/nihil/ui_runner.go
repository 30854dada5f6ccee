package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"nihil/internal/driver"
	"nihil/internal/ui"
)

type checkOutcome struct {
	result *driver.Result
	err    error
}

// runCheckWithUI runs the check on its own goroutine and renders phase
// progress until the driver closes the event stream.
func runCheckWithUI(ctx context.Context, title string, sess *driver.Session, bundlePath string, opts driver.Options) (*driver.Result, error) {
	events := make(chan driver.PhaseEvent, 256)
	outcomeCh := make(chan checkOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Observer = ui.Observer(events)
		res, err := driver.CheckBundle(ctx, sess, bundlePath, optsCopy)
		outcomeCh <- checkOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, driver.PhaseNames(opts.ExportPath != ""), events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
