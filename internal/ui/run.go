package ui

import (
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"mwconv/internal/driver"
)

// Run shows progress for files until events is closed. work runs in its own
// goroutine with a sink feeding the view and must not close events itself.
func Run[T any](title string, files []string, out io.Writer, work func(sink driver.ProgressSink) (T, error)) (T, error) {
	type outcome struct {
		val T
		err error
	}
	events := make(chan driver.Event, 256)
	done := make(chan outcome, 1)

	go func() {
		val, err := work(driver.ChannelSink{Ch: events})
		done <- outcome{val: val, err: err}
		close(events)
	}()

	model := NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(out), tea.WithInput(nil))
	_, uiErr := program.Run()
	// the view may stop early; keep the sink from blocking the work
	go func() {
		for range events {
		}
	}()
	res := <-done
	if uiErr != nil {
		return res.val, uiErr
	}
	return res.val, res.err
}
