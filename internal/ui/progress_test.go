package ui

import (
	"strings"
	"testing"

	"mwconv/internal/driver"
)

func TestProgressModelTracksFiles(t *testing.T) {
	m := NewProgressModel("convert", []string{"a.wiki", "b.wiki"}, nil).(*progressModel)

	m.Update(eventMsg(driver.Event{File: "a.wiki", Stage: driver.StageExpand, Status: driver.StatusWorking}))
	m.Update(eventMsg(driver.Event{File: "b.wiki", Stage: driver.StageExpand, Status: driver.StatusCached}))
	m.Update(eventMsg(driver.Event{File: "unknown.wiki", Stage: driver.StageLex, Status: driver.StatusWorking}))

	view := m.View()
	if !strings.Contains(view, "expanding") || !strings.Contains(view, "cached") {
		t.Errorf("view:\n%s", view)
	}
	if got := itemProgress(m.items[0]); got != 0.6 {
		t.Errorf("progress of a working file = %v", got)
	}
	if got := itemProgress(m.items[1]); got != 1.0 {
		t.Errorf("progress of a cached file = %v", got)
	}
}

func TestProgressModelReportsFailures(t *testing.T) {
	m := NewProgressModel("convert", []string{"a.wiki"}, nil).(*progressModel)
	m.Update(eventMsg(driver.Event{File: "a.wiki", Stage: driver.StageExpand, Status: driver.StatusError, Err: errTest}))
	m.Update(doneMsg{})
	view := m.View()
	if !strings.Contains(view, "done: convert, 1 failed") {
		t.Errorf("view:\n%s", view)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"a-long-path.wiki", 8, "a-lon..."},
		{"日本語の文書", 5, "日..."},
		{"abc", 0, "abc"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

type testError string

func (e testError) Error() string { return string(e) }

const errTest = testError("boom")
