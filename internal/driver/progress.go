package driver

import "time"

// Stage names a step of converting one document.
type Stage string

const (
	// StageLoad reads and normalizes the document.
	StageLoad Stage = "load"
	// StageLex tokenizes the document.
	StageLex Stage = "lex"
	// StageExpand runs the template and attribute transforms.
	StageExpand Stage = "expand"
)

// Status is the state of a document within a stage.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	StatusDone    Status = "done"
	StatusCached  Status = "cached"
	StatusError   Status = "error"
)

// Event reports progress for a file (or for the whole run when File is empty).
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. OnEvent may be called from
// several goroutines.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}
