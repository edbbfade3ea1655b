// Package session holds the per-conversion context shared by transforms:
// the grouping-id counter, the logger and the tracer.
package session

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mwconv/internal/logger"
	"mwconv/internal/trace"
)

// GroupingPrefix starts every grouping id handed out by a Session.
const GroupingPrefix = "#mwt"

// Session is created once per conversion and passed to every transform.
// NextUID is safe to call from expansion goroutines.
type Session struct {
	RunID  string
	Log    *zap.SugaredLogger
	Tracer trace.Tracer

	uid atomic.Int64
}

// Option customizes a new Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(s *Session) {
		if l != nil {
			s.Log = l
		}
	}
}

// WithTracer sets the session tracer.
func WithTracer(t trace.Tracer) Option {
	return func(s *Session) {
		if t != nil {
			s.Tracer = t
		}
	}
}

// New creates a session with a fresh run id.
func New(opts ...Option) *Session {
	s := &Session{
		RunID:  uuid.New().String(),
		Log:    logger.Named("session"),
		Tracer: trace.Nop,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Log = s.Log.With("run", s.RunID)
	return s
}

// NextUID returns the next counter value, starting at 1.
func (s *Session) NextUID() int64 {
	return s.uid.Add(1)
}

// GroupingID returns a fresh "#mwt<N>" identifier.
func (s *Session) GroupingID() string {
	return GroupingPrefix + strconv.FormatInt(s.NextUID(), 10)
}
