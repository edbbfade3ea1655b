package expand

import "mwconv/internal/token"

// DefaultMaxDepth bounds nested template expansion when no limit is configured.
const DefaultMaxDepth = 40

// Frame is the execution context of one expansion level.
type Frame struct {
	Title    string
	Args     map[string][]token.Token
	Depth    int
	MaxDepth int
	// Tracking wraps top-level expansions in provenance markers.
	Tracking bool
}

// NewFrame returns the document-level frame.
func NewFrame(maxDepth int, tracking bool) *Frame {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Frame{MaxDepth: maxDepth, Tracking: tracking}
}

// Child returns the frame a template body runs in.
func (f *Frame) Child(title string, args map[string][]token.Token) *Frame {
	return &Frame{
		Title:    title,
		Args:     args,
		Depth:    f.Depth + 1,
		MaxDepth: f.MaxDepth,
		Tracking: f.Tracking,
	}
}

// Arg returns the expanded tokens bound to name.
func (f *Frame) Arg(name string) ([]token.Token, bool) {
	if f == nil || f.Args == nil {
		return nil, false
	}
	v, ok := f.Args[name]
	return v, ok
}
