package lexer

import (
	"mwconv/internal/source"
	"mwconv/internal/token"
)

// Lexer turns one document into markup tokens. It never fails: malformed
// constructs are reported as warnings and kept as text.
type Lexer struct {
	file   *source.File
	cursor Cursor
	opts   Options
	look   *token.Token // 1 элементный буфер для токена
	// failed remembers offsets where a macro scan found no closer,
	// so retries from enclosing constructs stay linear.
	failed map[uint32]struct{}
}

func New(file *source.File, opts Options) *Lexer {
	return &Lexer{
		file:   file,
		cursor: NewCursor(file),
		opts:   opts,
		failed: make(map[uint32]struct{}),
	}
}

// Tokenize lexes the whole file. The trailing EOF token is not included.
func Tokenize(file *source.File, opts Options) []token.Token {
	lx := New(file, opts)
	out := make([]token.Token, 0, len(file.Content)/8+1)
	for {
		tok := lx.Next()
		if tok.Kind == token.EOF {
			return out
		}
		out = append(out, tok)
	}
}

// Next returns the next token. After the end it always returns EOF.
func (lx *Lexer) Next() token.Token {
	if lx.look != nil {
		tok := *lx.look
		lx.look = nil
		return tok
	}
	if lx.cursor.EOF() {
		return token.Token{Kind: token.EOF, Span: lx.emptySpan()}
	}

	switch ch := lx.cursor.Peek(); {
	case ch == '\n':
		start := lx.cursor.Mark()
		lx.cursor.Bump()
		return token.Token{Kind: token.Newline, Span: lx.cursor.SpanFrom(start)}
	case ch == '<':
		if tok, ok := lx.scanAngle(); ok {
			return tok
		}
	case lx.cursor.HasPrefix("{{"):
		if tok, ok := lx.scanMacro(); ok {
			return tok
		}
	}
	return lx.scanText()
}

// Peek returns the next token without consuming it.
func (lx *Lexer) Peek() token.Token {
	t := lx.Next()
	lx.look = &t
	return t
}

func (lx *Lexer) emptySpan() source.Span {
	return source.Span{File: lx.file.ID, Start: lx.cursor.Off, End: lx.cursor.Off}
}

// scanText consumes at least one byte, then stops before the next newline,
// tag opener or macro opener.
func (lx *Lexer) scanText() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump()
	for !lx.cursor.EOF() {
		ch := lx.cursor.Peek()
		if ch == '\n' || ch == '<' || (ch == '{' && lx.cursor.PeekAt(1) == '{' && !lx.knownFailure()) {
			break
		}
		lx.cursor.Bump()
	}
	return token.Token{
		Kind: token.Text,
		Text: lx.cursor.TextFrom(start),
		Span: lx.cursor.SpanFrom(start),
	}
}

func (lx *Lexer) knownFailure() bool {
	_, ok := lx.failed[lx.cursor.Off]
	return ok
}
