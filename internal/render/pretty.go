package render

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"mwconv/internal/token"
)

const kindWidth = 15

type palette struct {
	tag, marker, macro, text, dim *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		tag:    color.New(color.FgCyan),
		marker: color.New(color.FgMagenta, color.Bold),
		macro:  color.New(color.FgYellow),
		text:   color.New(color.FgWhite),
		dim:    color.New(color.Faint),
	}
	for _, c := range []*color.Color{p.tag, p.marker, p.macro, p.text, p.dim} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) forKind(t *token.Token) *color.Color {
	switch t.Kind {
	case token.StartTag, token.SelfClosingTag:
		if t.IsProvenanceMarker() {
			return p.marker
		}
		return p.tag
	case token.EndTag:
		return p.tag
	case token.Template, token.TemplateArg:
		return p.macro
	case token.Text, token.Newline:
		return p.text
	case token.Comment, token.Invalid, token.EOF:
		return p.dim
	}
	return p.dim
}

// Pretty writes one numbered line per token with the kind column padded to
// a fixed display width. Positions are shown when opts.Files is set.
func Pretty(w io.Writer, toks []token.Token, opts Options) error {
	bw := bufio.NewWriter(w)
	p := newPalette(opts.Color)
	for i := range toks {
		t := &toks[i]
		kind := runewidth.FillRight(t.Kind.String(), kindWidth)
		fmt.Fprintf(bw, "%3d: %s %s", i+1, p.forKind(t).Sprint(kind), describe(t))
		if opts.Files != nil && int(t.Span.File) < opts.Files.Len() && !t.Span.Empty() {
			start, end := opts.Files.Resolve(t.Span)
			fmt.Fprint(bw, p.dim.Sprintf(" at %d:%d-%d:%d", start.Line, start.Col, end.Line, end.Col))
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

func describe(t *token.Token) string {
	switch t.Kind {
	case token.Text, token.Comment:
		return fmt.Sprintf("%q", t.Text)
	case token.StartTag, token.SelfClosingTag:
		var sb strings.Builder
		sb.WriteString(t.Name)
		for _, a := range t.Attrs {
			fmt.Fprintf(&sb, " %s=%q", a.Key.String(), a.Val.String())
		}
		if t.Data.Src != "" {
			fmt.Fprintf(&sb, " src=%q", t.Data.Src)
		}
		return sb.String()
	case token.EndTag:
		return t.Name
	case token.Template, token.TemplateArg:
		return t.Data.Src
	case token.Newline, token.Invalid, token.EOF:
		return ""
	}
	return ""
}
