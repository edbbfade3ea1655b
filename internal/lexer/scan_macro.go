package lexer

import (
	"strconv"
	"strings"

	"mwconv/internal/diag"
	"mwconv/internal/source"
	"mwconv/internal/token"
)

// scanMacro lexes {{target|args}} or {{{name|default}}} at the cursor.
// On failure the cursor is left unchanged and the offset is remembered.
func (lx *Lexer) scanMacro() (token.Token, bool) {
	if lx.knownFailure() {
		return token.Token{}, false
	}
	start := lx.cursor.Mark()
	isArg := lx.cursor.HasPrefix("{{{")
	if isArg {
		if tok, ok := lx.scanTemplateArg(start); ok {
			return tok, true
		}
		lx.cursor.Reset(start)
	}
	tok, ok, reported := lx.scanTemplate(start)
	if ok {
		return tok, true
	}
	lx.cursor.Reset(start)
	lx.failed[uint32(start)] = struct{}{}
	if !reported {
		code, msg := diag.LexUnterminatedTemplate, "unterminated template invocation, missing '}}'"
		if isArg {
			code, msg = diag.LexUnterminatedArg, "unterminated template argument, missing '}}}'"
		}
		lx.report(code, source.Span{File: lx.file.ID, Start: uint32(start), End: uint32(start) + 2}, msg)
	}
	return token.Token{}, false
}

type piece struct {
	toks []token.Token
	span source.Span
}

// scanPieces splits the body of a macro on top-level pipes up to closer.
func (lx *Lexer) scanPieces(closer string) ([]piece, bool) {
	var pieces []piece
	for {
		at := lx.cursor.Mark()
		toks := lx.scanRun(func() bool {
			return lx.cursor.Peek() == '|' || lx.cursor.HasPrefix(closer)
		})
		pieces = append(pieces, piece{toks: toks, span: lx.cursor.SpanFrom(at)})
		switch {
		case lx.cursor.EatPrefix(closer):
			return pieces, true
		case lx.cursor.Eat('|'):
			continue
		default:
			return nil, false
		}
	}
}

func (lx *Lexer) scanTemplate(start Mark) (tok token.Token, ok, reported bool) {
	lx.cursor.BumpN(2)
	pieces, ok := lx.scanPieces("}}")
	if !ok {
		return token.Token{}, false, false
	}
	name := strings.TrimSpace(token.ToString(pieces[0].toks))
	if name == "" {
		lx.report(diag.LexEmptyTemplateName, lx.cursor.SpanFrom(start), "template invocation without a name")
		return token.Token{}, false, true
	}

	// Attrs[0] is the target; arguments follow.
	attrs := make([]token.Attr, 0, len(pieces))
	attrs = append(attrs, token.Attr{Key: makeValue(trimSeq(pieces[0].toks)), Val: token.Lit(""), Span: pieces[0].span})
	pos := 0
	for _, p := range pieces[1:] {
		if key, val, named := splitNamed(p.toks); named {
			attrs = append(attrs, token.Attr{Key: token.Lit(key), Val: makeValue(trimSeq(val)), Span: p.span})
			continue
		}
		pos++
		attrs = append(attrs, token.Attr{Key: token.Lit(strconv.Itoa(pos)), Val: makeValue(p.toks), Span: p.span})
	}

	return token.Token{
		Kind:  token.Template,
		Name:  name,
		Attrs: attrs,
		Span:  lx.cursor.SpanFrom(start),
		Data:  token.DataAttrs{Src: lx.cursor.TextFrom(start)},
	}, true, false
}

func (lx *Lexer) scanTemplateArg(start Mark) (token.Token, bool) {
	lx.cursor.BumpN(3)
	pieces, ok := lx.scanPieces("}}}")
	if !ok {
		return token.Token{}, false
	}
	tok := token.Token{
		Kind: token.TemplateArg,
		Name: strings.TrimSpace(token.ToString(pieces[0].toks)),
		Span: lx.cursor.SpanFrom(start),
		Data: token.DataAttrs{Src: lx.cursor.TextFrom(start)},
	}
	if len(pieces) > 1 {
		tok.Attrs = []token.Attr{{Key: token.Lit(token.DefaultKey), Val: makeValue(pieces[1].toks), Span: pieces[1].span}}
	}
	return tok, true
}

// splitNamed detects "name=value" when the '=' sits in leading plain text.
func splitNamed(toks []token.Token) (string, []token.Token, bool) {
	if len(toks) == 0 || toks[0].Kind != token.Text {
		return "", nil, false
	}
	head := toks[0]
	idx := strings.IndexByte(head.Text, '=')
	if idx < 0 {
		return "", nil, false
	}
	key := strings.TrimSpace(head.Text[:idx])
	rest := make([]token.Token, 0, len(toks))
	if tail := head.Text[idx+1:]; tail != "" {
		head.Text = tail
		head.Span.Start += uint32(idx + 1) //nolint:gosec // idx < len(head.Text)
		rest = append(rest, head)
	}
	rest = append(rest, toks[1:]...)
	return key, rest, true
}

// trimSeq trims surrounding whitespace of a named argument value.
func trimSeq(toks []token.Token) []token.Token {
	if len(toks) == 0 {
		return toks
	}
	out := make([]token.Token, 0, len(toks))
	for i, t := range toks {
		if t.Kind == token.Text {
			if i == 0 {
				t.Text = strings.TrimLeft(t.Text, " \t\n")
			}
			if i == len(toks)-1 {
				t.Text = strings.TrimRight(t.Text, " \t\n")
			}
			if t.Text == "" {
				continue
			}
		}
		out = append(out, t)
	}
	return out
}

// makeValue keeps plain text literal and only builds a sequence when the
// field still contains macros.
func makeValue(toks []token.Token) token.Value {
	for i := range toks {
		if toks[i].Kind.IsMacro() {
			return token.SeqOf(toks...)
		}
	}
	return token.Lit(token.ToString(toks))
}

// scanRun lexes text and nested macros until stop reports true or the
// input ends. Links ([[a|b]]) are skipped whole so their pipes do not split arguments.
func (lx *Lexer) scanRun(stop func() bool) []token.Token {
	var toks []token.Token
	textStart := lx.cursor.Mark()
	flush := func() {
		if lx.cursor.Off > uint32(textStart) {
			toks = append(toks, token.Token{
				Kind: token.Text,
				Text: lx.cursor.TextFrom(textStart),
				Span: lx.cursor.SpanFrom(textStart),
			})
		}
		textStart = lx.cursor.Mark()
	}

	for !lx.cursor.EOF() && !stop() {
		switch {
		case lx.cursor.HasPrefix("{{") && !lx.knownFailure():
			flush()
			if tok, ok := lx.scanMacro(); ok {
				toks = append(toks, tok)
				textStart = lx.cursor.Mark()
				continue
			}
			lx.cursor.BumpN(2)
		case lx.cursor.HasPrefix("[["):
			lx.cursor.BumpN(lx.linkLen())
		default:
			lx.cursor.Bump()
		}
	}
	flush()
	return toks
}

// linkLen returns the length of a [[...]] link at the cursor, or 2 when the
// brackets do not close on a plain run.
func (lx *Lexer) linkLen() int {
	rest := lx.file.Content[lx.cursor.Off:lx.cursor.Limit]
	for i := 2; i+1 < len(rest); i++ {
		switch rest[i] {
		case ']':
			if rest[i+1] == ']' {
				return i + 2
			}
		case '\n', '"', '\'', '<', '>', '{', '}':
			return 2
		}
	}
	return 2
}
