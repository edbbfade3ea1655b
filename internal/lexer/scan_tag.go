package lexer

import (
	"strings"

	"mwconv/internal/diag"
	"mwconv/internal/source"
	"mwconv/internal/token"
)

// scanAngle lexes a comment, an end tag or a start tag at '<'.
// It returns false, with the cursor unchanged, when the bytes are plain text.
func (lx *Lexer) scanAngle() (token.Token, bool) {
	start := lx.cursor.Mark()
	if lx.cursor.EatPrefix("<!--") {
		return lx.scanComment(start)
	}
	lx.cursor.Bump()
	closing := lx.cursor.Eat('/')
	name := lx.scanTagName()
	if name == "" {
		lx.cursor.Reset(start)
		return token.Token{}, false
	}

	if closing {
		lx.skipSpace()
		if !lx.cursor.Eat('>') {
			lx.cursor.Reset(start)
			return token.Token{}, false
		}
		return token.Token{Kind: token.EndTag, Name: name, Span: lx.cursor.SpanFrom(start)}, true
	}

	attrs, selfClosing, ok := lx.scanAttrs(start)
	if !ok {
		lx.cursor.Reset(start)
		return token.Token{}, false
	}
	tok := token.NewTag(token.StartTag, name, attrs...)
	if selfClosing {
		tok.Kind = token.SelfClosingTag
		tok.Data.TSR = true
	}
	tok.Span = lx.cursor.SpanFrom(start)
	return tok, true
}

func (lx *Lexer) scanComment(start Mark) (token.Token, bool) {
	body := lx.cursor.Mark()
	for !lx.cursor.EOF() && !lx.cursor.HasPrefix("-->") {
		lx.cursor.Bump()
	}
	if lx.cursor.EOF() {
		lx.report(diag.LexUnterminatedComment,
			source.Span{File: lx.file.ID, Start: uint32(start), End: uint32(start) + 4},
			"unterminated comment, missing '-->'")
		lx.cursor.Reset(start)
		return token.Token{}, false
	}
	text := lx.cursor.TextFrom(body)
	lx.cursor.BumpN(3)
	return token.Token{Kind: token.Comment, Text: text, Span: lx.cursor.SpanFrom(start)}, true
}

func (lx *Lexer) scanTagName() string {
	start := lx.cursor.Mark()
	if !isLetter(lx.cursor.Peek()) {
		return ""
	}
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		if !isLetter(b) && !isDigit(b) && b != '-' && b != ':' {
			break
		}
		lx.cursor.Bump()
	}
	return strings.ToLower(lx.cursor.TextFrom(start))
}

// scanAttrs reads attributes up to '>' or '/>'.
func (lx *Lexer) scanAttrs(tagStart Mark) (attrs []token.Attr, selfClosing, ok bool) {
	for {
		lx.skipSpace()
		switch {
		case lx.cursor.EOF():
			lx.report(diag.LexUnterminatedTag, lx.cursor.SpanFrom(tagStart), "unterminated tag, missing '>'")
			return nil, false, false
		case lx.cursor.EatPrefix("/>"):
			return attrs, true, true
		case lx.cursor.Eat('>'):
			return attrs, false, true
		case lx.cursor.Peek() == '=':
			// stray '=' without a key
			lx.cursor.Bump()
			continue
		}

		attrStart := lx.cursor.Mark()
		key := lx.scanRun(func() bool {
			b := lx.cursor.Peek()
			return isSpace(b) || b == '=' || b == '>' || lx.cursor.HasPrefix("/>")
		})
		if lx.cursor.Off == uint32(attrStart) {
			// a lone '/' not followed by '>'
			lx.cursor.Bump()
			continue
		}

		val := token.Lit("")
		valStart := lx.cursor.Mark()
		lx.skipSpace()
		if lx.cursor.Eat('=') {
			lx.skipSpace()
			v, vok := lx.scanAttrValue(tagStart)
			if !vok {
				return nil, false, false
			}
			val = v
		} else {
			lx.cursor.Reset(valStart)
		}
		attrs = append(attrs, token.Attr{Key: makeValue(key), Val: val, Span: lx.cursor.SpanFrom(attrStart)})
	}
}

func (lx *Lexer) scanAttrValue(tagStart Mark) (token.Value, bool) {
	if q := lx.cursor.Peek(); q == '"' || q == '\'' {
		quoteAt := lx.cursor.Mark()
		lx.cursor.Bump()
		toks := lx.scanRun(func() bool { return lx.cursor.Peek() == q })
		if !lx.cursor.Eat(q) {
			lx.report(diag.LexUnterminatedQuote,
				source.Span{File: lx.file.ID, Start: uint32(quoteAt), End: uint32(quoteAt) + 1},
				"unterminated attribute quote")
			lx.report(diag.LexUnterminatedTag, lx.cursor.SpanFrom(tagStart), "unterminated tag, missing '>'")
			return token.Value{}, false
		}
		return makeValue(toks), true
	}
	toks := lx.scanRun(func() bool {
		b := lx.cursor.Peek()
		return isSpace(b) || b == '>' || lx.cursor.HasPrefix("/>")
	})
	return makeValue(toks), true
}

func (lx *Lexer) skipSpace() {
	for !lx.cursor.EOF() && isSpace(lx.cursor.Peek()) {
		lx.cursor.Bump()
	}
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f'
}

func isLetter(b byte) bool { return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') }

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
