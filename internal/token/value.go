package token

import (
	"strings"

	"mwconv/internal/source"
)

// Value is one attribute field: a literal string or an ordered sub-token sequence.
type Value struct {
	Str  string  `json:"str,omitempty" msgpack:"s,omitempty"`
	Toks []Token `json:"toks,omitempty" msgpack:"t,omitempty"`
	Seq  bool    `json:"seq,omitempty" msgpack:"q,omitempty"`
}

// Lit builds a literal field.
func Lit(s string) Value { return Value{Str: s} }

// SeqOf builds a sub-token sequence field.
func SeqOf(toks ...Token) Value {
	if toks == nil {
		toks = []Token{}
	}
	return Value{Toks: toks, Seq: true}
}

// IsSeq reports whether the field is a sub-token sequence.
func (v Value) IsSeq() bool { return v.Seq }

// Literal returns the literal string and whether the field is literal.
func (v Value) Literal() (string, bool) {
	if v.Seq {
		return "", false
	}
	return v.Str, true
}

// Tokens returns the sub-token sequence, or nil for a literal.
func (v Value) Tokens() []Token {
	if !v.Seq {
		return nil
	}
	return v.Toks
}

// String flattens the field to text. Sequences go through ToString.
func (v Value) String() string {
	if !v.Seq {
		return v.Str
	}
	return ToString(v.Toks)
}

// HasMacros reports whether a sequence still contains unexpanded markup.
func (v Value) HasMacros() bool {
	if !v.Seq {
		return false
	}
	for i := range v.Toks {
		if v.Toks[i].Kind.IsMacro() {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the field.
func (v Value) Clone() Value {
	if !v.Seq {
		return v
	}
	return Value{Toks: CloneAll(v.Toks), Seq: true}
}

// Attr is an ordered key/value pair on a tag.
type Attr struct {
	Key  Value       `json:"key" msgpack:"k"`
	Val  Value       `json:"val" msgpack:"v"`
	Span source.Span `json:"span" msgpack:"sp"`
}

// KV builds a literal attribute.
func KV(k, v string) Attr {
	return Attr{Key: Lit(k), Val: Lit(v)}
}

// Clone returns a deep copy of the attribute.
func (a Attr) Clone() Attr {
	return Attr{Key: a.Key.Clone(), Val: a.Val.Clone(), Span: a.Span}
}

// CloneAttrs deep-copies an attribute list; nil stays nil.
func CloneAttrs(attrs []Attr) []Attr {
	if attrs == nil {
		return nil
	}
	out := make([]Attr, len(attrs))
	for i := range attrs {
		out[i] = attrs[i].Clone()
	}
	return out
}

// ToString concatenates the textual content of a token sequence.
// Tags contribute nothing; unexpanded macros contribute their raw source.
func ToString(toks []Token) string {
	var sb strings.Builder
	for i := range toks {
		t := &toks[i]
		switch t.Kind {
		case Text:
			sb.WriteString(t.Text)
		case Newline:
			sb.WriteByte('\n')
		case Template, TemplateArg:
			sb.WriteString(t.Data.Src)
		case Invalid, EOF, Comment, StartTag, SelfClosingTag, EndTag:
			// no textual content
		}
	}
	return sb.String()
}
