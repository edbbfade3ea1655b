package token

import (
	"fmt"
	"strings"

	"mwconv/internal/source"
)

// DefaultKey names the attribute that holds a TemplateArg's fallback value.
const DefaultKey = "default"

// DataAttrs is out-of-band token metadata.
type DataAttrs struct {
	// Src is the raw source text the token was produced from.
	Src string `json:"src,omitempty" msgpack:"src,omitempty"`
	// TSR marks a tag written with a trailing slash.
	TSR bool `json:"tsr,omitempty" msgpack:"tsr,omitempty"`
}

// Token is a single unit of the markup token stream.
type Token struct {
	Kind  Kind        `json:"kind" msgpack:"k"`
	Name  string      `json:"name,omitempty" msgpack:"n,omitempty"`
	Text  string      `json:"text,omitempty" msgpack:"x,omitempty"`
	Attrs []Attr      `json:"attrs,omitempty" msgpack:"a,omitempty"`
	Span  source.Span `json:"span" msgpack:"sp"`
	Data  DataAttrs   `json:"data" msgpack:"d"`
}

// NewText builds a text token.
func NewText(s string) Token { return Token{Kind: Text, Text: s} }

// NewTag builds a tag token of the given kind.
func NewTag(kind Kind, name string, attrs ...Attr) Token {
	return Token{Kind: kind, Name: name, Attrs: attrs}
}

// IsTag reports whether the token is an opening or self-closing tag.
func (t Token) IsTag() bool { return t.Kind.IsTag() }

// IsProvenanceMarker reports whether the token is a meta tag.
func (t Token) IsProvenanceMarker() bool {
	return t.Kind.IsTag() && t.Name == "meta"
}

// Clone returns an independent deep copy of the token.
func (t Token) Clone() Token {
	t.Attrs = CloneAttrs(t.Attrs)
	return t
}

// CloneAll deep-copies a token slice.
func CloneAll(toks []Token) []Token {
	if toks == nil {
		return nil
	}
	out := make([]Token, len(toks))
	for i := range toks {
		out[i] = toks[i].Clone()
	}
	return out
}

// GetAttr returns the flattened value of the first attribute whose key flattens to name.
func (t *Token) GetAttr(name string) (string, bool) {
	if idx := t.attrIndex(name); idx >= 0 {
		return t.Attrs[idx].Val.String(), true
	}
	return "", false
}

// AddAttr appends a literal attribute without looking for an existing one.
func (t *Token) AddAttr(name, value string) {
	t.Attrs = append(t.Attrs, KV(name, value))
}

// SetAttr replaces the first attribute named name, or appends it.
func (t *Token) SetAttr(name, value string) {
	if idx := t.attrIndex(name); idx >= 0 {
		t.Attrs[idx].Val = Lit(value)
		return
	}
	t.AddAttr(name, value)
}

// AddSpaceSeparatedAttr appends value to a space separated attribute (typeof, class, rel).
// Existing values are preserved in order.
func (t *Token) AddSpaceSeparatedAttr(name, value string) {
	idx := t.attrIndex(name)
	if idx < 0 {
		t.AddAttr(name, value)
		return
	}
	cur := strings.TrimSpace(t.Attrs[idx].Val.String())
	if cur == "" {
		t.Attrs[idx].Val = Lit(value)
		return
	}
	t.Attrs[idx].Val = Lit(cur + " " + value)
}

func (t *Token) attrIndex(name string) int {
	for i := range t.Attrs {
		if t.Attrs[i].Key.String() == name {
			return i
		}
	}
	return -1
}

// String is a compact debugging form, not a serializer.
func (t Token) String() string {
	switch t.Kind {
	case Text:
		return fmt.Sprintf("Text(%q)", t.Text)
	case Newline:
		return "Newline"
	case Comment:
		return fmt.Sprintf("Comment(%q)", t.Text)
	case StartTag, SelfClosingTag:
		var sb strings.Builder
		sb.WriteByte('<')
		sb.WriteString(t.Name)
		for _, a := range t.Attrs {
			fmt.Fprintf(&sb, " %s=%q", a.Key.String(), a.Val.String())
		}
		if t.Kind == SelfClosingTag {
			sb.WriteByte('/')
		}
		sb.WriteByte('>')
		return sb.String()
	case EndTag:
		return "</" + t.Name + ">"
	case Template, TemplateArg:
		return fmt.Sprintf("%s(%s)", t.Kind, t.Data.Src)
	case Invalid, EOF:
		return t.Kind.String()
	}
	return t.Kind.String()
}
