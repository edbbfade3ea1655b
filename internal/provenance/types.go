package provenance

import (
	"regexp"
	"strings"

	"mwconv/internal/token"
)

// ProducerType names what generated a span: "mw:Object" or "mw:Object/<Subtype>".
type ProducerType string

const (
	// ObjectPrefix is stripped by Suffix.
	ObjectPrefix = "mw:Object/"
	// EndSuffix marks a span terminator.
	EndSuffix = "/End"

	// Template is the producer type of template expansions.
	Template ProducerType = "mw:Object/Template"

	// AttrKeyProperty and AttrValProperty prefix the property of synthesized markers.
	AttrKeyProperty = "mw:objectAttrKey#"
	AttrValProperty = "mw:objectAttrVal#"
	// ExpandedAttrsPrefix is appended to the typeof of a tag with generated attributes.
	ExpandedAttrsPrefix = "mw:ExpandedAttrs/"
	// ReservedPrefix marks keys whose values are never scanned.
	ReservedPrefix = "mw:"
)

var typeofPattern = regexp.MustCompile(`mw:Object(?:/.*)?$`)

// Parse extracts the producer type from a typeof value. end reports a
// terminator; the returned type then has EndSuffix removed.
func Parse(typeOf string) (typ ProducerType, end, ok bool) {
	m := typeofPattern.FindString(typeOf)
	if m == "" {
		return "", false, false
	}
	if s, isEnd := strings.CutSuffix(m, EndSuffix); isEnd {
		return ProducerType(s), true, true
	}
	return ProducerType(m), false, true
}

// Suffix strips ObjectPrefix: "mw:Object/Template" gives "Template".
// A bare "mw:Object" gives "".
func (p ProducerType) Suffix() string {
	s, ok := strings.CutPrefix(string(p), ObjectPrefix)
	if !ok {
		return ""
	}
	return s
}

// End returns the typeof value that terminates a span of p.
func (p ProducerType) End() string {
	return string(p) + EndSuffix
}

// OpenMarker builds the meta tag that starts a span of p, recording src as
// the source text the span replaces.
func OpenMarker(p ProducerType, src string) token.Token {
	t := token.NewTag(token.SelfClosingTag, "meta", token.KV("typeof", string(p)))
	t.Data.Src = src
	return t
}

// EndMarker builds the meta tag that closes a span of p.
func EndMarker(p ProducerType) token.Token {
	return token.NewTag(token.SelfClosingTag, "meta", token.KV("typeof", p.End()))
}

// AttrMarker builds a synthesized marker for one generated attribute field.
// about is filled in once the owning tag has a grouping id.
func AttrMarker(property, src string) token.Token {
	t := token.NewTag(token.SelfClosingTag, "meta", token.KV("property", property))
	t.Data.Src = src
	return t
}
