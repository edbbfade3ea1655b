package token

// Kind represents the category of a markup token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the token stream.
	EOF
	// Text is a run of character data.
	Text
	// Newline is a single '\n'.
	Newline
	// Comment is an HTML comment; Text holds its body.
	Comment
	// StartTag is an opening tag like <div>.
	StartTag
	// SelfClosingTag is a tag like <br/> or a provenance <meta/>.
	SelfClosingTag
	// EndTag is a closing tag like </div>.
	EndTag
	// Template is an unexpanded macro invocation {{target|args}}.
	Template
	// TemplateArg is an unexpanded parameter reference {{{name|default}}}.
	TemplateArg
)

var kindNames = [...]string{
	Invalid:        "Invalid",
	EOF:            "EOF",
	Text:           "Text",
	Newline:        "Newline",
	Comment:        "Comment",
	StartTag:       "StartTag",
	SelfClosingTag: "SelfClosingTag",
	EndTag:         "EndTag",
	Template:       "Template",
	TemplateArg:    "TemplateArg",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(?)"
}

// ParseKind is the inverse of String. It is used by serialized forms.
func ParseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s {
			return Kind(k), true //nolint:gosec // bounded by kindNames
		}
	}
	return Invalid, false
}

// IsTag reports whether the kind is tag-classified (opening or self-closing).
func (k Kind) IsTag() bool {
	switch k {
	case StartTag, SelfClosingTag:
		return true
	case Invalid, EOF, Text, Newline, Comment, EndTag, Template, TemplateArg:
		return false
	default:
		return false
	}
}

// IsMacro reports whether the kind still needs macro expansion.
func (k Kind) IsMacro() bool {
	switch k {
	case Template, TemplateArg:
		return true
	case Invalid, EOF, Text, Newline, Comment, StartTag, SelfClosingTag, EndTag:
		return false
	default:
		return false
	}
}
