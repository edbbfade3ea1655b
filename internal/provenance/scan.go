package provenance

import (
	"strings"

	"mwconv/internal/token"
)

// ScanResult is what Scan learns about one attribute field.
type ScanResult struct {
	ProducerType ProducerType
	HasProducer  bool
	RawSource    string
	Filtered     []token.Token
	// Unterminated is set when the field ended inside a span.
	Unterminated bool
	// Mismatched counts terminators that did not match the open span.
	Mismatched int
}

type scanState uint8

const (
	outside scanState = iota
	insideSpan
)

// Scan filters one expanded field. With tracking off it only strips meta
// tags. With tracking on it also records the first producer type and
// rebuilds the field's source text: marker sources plus text seen outside spans.
// Spans do not nest. A terminator for another type is dropped and the span stays open.
func Scan(toks []token.Token, tracking bool) ScanResult {
	var (
		res   ScanResult
		raw   strings.Builder
		state = outside
		open  ProducerType
	)
	res.Filtered = make([]token.Token, 0, len(toks))

	for i := range toks {
		tok := toks[i]
		switch tok.Kind {
		case token.StartTag, token.SelfClosingTag:
			if tracking {
				typeOf, _ := tok.GetAttr("typeof")
				if typ, end, ok := Parse(typeOf); ok {
					switch {
					case !end && state == outside:
						state, open = insideSpan, typ
						if !res.HasProducer {
							res.ProducerType, res.HasProducer = typ, true
						}
						raw.WriteString(tok.Data.Src)
					case end && state == insideSpan && typ == open:
						state, open = outside, ""
					case end && state == insideSpan:
						res.Mismatched++
					}
					continue
				}
			}
			if tok.Name == "meta" {
				continue
			}
			res.Filtered = append(res.Filtered, tok)
		case token.EndTag, token.Text, token.Newline, token.Comment,
			token.Template, token.TemplateArg, token.Invalid, token.EOF:
			if state == outside {
				raw.WriteString(token.ToString(toks[i : i+1]))
			}
			res.Filtered = append(res.Filtered, tok)
		}
	}

	res.Unterminated = state == insideSpan
	res.RawSource = raw.String()
	return res
}
