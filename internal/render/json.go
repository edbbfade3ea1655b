package render

import (
	"encoding/json"
	"io"

	"mwconv/internal/source"
	"mwconv/internal/token"
)

// TokenOutput is the JSON shape of one token.
type TokenOutput struct {
	Kind  string       `json:"kind"`
	Name  string       `json:"name,omitempty"`
	Text  string       `json:"text,omitempty"`
	Attrs []AttrOutput `json:"attrs,omitempty"`
	Src   string       `json:"src,omitempty"`
	Span  source.Span  `json:"span"`
	Start *Position    `json:"start,omitempty"`
	End   *Position    `json:"end,omitempty"`
}

// AttrOutput is one attribute with both fields flattened to text.
type AttrOutput struct {
	Key string `json:"key"`
	Val string `json:"val"`
	// Seq is set while a field still holds unexpanded markup.
	Seq bool `json:"seq,omitempty"`
}

// Position is a 1-based line and column.
type Position struct {
	Line uint32 `json:"line"`
	Col  uint32 `json:"col"`
}

// JSON writes toks as an indented array. Positions are included when fs is set.
func JSON(w io.Writer, toks []token.Token, fs *source.FileSet) error {
	output := make([]TokenOutput, 0, len(toks))
	for i := range toks {
		output = append(output, tokenOutput(&toks[i], fs))
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

func tokenOutput(t *token.Token, fs *source.FileSet) TokenOutput {
	out := TokenOutput{
		Kind: t.Kind.String(),
		Name: t.Name,
		Text: t.Text,
		Src:  t.Data.Src,
		Span: t.Span,
	}
	for _, a := range t.Attrs {
		out.Attrs = append(out.Attrs, AttrOutput{
			Key: a.Key.String(),
			Val: a.Val.String(),
			Seq: a.Key.HasMacros() || a.Val.HasMacros(),
		})
	}
	if fs != nil && int(t.Span.File) < fs.Len() && !t.Span.Empty() {
		start, end := fs.Resolve(t.Span)
		out.Start = &Position{Line: start.Line, Col: start.Col}
		out.End = &Position{Line: end.Line, Col: end.Col}
	}
	return out
}
