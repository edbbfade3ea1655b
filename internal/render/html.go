package render

import (
	"bufio"
	"html"
	"io"

	"mwconv/internal/token"
)

// SrcAttr carries a token's raw source when it is rendered as markup.
const SrcAttr = "data-mw-src"

// HTML serializes toks back to markup. Unexpanded macros are written as
// escaped source text. Data.Src of a tag is rendered as data-mw-src.
func HTML(w io.Writer, toks []token.Token) error {
	bw := bufio.NewWriter(w)
	for i := range toks {
		writeHTML(bw, &toks[i])
	}
	return bw.Flush()
}

func writeHTML(w *bufio.Writer, t *token.Token) {
	switch t.Kind {
	case token.Text:
		w.WriteString(html.EscapeString(t.Text))
	case token.Newline:
		w.WriteByte('\n')
	case token.Comment:
		w.WriteString("<!--")
		w.WriteString(t.Text)
		w.WriteString("-->")
	case token.StartTag, token.SelfClosingTag:
		w.WriteByte('<')
		w.WriteString(t.Name)
		for _, a := range t.Attrs {
			writeAttr(w, a.Key.String(), a.Val.String())
		}
		if t.Data.Src != "" {
			writeAttr(w, SrcAttr, t.Data.Src)
		}
		if t.Kind == token.SelfClosingTag {
			w.WriteByte('/')
		}
		w.WriteByte('>')
	case token.EndTag:
		w.WriteString("</")
		w.WriteString(t.Name)
		w.WriteByte('>')
	case token.Template, token.TemplateArg:
		w.WriteString(html.EscapeString(t.Data.Src))
	case token.Invalid, token.EOF:
	}
}

func writeAttr(w *bufio.Writer, key, val string) {
	w.WriteByte(' ')
	w.WriteString(key)
	w.WriteString(`="`)
	w.WriteString(html.EscapeString(val))
	w.WriteByte('"')
}
