package driver

import (
	"mwconv/internal/diag"
	"mwconv/internal/source"
	"mwconv/internal/token"
)

// rebindTokens points every span of a cached stream at id. Cached entries
// keep the FileID of the run that wrote them. Synthesized tokens have no
// span and keep the zero value.
func rebindTokens(toks []token.Token, id source.FileID) []token.Token {
	for i := range toks {
		t := &toks[i]
		rebindSpan(&t.Span, id)
		for j := range t.Attrs {
			a := &t.Attrs[j]
			rebindSpan(&a.Span, id)
			rebindTokens(a.Key.Toks, id)
			rebindTokens(a.Val.Toks, id)
		}
	}
	return toks
}

func rebindSpan(sp *source.Span, id source.FileID) {
	if *sp != (source.Span{}) {
		sp.File = id
	}
}

func rebindDiagnostic(d diag.Diagnostic, id source.FileID) diag.Diagnostic {
	d.Primary.File = id
	notes := make([]diag.Note, len(d.Notes))
	for i, n := range d.Notes {
		n.Span.File = id
		notes[i] = n
	}
	if len(notes) > 0 {
		d.Notes = notes
	}
	return d
}
