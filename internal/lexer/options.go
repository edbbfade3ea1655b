package lexer

import (
	"mwconv/internal/diag"
	"mwconv/internal/source"
)

type Options struct {
	// Reporter receives lexer warnings. nil means drop them and keep lexing.
	Reporter diag.Reporter
}

func (lx *Lexer) report(code diag.Code, sp source.Span, msg string) {
	if lx.opts.Reporter != nil {
		lx.opts.Reporter.Report(code, diag.SevWarning, sp, msg, nil)
	}
}
