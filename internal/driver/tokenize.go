package driver

import (
	"mwconv/internal/diag"
	"mwconv/internal/lexer"
	"mwconv/internal/source"
	"mwconv/internal/token"
)

// TokenizeResult is the raw lexer output for one document.
type TokenizeResult struct {
	FileSet *source.FileSet
	File    *source.File
	Tokens  []token.Token
	Bag     *diag.Bag
}

// Tokenize lexes the document at path without expanding anything.
func Tokenize(path string, maxDiagnostics int) (*TokenizeResult, error) {
	fs := source.NewFileSet()
	fileID, err := fs.Load(path)
	if err != nil {
		return nil, err
	}
	return tokenizeFile(fs, fileID, maxDiagnostics), nil
}

// TokenizeSource is Tokenize for in-memory input.
func TokenizeSource(name string, src []byte, maxDiagnostics int) *TokenizeResult {
	fs := source.NewFileSet()
	return tokenizeFile(fs, fs.AddVirtual(name, src), maxDiagnostics)
}

func tokenizeFile(fs *source.FileSet, id source.FileID, maxDiagnostics int) *TokenizeResult {
	file := fs.Get(id)
	bag := diag.NewBag(maxDiagnostics)
	toks := lexer.Tokenize(file, lexer.Options{Reporter: &diag.BagReporter{Bag: bag}})
	return &TokenizeResult{
		FileSet: fs,
		File:    file,
		Tokens:  toks,
		Bag:     bag,
	}
}
