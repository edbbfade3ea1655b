package expand

import (
	"maps"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"mwconv/internal/diag"
	"mwconv/internal/lexer"
	"mwconv/internal/source"
	"mwconv/internal/token"
)

// Library maps template names to lexed bodies. It is read-only after
// NewLibrary and safe for concurrent lookups.
type Library struct {
	bodies map[string][]token.Token
	files  *source.FileSet
}

// NewLibrary lexes every body up front. Lexer warnings go to r.
func NewLibrary(defs map[string]string, r diag.Reporter) *Library {
	return NewLibraryIn(source.NewFileSet(), defs, r)
}

// NewLibraryIn is NewLibrary with the bodies added to fs, so warnings about
// them resolve next to the documents. fs must not be shared with a
// concurrent writer while this runs.
func NewLibraryIn(fs *source.FileSet, defs map[string]string, r diag.Reporter) *Library {
	lib := &Library{
		bodies: make(map[string][]token.Token, len(defs)),
		files:  fs,
	}
	for _, name := range slices.Sorted(maps.Keys(defs)) {
		norm := NormalizeName(name)
		id := lib.files.AddVirtual("Template:"+norm, []byte(defs[name]))
		lib.bodies[norm] = lexer.Tokenize(lib.files.Get(id), lexer.Options{Reporter: r})
	}
	return lib
}

// Lookup returns a private copy of the body of name.
func (l *Library) Lookup(name string) ([]token.Token, bool) {
	if l == nil {
		return nil, false
	}
	body, ok := l.bodies[NormalizeName(name)]
	if !ok {
		return nil, false
	}
	return token.CloneAll(body), true
}

// Names returns the sorted template names.
func (l *Library) Names() []string {
	if l == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(l.bodies))
}

// Len reports the number of templates.
func (l *Library) Len() int {
	if l == nil {
		return 0
	}
	return len(l.bodies)
}

// Files exposes the virtual documents the bodies were lexed from, so
// diagnostics against them can be resolved.
func (l *Library) Files() *source.FileSet {
	return l.files
}

// NormalizeName folds underscores to spaces, collapses runs of spaces and
// upper-cases the first letter: "foo_bar" and "Foo bar" name the same template.
func NormalizeName(name string) string {
	name = strings.Join(strings.Fields(strings.ReplaceAll(name, "_", " ")), " ")
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	return string(unicode.ToUpper(r)) + name[size:]
}
