// Package expand resolves macro markup inside token sequences.
//
// AttrExpander is the contract the attribute stage consumes. TemplateExpander
// is the implementation the CLI uses: it substitutes template bodies from a
// Library, evaluates a few parser functions and, when tracking is on, wraps
// every top-level expansion in provenance markers.
package expand
