package render

import (
	"io"
	"strings"

	"mwconv/internal/errors"
	"mwconv/internal/source"
	"mwconv/internal/token"
)

// Format selects an output serialization.
type Format uint8

const (
	FormatHTML Format = iota
	FormatJSON
	FormatMsgpack
	FormatPretty
)

var formatNames = [...]string{
	FormatHTML:    "html",
	FormatJSON:    "json",
	FormatMsgpack: "msgpack",
	FormatPretty:  "pretty",
}

func (f Format) String() string {
	if int(f) < len(formatNames) {
		return formatNames[f]
	}
	return "unknown"
}

// ParseFormat maps a flag or config value to a Format.
func ParseFormat(s string) (Format, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "", "html":
		return FormatHTML, nil
	case "msgpack", "mp":
		return FormatMsgpack, nil
	}
	for f, n := range formatNames {
		if n == name {
			return Format(f), nil //nolint:gosec // bounded by formatNames
		}
	}
	return FormatHTML, errors.Wrapf(errors.ErrUnknownFormat, "%q (want html, json, msgpack or pretty)", s)
}

// Options configures Write.
type Options struct {
	Format Format
	// Files resolves spans to line:col in pretty and JSON output. May be nil.
	Files *source.FileSet
	Color bool
}

// Write serializes toks in the chosen format.
func Write(w io.Writer, toks []token.Token, opts Options) error {
	switch opts.Format {
	case FormatHTML:
		return HTML(w, toks)
	case FormatJSON:
		return JSON(w, toks, opts.Files)
	case FormatMsgpack:
		return Msgpack(w, toks)
	case FormatPretty:
		return Pretty(w, toks, opts)
	}
	return errors.Wrapf(errors.ErrUnknownFormat, "format %d", opts.Format)
}
