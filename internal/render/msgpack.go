package render

import (
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"mwconv/internal/errors"
	"mwconv/internal/token"
)

// Msgpack writes toks in their full structural form, sub-token sequences included.
func Msgpack(w io.Writer, toks []token.Token) error {
	enc := msgpack.NewEncoder(w)
	if err := enc.Encode(toks); err != nil {
		return errors.Wrap(err, "encoding tokens")
	}
	return nil
}

// ReadMsgpack decodes a stream written by Msgpack.
func ReadMsgpack(r io.Reader) ([]token.Token, error) {
	var toks []token.Token
	if err := msgpack.NewDecoder(r).Decode(&toks); err != nil {
		return nil, errors.Wrap(err, "decoding tokens")
	}
	return toks, nil
}
