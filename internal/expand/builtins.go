package expand

import (
	"strings"

	"mwconv/internal/token"
)

// parserFunc evaluates {{name:first|args...}}.
type parserFunc func(first string, args map[string][]token.Token) []token.Token

var builtins = map[string]parserFunc{
	"lc": func(first string, _ map[string][]token.Token) []token.Token {
		return textOf(strings.ToLower(first))
	},
	"uc": func(first string, _ map[string][]token.Token) []token.Token {
		return textOf(strings.ToUpper(first))
	},
	"#if": func(first string, args map[string][]token.Token) []token.Token {
		branch := "2"
		if strings.TrimSpace(first) != "" {
			branch = "1"
		}
		return trimTokens(args[branch])
	},
}

// splitFunction recognizes "name:first" targets of known parser functions.
func splitFunction(target string) (parserFunc, string, bool) {
	name, first, ok := strings.Cut(target, ":")
	if !ok {
		return nil, "", false
	}
	fn, known := builtins[strings.ToLower(strings.TrimSpace(name))]
	if !known {
		return nil, "", false
	}
	return fn, strings.TrimSpace(first), true
}

func textOf(s string) []token.Token {
	if s == "" {
		return []token.Token{}
	}
	return []token.Token{token.NewText(s)}
}

func trimTokens(toks []token.Token) []token.Token {
	out := token.CloneAll(toks)
	if len(out) == 0 {
		return []token.Token{}
	}
	if out[0].Kind == token.Text {
		out[0].Text = strings.TrimLeft(out[0].Text, " \t\n")
	}
	if last := len(out) - 1; out[last].Kind == token.Text {
		out[last].Text = strings.TrimRight(out[last].Text, " \t\n")
	}
	return out
}
