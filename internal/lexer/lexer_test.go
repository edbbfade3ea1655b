package lexer_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"mwconv/internal/diag"
	"mwconv/internal/lexer"
	"mwconv/internal/source"
	"mwconv/internal/token"
)

func lex(t *testing.T, src string) ([]token.Token, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.wiki", []byte(src))
	bag := diag.NewBag(0)
	toks := lexer.Tokenize(fs.Get(id), lexer.Options{Reporter: &diag.BagReporter{Bag: bag}})
	return toks, bag
}

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i := range toks {
		out[i] = toks[i].Kind
	}
	return out
}

// ignoreSpans compares structure only.
var ignoreSpans = cmpopts.IgnoreTypes(source.Span{})

func TestTagsTextAndNewlines(t *testing.T) {
	toks, bag := lex(t, "<div class=\"a\" hidden>hi</div>\n<br/>")
	want := []token.Kind{token.StartTag, token.Text, token.EndTag, token.Newline, token.SelfClosingTag}
	if diff := cmp.Diff(want, kinds(toks)); diff != "" {
		t.Fatalf("kinds (-want +got):\n%s", diff)
	}
	if bag.Len() != 0 {
		t.Errorf("unexpected diagnostics: %v", bag.Items())
	}
	div := toks[0]
	if div.Name != "div" || len(div.Attrs) != 2 {
		t.Fatalf("div = %v", div)
	}
	if v, _ := div.GetAttr("hidden"); v != "" {
		t.Errorf("hidden = %q", v)
	}
	if !toks[4].Data.TSR {
		t.Error("br must carry the trailing-slash flag")
	}
}

func TestAttributeWithTemplate(t *testing.T) {
	toks, _ := lex(t, `<div k="{{echo|x}}" id=plain>`)
	if len(toks) != 1 {
		t.Fatalf("tokens = %v", toks)
	}
	want := token.NewTag(token.StartTag, "div",
		token.Attr{Key: token.Lit("k"), Val: token.SeqOf(token.Token{
			Kind:  token.Template,
			Name:  "echo",
			Attrs: []token.Attr{
				{Key: token.Lit("echo"), Val: token.Lit("")},
				{Key: token.Lit("1"), Val: token.Lit("x")},
			},
			Data:  token.DataAttrs{Src: "{{echo|x}}"},
		})},
		token.KV("id", "plain"),
	)
	if diff := cmp.Diff(want, toks[0], ignoreSpans); diff != "" {
		t.Errorf("div (-want +got):\n%s", diff)
	}
}

func TestTemplateArguments(t *testing.T) {
	toks, _ := lex(t, "{{a| b = {{c}} |{{{1|d}}}|[[x|y]]}}")
	if len(toks) != 1 || toks[0].Kind != token.Template {
		t.Fatalf("tokens = %v", toks)
	}
	tpl := toks[0]
	if tpl.Name != "a" || len(tpl.Attrs) != 4 {
		t.Fatalf("template = %+v", tpl)
	}
	if target := tpl.Attrs[0]; target.Key.String() != "a" {
		t.Errorf("target = %+v", target)
	}

	named := tpl.Attrs[1]
	if named.Key.String() != "b" || !named.Val.IsSeq() || len(named.Val.Toks) != 1 {
		t.Fatalf("named arg = %+v", named)
	}
	if named.Val.Toks[0].Name != "c" {
		t.Errorf("nested template = %v", named.Val.Toks[0])
	}

	arg := tpl.Attrs[2]
	if arg.Key.String() != "1" || len(arg.Val.Toks) != 1 {
		t.Fatalf("positional arg = %+v", arg)
	}
	ref := arg.Val.Toks[0]
	if ref.Kind != token.TemplateArg || ref.Name != "1" || ref.Data.Src != "{{{1|d}}}" {
		t.Errorf("arg ref = %+v", ref)
	}
	if def := ref.Attrs[0]; def.Key.String() != token.DefaultKey || def.Val.String() != "d" {
		t.Errorf("default = %+v", def)
	}

	if link := tpl.Attrs[3]; link.Key.String() != "2" || link.Val.String() != "[[x|y]]" {
		t.Errorf("link arg = %+v", link)
	}
}

func TestTemplateSpanMatchesSource(t *testing.T) {
	src := "ab{{x|y}}cd"
	toks, _ := lex(t, src)
	if diff := cmp.Diff([]token.Kind{token.Text, token.Template, token.Text}, kinds(toks)); diff != "" {
		t.Fatalf("kinds (-want +got):\n%s", diff)
	}
	sp := toks[1].Span
	if got := src[sp.Start:sp.End]; got != "{{x|y}}" {
		t.Errorf("span text = %q", got)
	}
}

func TestComment(t *testing.T) {
	toks, _ := lex(t, "<!-- note -->x")
	if toks[0].Kind != token.Comment || toks[0].Text != " note " {
		t.Fatalf("comment = %v", toks[0])
	}
}

func TestMalformedInputDegradesToText(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code diag.Code
	}{
		{name: "template", src: "a {{b|c", code: diag.LexUnterminatedTemplate},
		{name: "arg", src: "{{{x", code: diag.LexUnterminatedArg},
		{name: "comment", src: "<!-- x", code: diag.LexUnterminatedComment},
		{name: "tag", src: "<div a=b", code: diag.LexUnterminatedTag},
		{name: "quote", src: `<div a="b>`, code: diag.LexUnterminatedQuote},
		{name: "empty name", src: "{{ |x}}", code: diag.LexEmptyTemplateName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, bag := lex(t, tt.src)
			if got := token.ToString(toks); got != tt.src {
				t.Errorf("text = %q, want %q", got, tt.src)
			}
			for _, tok := range toks {
				if tok.Kind != token.Text {
					t.Errorf("unexpected %v", tok)
				}
			}
			found := false
			for _, d := range bag.Items() {
				if d.Code == tt.code {
					found = true
				}
				if d.Severity != diag.SevWarning {
					t.Errorf("lexer diagnostics must be warnings, got %v", d.Severity)
				}
			}
			if !found {
				t.Errorf("missing %s in %v", tt.code.ID(), bag.Items())
			}
		})
	}
}

func TestLessThanInText(t *testing.T) {
	toks, bag := lex(t, "a < b")
	if token.ToString(toks) != "a < b" || bag.Len() != 0 {
		t.Errorf("tokens = %v, diags = %v", toks, bag.Items())
	}
}

func TestPeekDoesNotConsume(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("p.wiki", []byte("x\ny"))
	lx := lexer.New(fs.Get(id), lexer.Options{})
	if lx.Peek().Kind != token.Text || lx.Next().Kind != token.Text {
		t.Fatal("peek/next mismatch")
	}
	if lx.Next().Kind != token.Newline {
		t.Fatal("expected newline")
	}
	lx.Next()
	if lx.Next().Kind != token.EOF || lx.Next().Kind != token.EOF {
		t.Fatal("EOF must repeat")
	}
}
