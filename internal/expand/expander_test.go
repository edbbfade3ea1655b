package expand

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"mwconv/internal/diag"
	"mwconv/internal/errors"
	"mwconv/internal/lexer"
	"mwconv/internal/provenance"
	"mwconv/internal/source"
	"mwconv/internal/token"
)

var ignoreSpans = cmpopts.IgnoreTypes(source.Span{})

func lexString(t *testing.T, src string) []token.Token {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("t.wiki", []byte(src))
	return lexer.Tokenize(fs.Get(id), lexer.Options{})
}

func newExpander(defs map[string]string) *TemplateExpander {
	return NewTemplateExpander(NewLibrary(defs, diag.NopReporter{}), nil, nil)
}

func TestExpandTokensText(t *testing.T) {
	e := newExpander(map[string]string{
		"Echo":     "{{{1}}}",
		"Greet":    "Hello, {{{name|world}}}!",
		"Outer":    "[{{echo|{{{1}}}}}]",
		"Shout":    "{{uc:{{{1}}}}}",
		"Pick":     "{{#if:{{{1|}}}|yes|no}}",
		"foo_bar":  "fb",
		"Missing1": "{{{1}}}",
	})
	tests := []struct {
		src  string
		want string
	}{
		{src: "{{echo|x}}", want: "x"},
		{src: "{{Greet}}", want: "Hello, world!"},
		{src: "{{Greet|name=Ann}}", want: "Hello, Ann!"},
		{src: "{{outer|z}}", want: "[z]"},
		{src: "{{shout|abc}}", want: "ABC"},
		{src: "{{lc: MiXed }}", want: "mixed"},
		{src: "{{pick|1}}", want: "yes"},
		{src: "{{pick}}", want: "no"},
		{src: "{{Foo bar}}", want: "fb"},
		{src: "{{nope}}", want: "[[Template:Nope]]"},
		{src: "{{missing1}}", want: "{{{1}}}"},
		{src: "{{{top|d}}}", want: "d"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := e.ExpandTokens(context.Background(), lexString(t, tt.src), NewFrame(0, false))
			if err != nil {
				t.Fatal(err)
			}
			if s := token.ToString(got); s != tt.want {
				t.Errorf("got %q, want %q", s, tt.want)
			}
		})
	}
}

func TestExpandTokensWrapsTopLevelOnly(t *testing.T) {
	e := newExpander(map[string]string{"Echo": "{{{1}}}", "Twice": "{{echo|{{{1}}}}}{{echo|{{{1}}}}}"})
	got, err := e.ExpandTokens(context.Background(), lexString(t, "{{twice|{{echo|a}}}}"), NewFrame(0, true))
	if err != nil {
		t.Fatal(err)
	}
	want := []token.Token{
		provenance.OpenMarker(provenance.Template, "{{twice|{{echo|a}}}}"),
		token.NewText("a"),
		token.NewText("a"),
		provenance.EndMarker(provenance.Template),
	}
	if diff := cmp.Diff(want, got, ignoreSpans); diff != "" {
		t.Errorf("tokens (-want +got):\n%s", diff)
	}
}

func TestExpandAttrsPreservesOrderAndLiterals(t *testing.T) {
	e := newExpander(map[string]string{"Echo": "{{{1}}}"})
	tag := lexString(t, `<div a="1" b="{{echo|x}}" {{echo|k}}="v" c=3>`)[0]

	got, err := e.ExpandAttrs(context.Background(), tag.Attrs, NewFrame(0, true)).Await(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(tag.Attrs) {
		t.Fatalf("len = %d, want %d", len(got), len(tag.Attrs))
	}
	if diff := cmp.Diff(tag.Attrs[0], got[0]); diff != "" {
		t.Errorf("literal attr changed (-want +got):\n%s", diff)
	}
	wantVal := token.SeqOf(
		provenance.OpenMarker(provenance.Template, "{{echo|x}}"),
		token.NewText("x"),
		provenance.EndMarker(provenance.Template),
	)
	if diff := cmp.Diff(wantVal, got[1].Val, ignoreSpans); diff != "" {
		t.Errorf("value (-want +got):\n%s", diff)
	}
	if !got[2].Key.IsSeq() || token.ToString(got[2].Key.Toks) != "k" {
		t.Errorf("key = %+v", got[2].Key)
	}
	if got[3].Key.String() != "c" || got[3].Val.String() != "3" {
		t.Errorf("last attr = %+v", got[3])
	}
	if !tag.Attrs[1].Val.HasMacros() {
		t.Error("input attrs were modified")
	}
}

func TestExpandTagsInsideBodies(t *testing.T) {
	e := newExpander(map[string]string{"Box": `<span class="{{{1}}}">{{{1}}}</span>`})
	got, err := e.ExpandTokens(context.Background(), lexString(t, "{{box|big}}"), NewFrame(0, false))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || got[0].Kind != token.StartTag {
		t.Fatalf("tokens = %v", got)
	}
	if v, _ := got[0].GetAttr("class"); v != "big" {
		t.Errorf("class = %q", v)
	}
}

func TestTopLevelExpansionTakesInvocationSpan(t *testing.T) {
	e := newExpander(map[string]string{"Box": `<span class="{{{1}}}">b</span>`})
	in := lexString(t, "ab {{box|c}}")
	got, err := e.ExpandTokens(context.Background(), in, NewFrame(0, false))
	if err != nil {
		t.Fatal(err)
	}
	site := in[len(in)-1].Span
	if site.Start != 3 || site.End != 12 {
		t.Fatalf("invocation span = %v", site)
	}
	for _, tok := range got[1:] {
		if tok.Span != site {
			t.Errorf("%v: span %v, want %v", tok, tok.Span, site)
		}
	}
	if a := got[1].Attrs[0]; a.Span != site {
		t.Errorf("attribute span %v, want %v", a.Span, site)
	}
	if in[len(in)-1].Attrs[1].Span == site {
		t.Error("input token was modified")
	}
}

func TestRecursionDepth(t *testing.T) {
	e := newExpander(map[string]string{"Loop": "x{{loop}}"})
	_, err := e.ExpandTokens(context.Background(), lexString(t, "{{loop}}"), NewFrame(5, false))
	if !errors.IsRecursionDepth(err) {
		t.Fatalf("expected recursion error, got %v", err)
	}
	if len(errors.GetAllHints(err)) == 0 {
		t.Error("recursion error should carry a hint")
	}

	_, err = e.ExpandAttrs(context.Background(),
		[]token.Attr{{Key: token.Lit("k"), Val: token.SeqOf(lexString(t, "{{loop}}")...)}},
		NewFrame(5, true)).Await(context.Background())
	if !errors.IsRecursionDepth(err) {
		t.Fatalf("attribute expansion must propagate the error, got %v", err)
	}
}

func TestCanceledContext(t *testing.T) {
	e := newExpander(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := e.ExpandTokens(ctx, lexString(t, "a"), NewFrame(0, false)); err == nil {
		t.Error("expected context error")
	}
}

func TestNormalizeName(t *testing.T) {
	for in, want := range map[string]string{
		"foo_bar":   "Foo bar",
		"  Foo   x": "Foo x",
		"échelle":   "Échelle",
		"":          "",
	} {
		if got := NormalizeName(in); got != want {
			t.Errorf("NormalizeName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLibrary(t *testing.T) {
	lib := NewLibrary(map[string]string{"b": "2", "a": "1"}, nil)
	if diff := cmp.Diff([]string{"A", "B"}, lib.Names()); diff != "" {
		t.Errorf("names (-want +got):\n%s", diff)
	}
	body, ok := lib.Lookup("a")
	if !ok || token.ToString(body) != "1" {
		t.Fatalf("lookup = %v, %v", body, ok)
	}
	body[0].Text = "changed"
	again, _ := lib.Lookup("A")
	if token.ToString(again) != "1" {
		t.Error("lookup must return a private copy")
	}
	if lib.Files().Len() != 2 {
		t.Errorf("files = %d", lib.Files().Len())
	}
}

func TestUnknownTemplateIsReported(t *testing.T) {
	bag := diag.NewBag(0)
	e := NewTemplateExpander(NewLibrary(map[string]string{"Wrap": "[{{missing}}]"}, nil), nil, &diag.BagReporter{Bag: bag})
	toks := lexString(t, "{{nope}} {{wrap}}")
	out, err := e.ExpandTokens(context.Background(), toks, NewFrame(0, false))
	if err != nil {
		t.Fatal(err)
	}
	if got := token.ToString(out); got != "[[Template:Nope]] [[[Template:Missing]]]" {
		t.Errorf("got %q", got)
	}
	if bag.Len() != 2 {
		t.Fatalf("diagnostics = %+v", bag.Items())
	}
	for _, d := range bag.Items() {
		if d.Code != diag.XfmUnknownTemplate || d.Severity != diag.SevWarning {
			t.Errorf("diagnostic = %+v", d)
		}
	}
}
