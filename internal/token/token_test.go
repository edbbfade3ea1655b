package token_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"mwconv/internal/token"
)

func TestCloneIsIndependent(t *testing.T) {
	orig := token.NewTag(token.StartTag, "div",
		token.KV("class", "a"),
		token.Attr{
			Key: token.Lit("title"),
			Val: token.SeqOf(token.NewText("x"), token.Token{Kind: token.Template, Name: "echo"}),
		},
	)
	want := orig.Clone()

	clone := orig.Clone()
	clone.SetAttr("class", "b")
	clone.Attrs[1].Val.Toks[0].Text = "changed"
	clone.AddAttr("about", "#mwt1")

	if diff := cmp.Diff(want, orig); diff != "" {
		t.Fatalf("original mutated through clone (-want +got):\n%s", diff)
	}
}

func TestCloneKeepsNilAndEmptySequences(t *testing.T) {
	empty := token.SeqOf()
	if !empty.IsSeq() || empty.Toks == nil {
		t.Fatalf("SeqOf() must be a non-nil empty sequence")
	}
	c := empty.Clone()
	if !c.IsSeq() || len(c.Toks) != 0 {
		t.Fatalf("clone of empty sequence = %+v", c)
	}
	tok := token.NewTag(token.SelfClosingTag, "br")
	if tok.Clone().Attrs != nil {
		t.Fatalf("nil attrs must stay nil")
	}
}

func TestAddSpaceSeparatedAttr(t *testing.T) {
	tests := []struct {
		name  string
		attrs []token.Attr
		want  string
	}{
		{name: "missing", attrs: nil, want: "mw:ExpandedAttrs/Template"},
		{name: "empty", attrs: []token.Attr{token.KV("typeof", " ")}, want: "mw:ExpandedAttrs/Template"},
		{name: "existing", attrs: []token.Attr{token.KV("typeof", "foaf:Image")}, want: "foaf:Image mw:ExpandedAttrs/Template"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := token.NewTag(token.StartTag, "span", tt.attrs...)
			tok.AddSpaceSeparatedAttr("typeof", "mw:ExpandedAttrs/Template")
			got, ok := tok.GetAttr("typeof")
			if !ok || got != tt.want {
				t.Fatalf("typeof = %q (%v), want %q", got, ok, tt.want)
			}
			if n := len(tok.Attrs); n != max(1, len(tt.attrs)) {
				t.Fatalf("unexpected attribute count %d", n)
			}
		})
	}
}

func TestGetAttrMatchesFlattenedKeys(t *testing.T) {
	tok := token.NewTag(token.StartTag, "a", token.Attr{
		Key: token.SeqOf(token.NewText("hr"), token.NewText("ef")),
		Val: token.Lit("/wiki/X"),
	})
	got, ok := tok.GetAttr("href")
	if !ok || got != "/wiki/X" {
		t.Fatalf("GetAttr(href) = %q, %v", got, ok)
	}
	if _, ok := tok.GetAttr("title"); ok {
		t.Fatalf("unexpected title attribute")
	}
}

func TestToString(t *testing.T) {
	toks := []token.Token{
		token.NewText("a"),
		token.NewTag(token.StartTag, "b"),
		token.NewText("c"),
		{Kind: token.Newline},
		{Kind: token.Template, Data: token.DataAttrs{Src: "{{x}}"}},
		{Kind: token.EndTag, Name: "b"},
		{Kind: token.Comment, Text: "hidden"},
	}
	if got, want := token.ToString(toks), "ac\n{{x}}"; got != want {
		t.Fatalf("ToString = %q, want %q", got, want)
	}
}

func TestKindClassification(t *testing.T) {
	tags := map[token.Kind]bool{
		token.StartTag:       true,
		token.SelfClosingTag: true,
		token.EndTag:         false,
		token.Text:           false,
		token.Template:       false,
	}
	for k, want := range tags {
		if got := k.IsTag(); got != want {
			t.Errorf("%v.IsTag() = %v, want %v", k, got, want)
		}
	}
	for _, k := range []token.Kind{token.Invalid, token.EOF, token.Text, token.Newline, token.Comment,
		token.StartTag, token.SelfClosingTag, token.EndTag, token.Template, token.TemplateArg} {
		back, ok := token.ParseKind(k.String())
		if !ok || back != k {
			t.Errorf("ParseKind(%q) = %v, %v", k.String(), back, ok)
		}
	}
}

func TestProvenanceMarkerClassification(t *testing.T) {
	meta := token.NewTag(token.SelfClosingTag, "meta", token.KV("typeof", "mw:Object/Template"))
	if !meta.IsProvenanceMarker() {
		t.Fatalf("self-closing meta must be a marker")
	}
	if (token.Token{Kind: token.EndTag, Name: "meta"}).IsProvenanceMarker() {
		t.Fatalf("end tag is text-classified and never a marker")
	}
}
