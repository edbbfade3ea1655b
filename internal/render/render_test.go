package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"mwconv/internal/errors"
	"mwconv/internal/provenance"
	"mwconv/internal/source"
	"mwconv/internal/token"
)

func expandedStream() []token.Token {
	marker := provenance.AttrMarker("mw:objectAttrVal#k", "{{echo|x}}")
	marker.SetAttr("about", "#mwt1")
	div := token.NewTag(token.StartTag, "div",
		token.Attr{Key: token.Lit("k"), Val: token.SeqOf(token.NewText("x"))},
		token.KV("about", "#mwt1"),
		token.KV("typeof", "mw:ExpandedAttrs/Template"),
	)
	return []token.Token{marker, div, token.NewText("a<b"), {Kind: token.EndTag, Name: "div"}, {Kind: token.Newline}}
}

func TestHTML(t *testing.T) {
	var buf bytes.Buffer
	if err := HTML(&buf, expandedStream()); err != nil {
		t.Fatal(err)
	}
	want := `<meta property="mw:objectAttrVal#k" about="#mwt1" data-mw-src="{{echo|x}}"/>` +
		`<div k="x" about="#mwt1" typeof="mw:ExpandedAttrs/Template">a&lt;b</div>` + "\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestHTMLUnexpandedMacrosAsText(t *testing.T) {
	var buf bytes.Buffer
	toks := []token.Token{
		{Kind: token.Template, Name: "x", Data: token.DataAttrs{Src: "{{x}}"}},
		{Kind: token.Comment, Text: " c "},
	}
	if err := HTML(&buf, toks); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "{{x}}<!-- c -->" {
		t.Errorf("got %q", got)
	}
}

func TestJSON(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("a.wiki", []byte("ab\ncd"))
	toks := []token.Token{{Kind: token.Text, Text: "cd", Span: source.Span{File: id, Start: 3, End: 5}}}

	var buf bytes.Buffer
	if err := JSON(&buf, toks, fs); err != nil {
		t.Fatal(err)
	}
	var out []TokenOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 || out[0].Kind != "Text" || out[0].Start == nil || out[0].Start.Line != 2 || out[0].Start.Col != 1 {
		t.Errorf("unexpected output: %s", buf.String())
	}
}

func TestJSONFlattensAttributes(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, expandedStream()[:2], nil); err != nil {
		t.Fatal(err)
	}
	var out []TokenOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	want := []AttrOutput{{Key: "k", Val: "x"}, {Key: "about", Val: "#mwt1"}, {Key: "typeof", Val: "mw:ExpandedAttrs/Template"}}
	if diff := cmp.Diff(want, out[1].Attrs); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	if out[0].Src != "{{echo|x}}" {
		t.Errorf("marker src = %q", out[0].Src)
	}
}

func TestMsgpackRoundTripKeepsSequences(t *testing.T) {
	in := expandedStream()
	var buf bytes.Buffer
	if err := Msgpack(&buf, in); err != nil {
		t.Fatal(err)
	}
	out, err := ReadMsgpack(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(in, out); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestPrettyWithoutColor(t *testing.T) {
	var buf bytes.Buffer
	if err := Pretty(&buf, expandedStream()[:2], Options{}); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %q", lines)
	}
	if !strings.HasPrefix(lines[0], "  1: SelfClosingTag  meta") {
		t.Errorf("line 1 = %q", lines[0])
	}
	if !strings.Contains(lines[0], `src="{{echo|x}}"`) {
		t.Errorf("line 1 lacks src: %q", lines[0])
	}
	if strings.Contains(buf.String(), "\x1b[") {
		t.Error("color codes emitted with color off")
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"", FormatHTML},
		{"HTML", FormatHTML},
		{"json", FormatJSON},
		{"mp", FormatMsgpack},
		{" pretty ", FormatPretty},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseFormat(%q) = %v, %v", tt.in, got, err)
		}
	}
	if _, err := ParseFormat("xml"); !errors.Is(err, errors.ErrUnknownFormat) {
		t.Errorf("err = %v", err)
	}
}
