package diag

import (
	"testing"

	"mwconv/internal/source"
)

func TestFormatShort(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("page.wiki", []byte("a\n{{b\n"))

	diags := []Diagnostic{
		NewWarning(LexUnterminatedTemplate, source.Span{File: id, Start: 2, End: 5}, "unterminated\ntemplate").
			WithNote(source.Span{File: id, Start: 0, End: 1}, "document starts here"),
	}

	want := "warning LEX1003 page.wiki:2:1 unterminated template\n" +
		"note LEX1003 page.wiki:1:1 document starts here"
	if got := FormatShort(diags, fs, true); got != want {
		t.Fatalf("unexpected output:\nwant:\n%s\n\ngot:\n%s", want, got)
	}
}

func TestBagLimitAndSort(t *testing.T) {
	bag := NewBag(2)
	r := &BagReporter{Bag: bag}
	r.Report(XfmUnknownTemplate, SevWarning, source.Span{Start: 9, End: 10}, "late", nil)
	r.Report(LexUnterminatedTag, SevWarning, source.Span{Start: 1, End: 2}, "early", nil)
	r.Report(LexUnterminatedQuote, SevWarning, source.Span{Start: 0, End: 1}, "dropped", nil)

	if bag.Len() != 2 {
		t.Fatalf("len = %d, want 2", bag.Len())
	}
	bag.Sort()
	if bag.Items()[0].Message != "early" {
		t.Errorf("first = %q, want early", bag.Items()[0].Message)
	}
	if bag.HasErrors() || !bag.HasWarnings() {
		t.Error("severity summary wrong")
	}
}

func TestDedupReporter(t *testing.T) {
	bag := NewBag(0)
	r := NewDedupReporter(&BagReporter{Bag: bag})
	sp := source.Span{Start: 3, End: 4}
	ReportWarning(r, LexUnterminatedQuote, sp, "quote").Emit()
	ReportWarning(r, LexUnterminatedQuote, sp, "quote").Emit()
	ReportWarning(r, LexUnterminatedQuote, sp, "other").Emit()
	if bag.Len() != 2 {
		t.Fatalf("len = %d, want 2", bag.Len())
	}
}

func TestCodeID(t *testing.T) {
	cases := map[Code]string{
		LexUnterminatedTag: "LEX1001",
		XfmRecursionDepth:  "XFM2001",
		IOCacheError:       "IO4002",
		Code(9999):         "E0000",
	}
	for c, want := range cases {
		if got := c.ID(); got != want {
			t.Errorf("%d.ID() = %q, want %q", c, got, want)
		}
	}
}

func TestSeverityNames(t *testing.T) {
	cases := []struct {
		sev   Severity
		name  string
		label string
	}{
		{SevInfo, "INFO", "info"},
		{SevWarning, "WARNING", "warning"},
		{SevError, "ERROR", "error"},
		{Severity(9), "UNKNOWN", "info"},
	}
	for _, tc := range cases {
		if got := tc.sev.String(); got != tc.name {
			t.Errorf("%d.String() = %q, want %q", tc.sev, got, tc.name)
		}
		if got := tc.sev.Label(); got != tc.label {
			t.Errorf("%d.Label() = %q, want %q", tc.sev, got, tc.label)
		}
	}
	if !(SevError > SevWarning && SevWarning > SevInfo) {
		t.Error("severities must rank info < warning < error")
	}
}
