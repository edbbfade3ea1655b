package observ

import (
	"strings"
	"sync"
	"testing"
)

func TestTimerAggregatesByName(t *testing.T) {
	tm := NewTimer()
	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tm.End(tm.Begin("transform"), "")
		}()
	}
	wg.Wait()
	tm.End(tm.Begin("render"), "html")

	r := tm.Report()
	if len(r.Phases) != 2 {
		t.Fatalf("phases = %d, want 2", len(r.Phases))
	}
	if r.Phases[0].Name != "transform" || r.Phases[0].Count != 4 {
		t.Errorf("unexpected transform row: %+v", r.Phases[0])
	}
	if r.Phases[1].Note != "html" {
		t.Errorf("note = %q, want html", r.Phases[1].Note)
	}
	if !strings.Contains(tm.Summary(), "x4") {
		t.Errorf("summary lacks count:\n%s", tm.Summary())
	}
}

func TestNilTimer(t *testing.T) {
	var tm *Timer
	tm.End(tm.Begin("lex"), "")
	if len(tm.Report().Phases) != 0 {
		t.Error("nil timer must report nothing")
	}
}
