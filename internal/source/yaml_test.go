package source

import (
	"io"
	"os"
	"strings"
	"testing"

	appLog "dayplan/internal/log"
)

func quietLog(t *testing.T) {
	t.Helper()
	appLog.SetOutput(io.Discard)
	t.Cleanup(func() { appLog.SetOutput(os.Stderr) })
}

func TestDecodeYAML(t *testing.T) {
	quietLog(t)
	doc := `
periods:
  - title: Standup
    start: "09:00"
    end: "09:15"
  - title: Deep work
    start: 600
    duration: 120
  - title: Lunch
    start: "12:30"
  - title: Broken
    start: "25:00"
  - title: Backwards
    start: "14:00"
    end: "13:00"
  - title: Late
    start: "23:30"
    duration: 120
`
	entries, err := DecodeYAML(strings.NewReader(doc), 60)
	if err != nil {
		t.Fatalf("DecodeYAML: %v", err)
	}
	want := []Entry{
		{Title: "Standup", Start: 540, End: 555},
		{Title: "Deep work", Start: 600, End: 720},
		{Title: "Lunch", Start: 750, End: 810},
		{Title: "Late", Start: 1410, End: 1440},
	}
	if len(entries) != len(want) {
		t.Fatalf("entries = %+v", entries)
	}
	for i := range want {
		if entries[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, entries[i], want[i])
		}
	}
}

func TestDecodeYAMLMalformed(t *testing.T) {
	quietLog(t)
	if _, err := DecodeYAML(strings.NewReader("periods: [\n"), 0); err == nil {
		t.Fatalf("expected an error for a broken document")
	}
	if _, err := DecodeYAML(strings.NewReader("periods: 5\n"), 0); err == nil {
		t.Fatalf("expected an error when periods is not a list")
	}
	entries, err := DecodeYAML(strings.NewReader(""), 0)
	if err != nil || len(entries) != 0 {
		t.Fatalf("empty document = %v, %v", entries, err)
	}
}

func TestPeriodsFromEntries(t *testing.T) {
	ps := Periods([]Entry{{Title: "a", Start: 60, End: 90}, {Title: "b", Start: 100, End: 100}})
	if len(ps) != 2 {
		t.Fatalf("periods = %d", len(ps))
	}
	if ps[0].Title() != "a" || ps[0].Start() != 60 || ps[0].Duration() != 30 {
		t.Fatalf("first period = %s %d %d", ps[0].Title(), ps[0].Start(), ps[0].Duration())
	}
	if ps[1].Duration() != 0 {
		t.Fatalf("zero-length entry gave duration %d", ps[1].Duration())
	}
}
