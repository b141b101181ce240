package log

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(LevelInfo)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		SetLevel(LevelInfo)
	})

	Debug("hidden", "k", 1)
	Info("shown", "title", "Standup", "start", 540)
	Error("failed", errors.New("boom"), "path", "agenda.yaml")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug line leaked at info level: %q", out)
	}
	if !strings.Contains(out, "[INFO] shown title=Standup start=540") {
		t.Fatalf("missing info line: %q", out)
	}
	if !strings.Contains(out, "[ERROR] failed err=boom path=agenda.yaml") {
		t.Fatalf("missing error line: %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   LevelDebug,
		" ERROR ": LevelError,
		"info":    LevelInfo,
		"":        LevelInfo,
		"verbose": LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestFormatKVsDropsOddTail(t *testing.T) {
	if got := formatKVs("a", 1, "b"); got != " a=1" {
		t.Fatalf("formatKVs = %q", got)
	}
}
