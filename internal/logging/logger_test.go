package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestEnabledGating(t *testing.T) {
	cases := []struct {
		verbosity int
		level     Level
		want      bool
	}{
		{0, LevelDebug, false},
		{0, LevelInfo, false},
		{0, LevelWarning, true},
		{0, LevelError, true},
		{1, LevelDebug, false},
		{1, LevelInfo, true},
		{2, LevelDebug, true},
	}
	for _, c := range cases {
		l := New(c.verbosity)
		if got := l.enabled(c.level); got != c.want {
			t.Errorf("verbosity=%d level=%s: got %v, want %v", c.verbosity, c.level, got, c.want)
		}
	}
}

func TestUpdateWritesToSink(t *testing.T) {
	var buf bytes.Buffer
	l := New(0)
	l.SetSink(&buf)
	l.Update(`1000.000000 < 1001.000000, "a.cpp"`)
	l.Update(`Missed, "b.cpp"`)
	out := buf.String()
	if !strings.Contains(out, `1000.000000 < 1001.000000, "a.cpp"`) {
		t.Errorf("missing first line in %q", out)
	}
	if !strings.Contains(out, `Missed, "b.cpp"`) {
		t.Errorf("missing second line in %q", out)
	}
}

func TestUpdateNoopWithoutSink(t *testing.T) {
	l := New(0)
	// Must not panic when no sink is attached.
	l.Update("anything")
}

func TestLevelString(t *testing.T) {
	if LevelDebug.String() != "DEBUG" {
		t.Errorf("got %s", LevelDebug.String())
	}
	if Level(99).String() != "UNKNOWN" {
		t.Errorf("got %s", Level(99).String())
	}
}
