package platform

import (
	"testing"
	"time"
)

func TestMapFileSystemReadWrite(t *testing.T) {
	fsys := NewMapFileSystem(map[string]string{
		"a.txt": "hello",
	})
	got, err := fsys.ReadFile("a.txt")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "hello" {
		t.Fatalf("got %q, want %q", got, "hello")
	}
	if !fsys.Exists("a.txt") {
		t.Fatal("Exists should be true for a.txt")
	}
	if fsys.Exists("missing.txt") {
		t.Fatal("Exists should be false for missing.txt")
	}

	if err := fsys.WriteFile("b.txt", []byte("world"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err = fsys.ReadFile("b.txt")
	if err != nil || string(got) != "world" {
		t.Fatalf("got %q, %v, want %q", got, err, "world")
	}
}

func TestMapFileSystemModTime(t *testing.T) {
	fsys := NewMapFileSystem(map[string]string{"a.txt": "x"})
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	fsys.SetModTime("a.txt", base)
	info, err := fsys.Stat("a.txt")
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if !info.ModTime().Equal(base) {
		t.Fatalf("got modtime %v, want %v", info.ModTime(), base)
	}
}

func TestFixedClock(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewFixedClock(base)
	if !c.Now().Equal(base) {
		t.Fatalf("got %v, want %v", c.Now(), base)
	}
	next := c.Advance(time.Hour)
	if !c.Now().Equal(next) {
		t.Fatalf("Advance did not move clock")
	}
	if !next.Equal(base.Add(time.Hour)) {
		t.Fatalf("got %v, want %v", next, base.Add(time.Hour))
	}
}
