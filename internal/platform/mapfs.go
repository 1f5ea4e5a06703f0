package platform

import (
	"io/fs"
	"testing/fstest"
	"time"
)

// MapFileSystem is an in-memory FileSystem backed by testing/fstest.MapFS,
// used to drive the whole scan/resolve/emit pipeline in tests without
// touching disk.
type MapFileSystem struct {
	files fstest.MapFS
}

// NewMapFileSystem creates an in-memory filesystem from path->content.
// All files are created with mode 0644 and a zero mod time; use
// SetModTime to exercise cache-freshness scenarios.
func NewMapFileSystem(files map[string]string) *MapFileSystem {
	m := make(fstest.MapFS, len(files))
	for path, content := range files {
		m[path] = &fstest.MapFile{Data: []byte(content), Mode: 0644}
	}
	return &MapFileSystem{files: m}
}

// SetModTime overrides the modification time recorded for path,
// creating the entry if necessary. Used to simulate a file changing
// (or not) relative to a cached scan time.
func (m *MapFileSystem) SetModTime(path string, t time.Time) {
	f, ok := m.files[path]
	if !ok {
		f = &fstest.MapFile{Mode: 0644}
		m.files[path] = f
	}
	f.ModTime = t
}

func (m *MapFileSystem) ReadFile(name string) ([]byte, error) {
	return fs.ReadFile(m.files, name)
}

func (m *MapFileSystem) WriteFile(name string, data []byte, perm fs.FileMode) error {
	m.files[name] = &fstest.MapFile{Data: data, Mode: perm}
	return nil
}

func (m *MapFileSystem) Remove(name string) error {
	delete(m.files, name)
	return nil
}

func (m *MapFileSystem) MkdirAll(path string, perm fs.FileMode) error {
	// fstest.MapFS has no explicit directory entries to create.
	return nil
}

func (m *MapFileSystem) Stat(name string) (fs.FileInfo, error) {
	return fs.Stat(m.files, name)
}

func (m *MapFileSystem) Exists(path string) bool {
	_, err := fs.Stat(m.files, path)
	return err == nil
}

func (m *MapFileSystem) Open(name string) (fs.File, error) {
	return m.files.Open(name)
}

// FixedClock is a Clock that always reports the same instant, and can
// be advanced between pipeline phases to test mtime-gating.
type FixedClock struct {
	t time.Time
}

// NewFixedClock returns a Clock pinned at t.
func NewFixedClock(t time.Time) *FixedClock { return &FixedClock{t: t} }

func (c *FixedClock) Now() time.Time { return c.t }

// Advance moves the clock forward by d and returns the new time.
func (c *FixedClock) Advance(d time.Duration) time.Time {
	c.t = c.t.Add(d)
	return c.t
}
