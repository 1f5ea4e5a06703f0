package extmap

import (
	"testing"

	"github.com/TheVeryDarkness/umake/internal/platform"
)

func newTestMapper() *Mapper {
	return New(DefaultModuleExts(), nil, nil, DefaultHeaderSourcePairs())
}

func TestIsCandidate(t *testing.T) {
	m := newTestMapper()
	for _, ext := range []string{".ixx", ".mpp", ".cppm", ".hpp", ".cpp", ".hh", ".cc", ".h", ".c"} {
		if !m.IsCandidate(ext) {
			t.Errorf("expected %s to be a candidate extension", ext)
		}
	}
	if m.IsCandidate(".txt") {
		t.Error(".txt should not be a candidate extension")
	}
}

func TestIsModule(t *testing.T) {
	m := newTestMapper()
	if !m.IsModule(".ixx") {
		t.Error(".ixx should be a module extension")
	}
	if m.IsModule(".cpp") {
		t.Error(".cpp should not be a module extension")
	}
}

func TestSiblingSource(t *testing.T) {
	fsys := platform.NewMapFileSystem(map[string]string{
		"inc/foo.hpp": "",
		"inc/foo.cpp": "",
		"inc/bar.hpp": "",
	})
	m := newTestMapper()

	got, ok := m.SiblingSource(fsys, "inc/foo.hpp")
	if !ok || got != "inc/foo.cpp" {
		t.Errorf("got (%q, %v), want (inc/foo.cpp, true)", got, ok)
	}

	_, ok = m.SiblingSource(fsys, "inc/bar.hpp")
	if ok {
		t.Error("bar.hpp has no sibling .cpp, should return false")
	}

	_, ok = m.SiblingSource(fsys, "inc/foo.cpp")
	if ok {
		t.Error(".cpp is not a header extension, should return false")
	}
}
