package driver

import (
	"testing"
	"time"

	"github.com/TheVeryDarkness/umake/cache"
	"github.com/TheVeryDarkness/umake/extmap"
	"github.com/TheVeryDarkness/umake/internal/logging"
	"github.com/TheVeryDarkness/umake/internal/platform"
	"github.com/TheVeryDarkness/umake/modindex"
	"github.com/TheVeryDarkness/umake/model"
)

func testMapper() *extmap.Mapper {
	return extmap.New(extmap.DefaultModuleExts(), nil, nil, extmap.DefaultHeaderSourcePairs())
}

func TestScanFreshFileInvokesScanner(t *testing.T) {
	fsys := platform.NewMapFileSystem(map[string]string{
		"a.ixx": "export module a;",
	})
	clock := platform.NewFixedClock(time.Unix(1000, 0))
	idx := modindex.New()
	d := New(fsys, clock, idx, testMapper(), cache.New(), logging.New(0))

	rec, err := d.Scan("a.ixx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Provide != "a" {
		t.Fatalf("got Provide=%q, want a", rec.Provide)
	}
	if p, ok := idx.ProviderOf("a"); !ok || p != "a.ixx" {
		t.Fatalf("expected a.ixx registered as provider of a, got (%q, %v)", p, ok)
	}
}

func TestScanReusesFreshCacheEntry(t *testing.T) {
	fsys := platform.NewMapFileSystem(map[string]string{
		"a.ixx": "export module a;",
	})
	fsys.SetModTime("a.ixx", time.Unix(500, 0))

	store := cache.New()
	cached := model.NewRecord()
	cached.Provide = "a"
	cached.Time = 1000 // strictly greater than the file's mtime (500)
	store.Put("a.ixx", cached)

	idx := modindex.New()
	d := New(fsys, platform.NewFixedClock(time.Unix(2000, 0)), idx, testMapper(), store, logging.New(0))

	rec, err := d.Scan("a.ixx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec != cached {
		t.Fatal("expected the cached record to be reused verbatim")
	}
}

func TestScanRescansStaleCacheEntry(t *testing.T) {
	fsys := platform.NewMapFileSystem(map[string]string{
		"a.ixx": "export module a;",
	})
	fsys.SetModTime("a.ixx", time.Unix(5000, 0))

	store := cache.New()
	stale := model.NewRecord()
	stale.Provide = "old"
	stale.Time = 1000 // not greater than the file's mtime (5000): stale
	store.Put("a.ixx", stale)

	idx := modindex.New()
	d := New(fsys, platform.NewFixedClock(time.Unix(6000, 0)), idx, testMapper(), store, logging.New(0))

	rec, err := d.Scan("a.ixx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Provide != "a" {
		t.Fatalf("expected rescan to pick up fresh Provide=a, got %q", rec.Provide)
	}
}

func TestNoCacheForcesRescan(t *testing.T) {
	fsys := platform.NewMapFileSystem(map[string]string{
		"a.ixx": "export module a;",
	})
	fsys.SetModTime("a.ixx", time.Unix(1, 0))

	store := cache.New()
	cached := model.NewRecord()
	cached.Provide = "a"
	cached.Time = 999999
	store.Put("a.ixx", cached)

	idx := modindex.New()
	d := New(fsys, platform.NewFixedClock(time.Unix(2, 0)), idx, testMapper(), store, logging.New(0))
	d.NoCache = true

	rec, err := d.Scan("a.ixx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec == cached {
		t.Fatal("expected --no-cache to bypass the cached record")
	}
}
