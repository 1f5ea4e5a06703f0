// Package cache implements the Cache Store (§4.B): persistence of
// direct dependency records to a single JSON document
// (umakeCache.json) so unchanged files can skip a rescan.
package cache

import (
	"encoding/json"
	"io/fs"
	"sort"

	"github.com/TheVeryDarkness/umake/internal/logging"
	"github.com/TheVeryDarkness/umake/internal/platform"
	"github.com/TheVeryDarkness/umake/model"
)

// FileName is the fixed cache file name, always written directly
// under the project root.
const FileName = "umakeCache.json"

// Store holds the records loaded from (or destined for) the cache
// file. It is deliberately separate from whatever "live" record map
// the Scan Driver maintains, so a driver can compare a freshly scanned
// record's timestamp against the previously cached one (§4.B, §4.D).
type Store struct {
	records map[string]*model.Record
}

// New returns an empty Store.
func New() *Store {
	return &Store{records: map[string]*model.Record{}}
}

// Load reads path (relative to fsys's root) and parses it into a
// Store. A missing file is not an error: it simply yields an empty
// Store, since the very first run of the tool has no cache yet.
// Malformed JSON deletes the cache file and logs a warning instead of
// failing the whole run (§4.B).
func Load(fsys platform.FileSystem, path string, log *logging.Logger) *Store {
	s := New()
	if !fsys.Exists(path) {
		return s
	}
	raw, err := fsys.ReadFile(path)
	if err != nil {
		log.Warning("could not read cache %s: %v", path, err)
		return s
	}

	var wire map[string]*model.Record
	if err := json.Unmarshal(raw, &wire); err != nil {
		log.Warning("cache %s is corrupt, discarding: %v", path, err)
		_ = fsys.Remove(path)
		return s
	}
	s.records = wire
	return s
}

// Get returns the cached record for path, if any.
func (s *Store) Get(path string) (*model.Record, bool) {
	r, ok := s.records[path]
	return r, ok
}

// Put stores (or replaces) the record for path.
func (s *Store) Put(path string, rec *model.Record) {
	s.records[path] = rec
}

// Save serializes the store to path, sorting keys for deterministic
// output bytes across runs (§5).
func (s *Store) Save(fsys platform.FileSystem, path string) error {
	keys := make([]string, 0, len(s.records))
	for k := range s.records {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ordered := make(map[string]*model.Record, len(s.records))
	for _, k := range keys {
		ordered[k] = s.records[k]
	}

	data, err := json.MarshalIndent(ordered, "", "  ")
	if err != nil {
		return model.Wrap(model.KindCacheCorrupt, path, err)
	}
	if err := fsys.WriteFile(path, data, fs.FileMode(0644)); err != nil {
		return model.Wrap(model.KindCacheCorrupt, path, err)
	}
	return nil
}

// Discard deletes the on-disk cache file. Called on a fatal build
// failure so a half-written or poisoned cache never survives to the
// next run (§4.B).
func Discard(fsys platform.FileSystem, path string) {
	_ = fsys.Remove(path)
}
