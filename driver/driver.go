// Package driver implements the Scan Driver (§4.D): the per-file
// decision between reusing a cached record and invoking the Lexical
// Scanner, keeping the Module Index consistent either way.
package driver

import (
	"fmt"

	"github.com/TheVeryDarkness/umake/cache"
	"github.com/TheVeryDarkness/umake/extmap"
	"github.com/TheVeryDarkness/umake/internal/logging"
	"github.com/TheVeryDarkness/umake/internal/platform"
	"github.com/TheVeryDarkness/umake/modindex"
	"github.com/TheVeryDarkness/umake/model"
	"github.com/TheVeryDarkness/umake/scanner"
)

// Driver threads a cache, clock, and mapper through repeated calls to
// Scan, one per candidate file.
type Driver struct {
	fsys   platform.FileSystem
	clock  platform.Clock
	idx    *modindex.Index
	mapper *extmap.Mapper
	store  *cache.Store
	log    *logging.Logger

	// NoCache forces every file through the scanner, ignoring any
	// cached record (the CLI's --no-cache flag).
	NoCache bool

	// Live holds every record produced or reused this run, keyed by
	// root-relative path, feeding the resolver and emitter.
	Live map[string]*model.Record
}

// New builds a Driver over an already-loaded cache Store.
func New(fsys platform.FileSystem, clock platform.Clock, idx *modindex.Index, mapper *extmap.Mapper, store *cache.Store, log *logging.Logger) *Driver {
	return &Driver{
		fsys:   fsys,
		clock:  clock,
		idx:    idx,
		mapper: mapper,
		store:  store,
		log:    log,
		Live:   map[string]*model.Record{},
	}
}

// Scan produces the direct dependency record for path, reusing the
// cached entry when it is provably not stale (§4.D): the cached
// record's time must be strictly greater than the file's current
// modification time.
func (d *Driver) Scan(path string) (*model.Record, error) {
	logLine := fmt.Sprintf("Missed, %q", path)

	if !d.NoCache {
		if cached, ok := d.store.Get(path); ok {
			info, err := d.fsys.Stat(path)
			if err == nil {
				mtime := float64(info.ModTime().Unix())
				if cached.Time > mtime {
					if err := d.register(path, cached); err != nil {
						return nil, err
					}
					d.Live[path] = cached
					return cached, nil
				}
				logLine = fmt.Sprintf("%g < %g, %q", cached.Time, mtime, path)
			}
		}
	}

	rec, err := scanner.Scan(d.fsys, d.idx, d.mapper, path)
	if err != nil {
		return nil, err
	}
	rec.Time = float64(d.clock.Now().Unix())

	if err := d.register(path, rec); err != nil {
		return nil, err
	}
	d.Live[path] = rec
	d.store.Put(path, rec)
	d.log.Update(logLine)
	return rec, nil
}

func (d *Driver) register(path string, rec *model.Record) error {
	if rec.Provide != "" {
		if err := d.idx.RegisterProvide(rec.Provide, path); err != nil {
			return err
		}
	}
	if rec.Implement != "" {
		if err := d.idx.RegisterImplement(rec.Implement, path); err != nil {
			return err
		}
	}
	return nil
}
