package pipeline

import (
	"context"
	"strings"

	"github.com/TheVeryDarkness/umake/cache"
	"github.com/TheVeryDarkness/umake/driver"
	"github.com/TheVeryDarkness/umake/emitter"
	"github.com/TheVeryDarkness/umake/extmap"
	"github.com/TheVeryDarkness/umake/internal/logging"
	"github.com/TheVeryDarkness/umake/internal/platform"
	"github.com/TheVeryDarkness/umake/modindex"
	"github.com/TheVeryDarkness/umake/model"
	"github.com/TheVeryDarkness/umake/resolver"
	"github.com/TheVeryDarkness/umake/walker"
)

// ConfigFileName is the fixed --save-config/--load-config path.
const ConfigFileName = "umakeConfig.json"

// LogFileName is the fixed --log-update append target.
const LogFileName = "umakeLog.txt"

// Result is everything a caller (the CLI, or a test) might want out
// of one run: the discovered files, the emitted manifest records, and
// the formatted manifest text. MissingModule warnings are not part of
// Result: the resolver logs each one as it finds it.
type Result struct {
	Files     []string
	Manifest  []*model.EmitRecord
	Formatted string
}

// Run executes one complete scan → resolve → emit pass. fsys and
// clock are injected so tests can drive the whole pipeline in memory;
// production callers pass platform.NewOSFileSystem() and
// platform.RealClock{}.
//
// ctx is checked once per file in the scan loop, so a cancelled
// context stops a long scan between files; the resolve and emit
// phases do not check it and run to completion synchronously (§5).
func Run(ctx context.Context, fsys platform.FileSystem, clock platform.Clock, cfg *Config, log *logging.Logger) (*Result, error) {
	if cfg.Encoding != "" && !strings.EqualFold(cfg.Encoding, "utf-8") {
		log.Warning("encoding %q is not supported; sources are read as UTF-8", cfg.Encoding)
	}

	mapper := extmap.New(cfg.ModuleExts, cfg.HeaderOnlyExts, cfg.SourceOnlyExts, cfg.HeaderToSourcePairs)

	var ignoreLines []string
	if raw, err := fsys.ReadFile(".umakeignore"); err == nil {
		ignoreLines = splitLines(string(raw))
	}

	files, err := walker.Walk(fsys, mapper, walker.Options{
		Folders:      cfg.Folders,
		ExcludeDirs:  cfg.ExcludeDirs,
		ExcludeFiles: cfg.ExcludeFiles,
		ExcludeGlobs: cfg.ExcludeGlobs,
		IgnoreLines:  ignoreLines,
	})
	if err != nil {
		return nil, err
	}

	for _, t := range cfg.Sources {
		if !containsPath(files, t.Source) {
			files = append(files, t.Source)
		}
	}

	idx := modindex.New()

	var store *cache.Store
	if cfg.NoCache {
		store = cache.New()
	} else {
		store = cache.Load(fsys, cache.FileName, log)
	}

	var logSink interface{ Close() error }
	if cfg.LogUpdate {
		f, err := logging.NewFileSink(LogFileName)
		if err == nil {
			log.SetSink(f)
			logSink = f
		}
	}
	if logSink != nil {
		defer logSink.Close()
	}

	drv := driver.New(fsys, clock, idx, mapper, store, log)
	drv.NoCache = cfg.NoCache

	for _, f := range files {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if _, err := drv.Scan(f); err != nil {
			cache.Discard(fsys, cache.FileName)
			return nil, err
		}
	}

	if !cfg.NoCache {
		if err := store.Save(fsys, cache.FileName); err != nil {
			log.Warning("could not persist cache: %v", err)
		}
	}

	res := resolver.New(drv.Live, idx, log)

	targets := make([]emitter.Target, 0, len(cfg.Sources))
	for _, t := range cfg.Sources {
		targets = append(targets, emitter.Target{Name: t.Name, Source: t.Source})
	}

	manifest, err := emitter.Emit(emitter.Options{
		Targets:    targets,
		Order:      files,
		AutoObject: !cfg.NoAutoObject,
		Records:    drv.Live,
		Idx:        idx,
		Res:        res,
	})
	if err != nil {
		cache.Discard(fsys, cache.FileName)
		return nil, err
	}

	return &Result{
		Files:     files,
		Manifest:  manifest,
		Formatted: emitter.FormatManifest(manifest),
	}, nil
}

func containsPath(paths []string, p string) bool {
	for _, x := range paths {
		if x == p {
			return true
		}
	}
	return false
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, trimCR(s[start:i]))
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, trimCR(s[start:]))
	}
	return lines
}

func trimCR(s string) string {
	if len(s) > 0 && s[len(s)-1] == '\r' {
		return s[:len(s)-1]
	}
	return s
}
