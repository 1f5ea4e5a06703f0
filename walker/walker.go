// Package walker implements the File-Tree Walker (§4.C): it recurses
// through the configured source folders, filters candidate files by
// extension through the Extension Mapper, and honors explicit
// exclusion lists, doublestar glob excludes, and an optional
// .umakeignore file (§10.5).
package walker

import (
	"io/fs"
	"path"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"

	"github.com/TheVeryDarkness/umake/extmap"
	"github.com/TheVeryDarkness/umake/internal/platform"
)

// Options configures one walk.
type Options struct {
	// Folders are root-relative directories to walk. An empty list
	// means the project root itself.
	Folders []string

	// ExcludeDirs and ExcludeFiles are exact root-relative path
	// matches, skipped outright (§4.C).
	ExcludeDirs  []string
	ExcludeFiles []string

	// ExcludeGlobs are doublestar patterns matched against the
	// root-relative path of every candidate file.
	ExcludeGlobs []string

	// IgnoreLines holds the lines of a .umakeignore file, if any,
	// applied with gitignore semantics.
	IgnoreLines []string
}

// Walk returns the root-relative paths of every candidate file under
// the configured folders, in a deterministic (lexicographically
// sorted per directory) order (§4.C, §5).
func Walk(fsys platform.FileSystem, mapper *extmap.Mapper, opts Options) ([]string, error) {
	excludedDirs := toSet(opts.ExcludeDirs)
	excludedFiles := toSet(opts.ExcludeFiles)

	var matcher *ignore.GitIgnore
	if len(opts.IgnoreLines) > 0 {
		matcher = ignore.CompileIgnoreLines(opts.IgnoreLines...)
	}

	folders := opts.Folders
	if len(folders) == 0 {
		folders = []string{"."}
	}

	var out []string
	seen := map[string]struct{}{}
	for _, folder := range folders {
		root := path.Clean(folder)
		err := fs.WalkDir(asFS(fsys), root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			rel := path.Clean(p)
			if d.IsDir() {
				if rel != root && (excludedDirs[rel] || matchesIgnore(matcher, rel, true)) {
					return fs.SkipDir
				}
				return nil
			}
			if excludedFiles[rel] {
				return nil
			}
			if matchesIgnore(matcher, rel, false) {
				return nil
			}
			if matchesAnyGlob(opts.ExcludeGlobs, rel) {
				return nil
			}
			if !mapper.IsCandidate(filepath.Ext(rel)) {
				return nil
			}
			if _, dup := seen[rel]; dup {
				return nil
			}
			seen[rel] = struct{}{}
			out = append(out, rel)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func toSet(items []string) map[string]bool {
	s := make(map[string]bool, len(items))
	for _, it := range items {
		s[path.Clean(it)] = true
	}
	return s
}

func matchesIgnore(matcher *ignore.GitIgnore, rel string, isDir bool) bool {
	if matcher == nil {
		return false
	}
	if isDir {
		return matcher.MatchesPath(rel + "/")
	}
	return matcher.MatchesPath(rel)
}

func matchesAnyGlob(globs []string, rel string) bool {
	for _, g := range globs {
		if ok, err := doublestar.Match(g, rel); err == nil && ok {
			return true
		}
	}
	return false
}

// asFS adapts platform.FileSystem's Open method to fs.FS so fs.WalkDir
// can drive the traversal over either OSFileSystem or MapFileSystem.
func asFS(fsys platform.FileSystem) fs.FS {
	return fsOpenAdapter{fsys}
}

type fsOpenAdapter struct{ fsys platform.FileSystem }

func (a fsOpenAdapter) Open(name string) (fs.File, error) { return a.fsys.Open(name) }
