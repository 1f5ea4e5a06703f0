// Package extmap implements the Extension Mapper (§4.H): it knows
// which file extensions are module interfaces, which are header-only
// or source-only, and which header/source extensions pair up so the
// scanner can infer a companion source file for auto-object
// inference (§4.A, §4.C).
package extmap

import (
	"path/filepath"
	"strings"

	"github.com/TheVeryDarkness/umake/internal/platform"
)

// Mapper holds the extension configuration driving both file-tree
// walking candidacy and header-to-source auto-object inference.
type Mapper struct {
	ModuleExts        map[string]struct{}
	HeaderOnlyExts    map[string]struct{}
	SourceOnlyExts    map[string]struct{}
	HeaderToSourcePairs map[string]string // header ext -> source ext
}

// DefaultHeaderSourcePairs mirrors the original tool's defaults:
// .hh/.cc, .hpp/.cpp, .h/.c.
func DefaultHeaderSourcePairs() map[string]string {
	return map[string]string{
		".hh":  ".cc",
		".hpp": ".cpp",
		".h":   ".c",
	}
}

// DefaultModuleExts mirrors the original tool's -M default.
func DefaultModuleExts() []string {
	return []string{".ixx", ".mpp", ".cppm"}
}

// New builds a Mapper from explicit extension lists, as supplied by
// the CLI's -M/-eh/-es/-ehs flags.
func New(moduleExts, headerOnlyExts, sourceOnlyExts []string, headerToSourcePairs map[string]string) *Mapper {
	m := &Mapper{
		ModuleExts:          toSet(moduleExts),
		HeaderOnlyExts:      toSet(headerOnlyExts),
		SourceOnlyExts:      toSet(sourceOnlyExts),
		HeaderToSourcePairs: map[string]string{},
	}
	for k, v := range headerToSourcePairs {
		m.HeaderToSourcePairs[k] = v
	}
	return m
}

func toSet(exts []string) map[string]struct{} {
	s := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		s[e] = struct{}{}
	}
	return s
}

// IsCandidate reports whether a file with this extension should be
// walked by the File-Tree Walker (§4.C): a module interface
// extension, a key or value of the header/source pair map, or a
// declared header-only/source-only extension.
func (m *Mapper) IsCandidate(ext string) bool {
	if _, ok := m.ModuleExts[ext]; ok {
		return true
	}
	if _, ok := m.HeaderOnlyExts[ext]; ok {
		return true
	}
	if _, ok := m.SourceOnlyExts[ext]; ok {
		return true
	}
	for h, s := range m.HeaderToSourcePairs {
		if ext == h || ext == s {
			return true
		}
	}
	return false
}

// IsModule reports whether ext is a declared module interface extension.
func (m *Mapper) IsModule(ext string) bool {
	_, ok := m.ModuleExts[ext]
	return ok
}

// SiblingSource returns the root-relative path of the source file
// paired with headerPath (relative to root), if headerPath's
// extension is a known header extension and the sibling file exists
// in fsys. Returns "", false otherwise.
func (m *Mapper) SiblingSource(fsys platform.FileSystem, headerPath string) (string, bool) {
	ext := filepath.Ext(headerPath)
	sourceExt, ok := m.HeaderToSourcePairs[ext]
	if !ok {
		return "", false
	}
	candidate := strings.TrimSuffix(headerPath, ext) + sourceExt
	if !fsys.Exists(candidate) {
		return "", false
	}
	return candidate, true
}
