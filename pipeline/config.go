// Package pipeline wires the walker, driver, resolver, and emitter
// into the single end-to-end run the CLI drives, and defines the
// persisted Config shape bound by cobra/viper (§10.1).
package pipeline

import "github.com/TheVeryDarkness/umake/extmap"

// Target is one positional `<targetName> <sourcePath>` pair.
type Target struct {
	Name   string `mapstructure:"name" yaml:"name" json:"name"`
	Source string `mapstructure:"source" yaml:"source" json:"source"`
}

// Config is the full bindable argument set (§6), decodable by viper
// from flags/env/yaml, and round-tripped verbatim as
// umakeConfig.json via --save-config/--load-config.
type Config struct {
	// Root directory all relative paths are taken against.
	Root string `mapstructure:"root" yaml:"root" json:"root"`
	// Folders to walk, relative to Root (default: Root itself).
	Folders []string `mapstructure:"folders" yaml:"folders" json:"folders"`
	// Target is the output mode: info-only, cmake, cmake-store.
	Target string `mapstructure:"target" yaml:"target" json:"target"`
	// Sources is the positional targetName/sourcePath pair list.
	Sources []Target `mapstructure:"sources" yaml:"sources" json:"sources"`

	// ModuleExts are module interface extensions (-M).
	ModuleExts []string `mapstructure:"moduleExts" yaml:"moduleExts" json:"moduleExts"`
	// Encoding is the source text encoding (-e). Only "utf-8" is
	// actually supported; other values are accepted and warned about.
	Encoding string `mapstructure:"encoding" yaml:"encoding" json:"encoding"`

	ExcludeDirs  []string `mapstructure:"excludeDirs" yaml:"excludeDirs" json:"excludeDirs"`
	ExcludeFiles []string `mapstructure:"excludeFiles" yaml:"excludeFiles" json:"excludeFiles"`
	ExcludeGlobs []string `mapstructure:"excludeGlobs" yaml:"excludeGlobs" json:"excludeGlobs"`

	HeaderOnlyExts      []string          `mapstructure:"headerOnlyExts" yaml:"headerOnlyExts" json:"headerOnlyExts"`
	SourceOnlyExts      []string          `mapstructure:"sourceOnlyExts" yaml:"sourceOnlyExts" json:"sourceOnlyExts"`
	HeaderToSourcePairs map[string]string `mapstructure:"headerToSourcePairs" yaml:"headerToSourcePairs" json:"headerToSourcePairs"`

	NoAutoObject bool `mapstructure:"noAutoObject" yaml:"noAutoObject" json:"noAutoObject"`
	NoCache      bool `mapstructure:"noCache" yaml:"noCache" json:"noCache"`
	LogUpdate    bool `mapstructure:"logUpdate" yaml:"logUpdate" json:"logUpdate"`

	Verbose int `mapstructure:"verbose" yaml:"verbose" json:"verbose"`
}

// Clone returns a deep copy of c, matching the teacher's CemConfig
// convention of an explicit Clone method rather than relying on
// struct-copy semantics for slice/map fields.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	clone.Folders = append([]string(nil), c.Folders...)
	clone.Sources = append([]Target(nil), c.Sources...)
	clone.ModuleExts = append([]string(nil), c.ModuleExts...)
	clone.ExcludeDirs = append([]string(nil), c.ExcludeDirs...)
	clone.ExcludeFiles = append([]string(nil), c.ExcludeFiles...)
	clone.ExcludeGlobs = append([]string(nil), c.ExcludeGlobs...)
	clone.HeaderOnlyExts = append([]string(nil), c.HeaderOnlyExts...)
	clone.SourceOnlyExts = append([]string(nil), c.SourceOnlyExts...)
	if c.HeaderToSourcePairs != nil {
		clone.HeaderToSourcePairs = make(map[string]string, len(c.HeaderToSourcePairs))
		for k, v := range c.HeaderToSourcePairs {
			clone.HeaderToSourcePairs[k] = v
		}
	}
	return &clone
}

// Default returns a Config seeded with the documented flag defaults
// (§6): root ".", target "info-only", module extensions
// .ixx/.mpp/.cppm, auto-object inference and the cache both on.
func Default() *Config {
	return &Config{
		Root:                ".",
		Target:              "info-only",
		Encoding:            "utf-8",
		ModuleExts:          extmap.DefaultModuleExts(),
		HeaderToSourcePairs: extmap.DefaultHeaderSourcePairs(),
	}
}
