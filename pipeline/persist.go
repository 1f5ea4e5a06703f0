package pipeline

import (
	"encoding/json"
	"io/fs"

	"github.com/TheVeryDarkness/umake/internal/platform"
)

// SaveConfig writes cfg as umakeConfig.json (--save-config), matching
// the normative round-trip shape used by --load-config.
func SaveConfig(fsys platform.FileSystem, path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return fsys.WriteFile(path, data, fs.FileMode(0644))
}

// LoadConfig reads a previously saved umakeConfig.json (--load-config).
func LoadConfig(fsys platform.FileSystem, path string) (*Config, error) {
	raw, err := fsys.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := json.Unmarshal(raw, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
