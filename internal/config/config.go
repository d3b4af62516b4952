package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

const maxRecentFiles = 10

// Config holds the editor's persisted settings.
type Config struct {
	RecentFiles []string `json:"recent_files"`
	MaxHistory  int      `json:"max_history"` // 0 keeps every undo snapshot
	TabWidth    int      `json:"tab_width"`
	ConfirmNew  bool     `json:"confirm_new"` // ask before New discards text

	path string
}

// Default returns the settings used when no config file exists.
func Default() *Config {
	return &Config{
		TabWidth:   4,
		ConfirmNew: true,
		path:       DefaultPath(),
	}
}

// DefaultPath is ~/.config/notepad/config.json.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "notepad", "config.json")
}

// Load reads the config from DefaultPath.
func Load() (*Config, error) {
	return LoadFrom(DefaultPath())
}

// LoadFrom reads the config at path. A missing or unparsable file yields the
// defaults; only real read errors are returned.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()
	cfg.path = path
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		cfg = Default()
		cfg.path = path
		return cfg, nil
	}
	if cfg.TabWidth <= 0 {
		cfg.TabWidth = 4
	}
	if cfg.MaxHistory < 0 {
		cfg.MaxHistory = 0
	}
	return cfg, nil
}

// Path returns the file the config is loaded from and saved to.
func (c *Config) Path() string {
	if c.path == "" {
		return DefaultPath()
	}
	return c.path
}

// Save writes the config to disk.
func Save(cfg *Config) error {
	p := cfg.Path()
	if err := os.MkdirAll(filepath.Dir(p), 0700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(p, data, 0600); err != nil {
		return err
	}
	FixOwnership(p)
	return nil
}

// AddRecent moves path to the front of the recent files list.
func (c *Config) AddRecent(path string) {
	if path == "" {
		return
	}
	list := []string{path}
	for _, p := range c.RecentFiles {
		if p != path {
			list = append(list, p)
		}
	}
	if len(list) > maxRecentFiles {
		list = list[:maxRecentFiles]
	}
	c.RecentFiles = list
}

// RemoveRecent drops path from the recent files list.
func (c *Config) RemoveRecent(path string) {
	kept := c.RecentFiles[:0]
	for _, p := range c.RecentFiles {
		if p != path {
			kept = append(kept, p)
		}
	}
	c.RecentFiles = kept
}

// LastRecent returns the most recently used file, or "".
func (c *Config) LastRecent() string {
	if len(c.RecentFiles) == 0 {
		return ""
	}
	return c.RecentFiles[0]
}
