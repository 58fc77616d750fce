package ui

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Config contains the front-end settings. A subset is persisted as JSON in
// the user's config dir and merged back on startup.
type Config struct {
	Title   string
	Scale   int
	ROMsDir string
	Mute    bool
}

// Defaults fills unset fields.
func (c *Config) Defaults() {
	if c.Title == "" {
		c.Title = "to8"
	}
	if c.Scale <= 0 {
		c.Scale = 2
	}
}

func settingsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "to8emu", "settings.json")
}

type settings struct {
	Scale   int    `json:"scale"`
	ROMsDir string `json:"roms_dir"`
	Mute    bool   `json:"mute"`
}

// loadSettings merges the persisted settings into cfg. Missing or unreadable
// files leave cfg untouched.
func loadSettings(cfg Config) Config {
	p := settingsPath()
	if p == "" {
		return cfg
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return cfg
	}
	var s settings
	if err := json.Unmarshal(data, &s); err != nil {
		return cfg
	}
	if s.Scale > 0 {
		cfg.Scale = s.Scale
	}
	if s.ROMsDir != "" && cfg.ROMsDir == "" {
		cfg.ROMsDir = s.ROMsDir
	}
	cfg.Mute = s.Mute
	return cfg
}

// SaveSettings persists the current settings. Best effort.
func (a *App) SaveSettings() {
	p := settingsPath()
	if p == "" {
		return
	}
	_ = os.MkdirAll(filepath.Dir(p), 0o755)
	data, err := json.MarshalIndent(settings{
		Scale:   a.cfg.Scale,
		ROMsDir: a.cfg.ROMsDir,
		Mute:    a.audioMuted,
	}, "", "  ")
	if err != nil {
		return
	}
	_ = os.WriteFile(p, data, 0o644)
}
