// Package prefs loads the browse client's settings file. Settings live
// in TOML at ~/.config/flathunt/browse.toml; a missing or unreadable
// file degrades to defaults so the client always starts
package prefs

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

const defaultPath = "~/.config/flathunt/browse.toml"

// Defaults applied wherever the file is silent
const (
	DefaultBaseURL  = "http://localhost:4000"
	DefaultLimit    = 20
	DefaultDebounce = 400 * time.Millisecond
)

// Prefs holds the browse client settings
type Prefs struct {
	// BaseURL is the listing API origin
	BaseURL string `toml:"base_url"`

	// StateDir roots the response cache and the persisted filter file.
	// Empty means no durable state at all
	StateDir string `toml:"state_dir"`

	// Limit is the page size (1-100)
	Limit int `toml:"limit"`

	// DebounceMS is the filter apply quiet window in milliseconds
	DebounceMS int `toml:"debounce_ms"`
}

// Debounce returns the configured quiet window as a duration
func (p Prefs) Debounce() time.Duration {
	if p.DebounceMS <= 0 {
		return DefaultDebounce
	}
	return time.Duration(p.DebounceMS) * time.Millisecond
}

// DefaultPath returns the default settings file path
func DefaultPath() string { return defaultPath }

// DefaultStateDir returns the per-user state root used when the file
// does not name one. Empty when no home directory can be resolved
func DefaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", "flathunt")
}

func defaults() Prefs {
	return Prefs{
		BaseURL:  DefaultBaseURL,
		StateDir: DefaultStateDir(),
		Limit:    DefaultLimit,
	}
}

// Load reads the settings at path (default path when empty). Every
// failure mode degrades to defaults: a client with no settings file is
// the normal case, not an error
func Load(path string) Prefs {
	p := defaults()

	resolved, err := resolvePath(path)
	if err != nil {
		return p
	}
	raw, err := os.ReadFile(resolved)
	if err != nil {
		return p
	}
	if err := toml.Unmarshal(raw, &p); err != nil {
		return defaults()
	}

	if strings.TrimSpace(p.BaseURL) == "" {
		p.BaseURL = DefaultBaseURL
	}
	if p.Limit < 1 || p.Limit > 100 {
		p.Limit = DefaultLimit
	}
	return p
}

// Save writes the settings to path (default path when empty), creating
// parent directories as needed
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return err
	}
	raw, err := toml.Marshal(p)
	if err != nil {
		return err
	}
	return os.WriteFile(resolved, raw, 0o644)
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		path = defaultPath
	}
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	if path == "" {
		return "", errors.New("prefs: empty path")
	}
	return filepath.Abs(path)
}
