// Package settings persists user configuration: the start/stop hotkey,
// the client window title, asset locations, and each script's last saved
// options. Backed by one YAML file.
package settings

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"osbc/internal/hotkey"
	"osbc/internal/logging"
)

// Defaults applied when the file is missing or a key is unset.
const (
	DefaultWindowTitle = "RuneLite"
	DefaultTemplateDir = "assets/templates"
	DefaultFontDir     = "assets/fonts"
	DefaultPathProfile = "NORMAL"
)

// Settings wraps the config file. Not safe for concurrent mutation; the
// UI thread owns it.
type Settings struct {
	v    *viper.Viper
	path string
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("hotkey.combo", hotkey.DefaultCombo)
	v.SetDefault("window.title", DefaultWindowTitle)
	v.SetDefault("assets.templates", DefaultTemplateDir)
	v.SetDefault("assets.fonts", DefaultFontDir)
	v.SetDefault("walker.profile", DefaultPathProfile)
	return v
}

// Load reads the YAML file at path. A missing or corrupt file never
// fails startup; both fall back to an in-memory default configuration,
// and a corrupt file stays untouched on disk until the next Save.
func Load(path string) (*Settings, error) {
	v := newViper(path)
	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			logging.Info("No settings file at %s; using defaults", path)
		} else {
			logging.Warn("Settings file %s is unreadable (%v); using defaults", path, err)
			v = newViper(path)
		}
	}
	return &Settings{v: v, path: path}, nil
}

// Save writes the current configuration back to disk.
func (s *Settings) Save() error {
	if err := s.v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}
	return nil
}

// HotkeyCombo returns the configured start/stop combination.
func (s *Settings) HotkeyCombo() []string {
	return s.v.GetStringSlice("hotkey.combo")
}

// SetHotkeyCombo replaces the start/stop combination.
func (s *Settings) SetHotkeyCombo(combo []string) {
	s.v.Set("hotkey.combo", combo)
}

// WindowTitle returns the client window title to focus.
func (s *Settings) WindowTitle() string {
	return s.v.GetString("window.title")
}

// TemplateDir returns where sprite templates live.
func (s *Settings) TemplateDir() string {
	return s.v.GetString("assets.templates")
}

// FontDir returns where the glyph sets live.
func (s *Settings) FontDir() string {
	return s.v.GetString("assets.fonts")
}

// PathProfile returns the routing profile for the path service.
func (s *Settings) PathProfile() string {
	return s.v.GetString("walker.profile")
}

func scriptKey(name string) string {
	return "scripts." + strings.ToLower(strings.ReplaceAll(name, " ", "_"))
}

// ScriptOptions returns the last saved option values for a script, nil
// when none were ever saved.
func (s *Settings) ScriptOptions(name string) map[string]any {
	if !s.v.IsSet(scriptKey(name)) {
		return nil
	}
	return s.v.GetStringMap(scriptKey(name))
}

// SetScriptOptions stores a script's option values.
func (s *Settings) SetScriptOptions(name string, values map[string]any) {
	s.v.Set(scriptKey(name), values)
}
