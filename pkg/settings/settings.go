// Package settings manages persistent user defaults for the trunkgen CLI.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/trunkgen/trunkgen/pkg/netid"
	"github.com/trunkgen/trunkgen/pkg/util"
)

// Settings holds persistent user preferences
type Settings struct {
	// BaseDir is where systems are written when --base-dir is not given
	BaseDir string `json:"base_dir,omitempty"`

	// System is the system name used when --name is not given
	System string `json:"system,omitempty"`

	// Protocol is the default protocol for new systems
	Protocol string `json:"protocol,omitempty"`

	// BaseConfig is the document templates start from
	BaseConfig string `json:"base_config,omitempty"`

	// AuditLog is the audit trail path; empty disables auditing
	AuditLog string `json:"audit_log,omitempty"`
}

// DefaultSettingsPath returns the default path for the settings file
func DefaultSettingsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "trunkgen_settings.json"
	}
	return filepath.Join(home, ".trunkgen", "settings.json")
}

// Load reads settings from the default location
func Load() (*Settings, error) {
	return LoadFrom(DefaultSettingsPath())
}

// LoadFrom reads settings from path. A missing file yields empty settings.
func LoadFrom(path string) (*Settings, error) {
	s := &Settings{}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parsing settings %s: %w", path, err)
	}
	return s, nil
}

// Save writes settings to the default location
func (s *Settings) Save() error {
	return s.SaveTo(DefaultSettingsPath())
}

// SaveTo writes settings to a specific path
func (s *Settings) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// GetBaseDir returns the base directory (with fallback)
func (s *Settings) GetBaseDir() string {
	if s.BaseDir != "" {
		return s.BaseDir
	}
	return "."
}

// GetProtocol returns the default protocol (with fallback)
func (s *Settings) GetProtocol() netid.Protocol {
	if p, err := netid.ParseProtocol(s.Protocol); err == nil {
		return p
	}
	return netid.ProtocolP25
}

// setters maps the names accepted by Set to their fields.
var setters = map[string]func(s *Settings, v string) error{
	"base_dir":    func(s *Settings, v string) error { s.BaseDir = v; return nil },
	"system":      func(s *Settings, v string) error { s.System = v; return nil },
	"base_config": func(s *Settings, v string) error { s.BaseConfig = v; return nil },
	"audit_log":   func(s *Settings, v string) error { s.AuditLog = v; return nil },
	"protocol": func(s *Settings, v string) error {
		if v == "" {
			s.Protocol = ""
			return nil
		}
		p, err := netid.ParseProtocol(v)
		if err != nil {
			return err
		}
		s.Protocol = string(p)
		return nil
	},
}

// Keys lists the names accepted by Set.
func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set assigns one setting by name. An empty value clears it.
func (s *Settings) Set(key, value string) error {
	set, ok := setters[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q (valid: %s)", util.ErrNotFound, key, strings.Join(Keys(), ", "))
	}
	return set(s, value)
}

// Get returns one setting by name.
func (s *Settings) Get(key string) (string, error) {
	switch key {
	case "base_dir":
		return s.BaseDir, nil
	case "system":
		return s.System, nil
	case "protocol":
		return s.Protocol, nil
	case "base_config":
		return s.BaseConfig, nil
	case "audit_log":
		return s.AuditLog, nil
	}
	return "", fmt.Errorf("%w: unknown setting %q (valid: %s)", util.ErrNotFound, key, strings.Join(Keys(), ", "))
}

// Clear resets all settings to defaults
func (s *Settings) Clear() {
	*s = Settings{}
}
