package settings

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/trunkgen/trunkgen/pkg/netid"
	"github.com/trunkgen/trunkgen/pkg/util"
)

func TestSettings_Defaults(t *testing.T) {
	s := &Settings{}

	if got := s.GetBaseDir(); got != "." {
		t.Errorf("GetBaseDir() default = %q, want %q", got, ".")
	}
	if got := s.GetProtocol(); got != netid.ProtocolP25 {
		t.Errorf("GetProtocol() default = %q, want p25", got)
	}
	if s.System != "" {
		t.Errorf("System should be empty, got %q", s.System)
	}
}

func TestSettings_Set(t *testing.T) {
	s := &Settings{}

	tests := []struct {
		key, value string
		check      func() bool
	}{
		{"base_dir", "/srv/dvm", func() bool { return s.GetBaseDir() == "/srv/dvm" }},
		{"system", "skynet", func() bool { return s.System == "skynet" }},
		{"protocol", "DMR", func() bool { return s.GetProtocol() == netid.ProtocolDMR && s.Protocol == "dmr" }},
		{"base_config", "/opt/dvm/config.example.yml", func() bool { return s.BaseConfig == "/opt/dvm/config.example.yml" }},
		{"audit_log", "/var/log/trunkgen.log", func() bool { return s.AuditLog == "/var/log/trunkgen.log" }},
		{"protocol", "", func() bool { return s.Protocol == "" }},
	}
	for _, tt := range tests {
		if err := s.Set(tt.key, tt.value); err != nil {
			t.Errorf("Set(%q, %q) error: %v", tt.key, tt.value, err)
			continue
		}
		if !tt.check() {
			t.Errorf("Set(%q, %q) did not take effect: %+v", tt.key, tt.value, s)
		}
	}
}

func TestSettings_SetErrors(t *testing.T) {
	s := &Settings{}
	if err := s.Set("colour", "on"); !errors.Is(err, util.ErrNotFound) {
		t.Errorf("unknown key: expected ErrNotFound, got %v", err)
	}
	if err := s.Set("protocol", "tetra"); !errors.Is(err, netid.ErrUnknownProtocol) {
		t.Errorf("bad protocol: expected ErrUnknownProtocol, got %v", err)
	}
	if s.Protocol != "" {
		t.Errorf("failed Set should not change Protocol, got %q", s.Protocol)
	}
}

func TestSettings_Get(t *testing.T) {
	s := &Settings{System: "skynet", Protocol: "nxdn"}
	for _, key := range Keys() {
		if _, err := s.Get(key); err != nil {
			t.Errorf("Get(%q) error: %v", key, err)
		}
	}
	if got, _ := s.Get("system"); got != "skynet" {
		t.Errorf("Get(system) = %q", got)
	}
	if got, _ := s.Get("base_dir"); got != "" {
		t.Errorf("Get(base_dir) = %q, want unset", got)
	}
	if _, err := s.Get("colour"); !errors.Is(err, util.ErrNotFound) {
		t.Errorf("unknown key: expected ErrNotFound, got %v", err)
	}
}

func TestKeys(t *testing.T) {
	keys := Keys()
	if len(keys) != 5 || keys[0] != "audit_log" || keys[4] != "system" {
		t.Errorf("Keys() = %v", keys)
	}
}

func TestSettings_Clear(t *testing.T) {
	s := &Settings{BaseDir: "/srv", System: "skynet", Protocol: "dmr", AuditLog: "a.log"}
	s.Clear()
	if *s != (Settings{}) {
		t.Errorf("Clear() left %+v", s)
	}
}

func TestSettings_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.json")

	s := &Settings{BaseDir: "/srv/dvm", System: "skynet", Protocol: "nxdn"}
	if err := s.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error: %v", err)
	}
	if *loaded != *s {
		t.Errorf("loaded %+v, want %+v", loaded, s)
	}
}

func TestLoadFrom_Missing(t *testing.T) {
	s, err := LoadFrom(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("LoadFrom() error: %v", err)
	}
	if *s != (Settings{}) {
		t.Errorf("missing file should give empty settings, got %+v", s)
	}
}

func TestLoadFrom_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Error("expected a parse error")
	}
}

func TestLoadFrom_ReadError(t *testing.T) {
	if _, err := LoadFrom(t.TempDir()); err == nil {
		t.Error("expected an error reading a directory")
	}
}

func TestDefaultSettingsPath(t *testing.T) {
	t.Setenv("HOME", "/home/op")
	if got := DefaultSettingsPath(); got != filepath.Join("/home/op", ".trunkgen", "settings.json") {
		t.Errorf("DefaultSettingsPath() = %q", got)
	}
}
