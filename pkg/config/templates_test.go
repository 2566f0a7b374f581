package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/trunkgen/trunkgen/pkg/util"
)

func TestTemplates(t *testing.T) {
	list := Templates()
	if len(list) != 6 {
		t.Fatalf("Templates() = %d entries, want 6", len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i-1].Name >= list[i].Name {
			t.Errorf("Templates() not sorted: %v", list)
		}
	}
}

func TestTemplateCopyOnWrite(t *testing.T) {
	base := EmbeddedBase()
	before, err := base.Marshal()
	if err != nil {
		t.Fatal(err)
	}

	for _, info := range Templates() {
		doc, err := Template(info.Name, base)
		if err != nil {
			t.Fatalf("Template(%s): %v", info.Name, err)
		}
		if err := doc.Set("system.identity", "CHANGED"); err != nil {
			t.Fatal(err)
		}
	}

	after, err := base.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	if string(before) != string(after) {
		t.Error("base document was modified by templating")
	}
}

func TestTemplateFlags(t *testing.T) {
	tests := []struct {
		name      string
		identity  string
		enabled   map[string]bool
		control   map[string]bool
		dedicated map[string]bool
	}{
		{
			name:      TemplateControlP25,
			identity:  "CC-P25",
			enabled:   map[string]bool{"p25": true, "dmr": false, "nxdn": false},
			control:   map[string]bool{"p25": true},
			dedicated: map[string]bool{"p25": true},
		},
		{
			name:      TemplateControlNXDN,
			identity:  "CC-NXDN",
			enabled:   map[string]bool{"p25": false, "dmr": false, "nxdn": true},
			control:   map[string]bool{"nxdn": true},
			dedicated: map[string]bool{"nxdn": true},
		},
		{
			name:      TemplateVoice,
			identity:  "VC",
			enabled:   map[string]bool{"p25": true, "dmr": true, "nxdn": false},
			control:   map[string]bool{"p25": false, "dmr": false},
			dedicated: map[string]bool{"p25": false, "dmr": false},
		},
		{
			name:     TemplateConventional,
			identity: "RPT",
			enabled:  map[string]bool{"p25": true, "dmr": false},
			control:  map[string]bool{"p25": true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Template(tt.name, EmbeddedBase())
			if err != nil {
				t.Fatal(err)
			}
			if v, _ := doc.GetString("system.identity"); v != tt.identity {
				t.Errorf("identity = %q, want %q", v, tt.identity)
			}
			check := func(path string, want bool) {
				if got, ok := doc.GetBool(path); !ok || got != want {
					t.Errorf("%s = %v (%v), want %v", path, got, ok, want)
				}
			}
			for p, want := range tt.enabled {
				check("protocols."+p+".enable", want)
			}
			for p, want := range tt.control {
				check("protocols."+p+".control.enable", want)
			}
			for p, want := range tt.dedicated {
				check("protocols."+p+".control.dedicated", want)
			}
		})
	}
}

func TestTemplateUnknown(t *testing.T) {
	_, err := Template("repeater", EmbeddedBase())
	if !errors.Is(err, util.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestBaseDocument(t *testing.T) {
	dir := t.TempDir()

	saved := SearchPaths
	t.Cleanup(func() { SearchPaths = saved })
	SearchPaths = []string{filepath.Join(dir, BaseFileName)}

	doc, src, err := BaseDocument("")
	if err != nil {
		t.Fatal(err)
	}
	if src != EmbeddedSource {
		t.Errorf("source = %q, want embedded", src)
	}
	if v, _ := doc.GetString("system.identity"); v != "DVM" {
		t.Errorf("embedded identity = %q", v)
	}

	if err := os.WriteFile(SearchPaths[0], []byte("system:\n  identity: FROMFILE\n"), 0644); err != nil {
		t.Fatal(err)
	}
	doc, src, err = BaseDocument("")
	if err != nil {
		t.Fatal(err)
	}
	if src != SearchPaths[0] {
		t.Errorf("source = %q", src)
	}
	if v, _ := doc.GetString("system.identity"); v != "FROMFILE" {
		t.Errorf("identity = %q", v)
	}

	if _, _, err := BaseDocument(filepath.Join(dir, "nope.yml")); err == nil {
		t.Error("explicit missing base document should fail")
	}
}

func TestBaseDocument_LogsEmbeddedFallback(t *testing.T) {
	saved := SearchPaths
	t.Cleanup(func() { SearchPaths = saved })
	SearchPaths = []string{filepath.Join(t.TempDir(), BaseFileName)}

	out, level := util.Logger.Out, util.Logger.Level
	t.Cleanup(func() {
		util.SetLogOutput(out)
		util.Logger.SetLevel(level)
	})
	var buf bytes.Buffer
	util.SetLogOutput(&buf)
	util.SetLogLevel("debug")

	if _, src, err := BaseDocument(""); err != nil || src != EmbeddedSource {
		t.Fatalf("BaseDocument() = %q, %v; want embedded", src, err)
	}
	if !strings.Contains(buf.String(), "no config.example.yml found") {
		t.Errorf("expected fallback debug message, got: %s", buf.String())
	}
}
