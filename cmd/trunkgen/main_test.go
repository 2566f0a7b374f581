package main

import (
	"reflect"
	"testing"

	"github.com/spf13/cobra"

	"github.com/trunkgen/trunkgen/pkg/netid"
	"github.com/trunkgen/trunkgen/pkg/settings"
)

func TestParseIntList(t *testing.T) {
	tests := []struct {
		in      string
		want    []int
		wantErr bool
	}{
		{"", nil, false},
		{"1,2,0x10", []int{1, 2, 16}, false},
		{"5-7", []int{5, 6, 7}, false},
		{"3,5-6", []int{3, 5, 6}, false},
		{"x", nil, true},
	}
	for _, tt := range tests {
		got, err := parseIntList(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseIntList(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
			t.Errorf("parseIntList(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestIsSettingsOrHelp(t *testing.T) {
	if !isSettingsOrHelp(settingsSetCmd) {
		t.Error("settings set should skip audit setup")
	}
	if !isSettingsOrHelp(versionCmd) {
		t.Error("version should skip audit setup")
	}
	if isSettingsOrHelp(trunkCreateCmd) {
		t.Error("trunk create should not skip audit setup")
	}
	if isSettingsOrHelp(&cobra.Command{Use: "other"}) {
		t.Error("unrelated command should not skip audit setup")
	}
}

func TestCreateOptions_FlagsOverride(t *testing.T) {
	userSettings = &settings.Settings{}
	dir := t.TempDir()
	flags := trunkCreateCmd.Flags()

	for name, value := range map[string]string{
		"name":           "dmrnet",
		"base-dir":       dir,
		"protocol":       "dmr",
		"site-model":     "tiny",
		"dmr-net-id":     "300",
		"vc-channel-nos": "5-7",
		"rest-enable":    "true",
		"base-rest-port": "8200",
	} {
		if err := flags.Set(name, value); err != nil {
			t.Fatalf("setting --%s: %v", name, err)
		}
	}

	opts, err := createOptions(flags)
	if err != nil {
		t.Fatalf("createOptions() error: %v", err)
	}
	if opts.Name != "dmrnet" || opts.BaseDir != dir {
		t.Errorf("name/dir = %q/%q", opts.Name, opts.BaseDir)
	}
	if opts.Protocol != netid.ProtocolDMR || opts.SiteModel != netid.SiteModelTiny {
		t.Errorf("protocol = %s/%s, want dmr/tiny", opts.Protocol, opts.SiteModel)
	}
	if v, _ := opts.IDs.Get(netid.KeyDMRNetID); v != 300 {
		t.Errorf("dmrNetId = %d, want 300", v)
	}
	if _, ok := opts.IDs.Get(netid.KeyNAC); ok {
		t.Error("switching to dmr should drop the P25 defaults")
	}
	if opts.VoiceCount != 3 || len(opts.Voices) != 3 || opts.Voices[2].ChannelNo != 7 {
		t.Errorf("voices = %d %+v, want channel nos 5-7", opts.VoiceCount, opts.Voices)
	}
	if opts.REST == nil || opts.REST.BasePort != 8200 {
		t.Errorf("REST = %+v, want base port 8200", opts.REST)
	}
	if opts.FNE.Port != 62031 {
		t.Errorf("unset --fne-port should keep the default, got %d", opts.FNE.Port)
	}

	if err := flags.Set("nac", "0x293"); err != nil {
		t.Fatal(err)
	}
	if _, err := createOptions(flags); err == nil {
		t.Error("--nac on a dmr system should fail")
	}
}
