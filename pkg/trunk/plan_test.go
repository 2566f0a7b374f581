package trunk_test

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/trunkgen/trunkgen/internal/testutil"
	"github.com/trunkgen/trunkgen/pkg/config"
	"github.com/trunkgen/trunkgen/pkg/netid"
	"github.com/trunkgen/trunkgen/pkg/trunk"
	"github.com/trunkgen/trunkgen/pkg/util"
)

func TestLoadOptions_HCL(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "metro.hcl", testutil.PlanHCL)

	opts, err := trunk.LoadOptions(path)
	if err != nil {
		t.Fatalf("LoadOptions() error: %v", err)
	}

	if opts.Name != "metro" || opts.Identity != "METRO" {
		t.Errorf("name/identity = %q/%q", opts.Name, opts.Identity)
	}
	if opts.Protocol != netid.ProtocolP25 || opts.VoiceCount != 2 {
		t.Errorf("protocol/vc_count = %s/%d", opts.Protocol, opts.VoiceCount)
	}
	if opts.BasePeerID != 200000 || opts.BaseRPCPort != 9900 || opts.RPCPassword != "plan-rpc" {
		t.Errorf("bases = %d/%d/%q", opts.BasePeerID, opts.BaseRPCPort, opts.RPCPassword)
	}
	if opts.ModemType != trunk.ModemNull {
		t.Errorf("ModemType = %q", opts.ModemType)
	}
	if opts.FNE != (trunk.FNEOptions{Address: "10.1.1.1", Port: 62032, Password: "fne-secret"}) {
		t.Errorf("FNE = %+v", opts.FNE)
	}
	if opts.REST == nil || opts.REST.BasePort != 8100 || opts.REST.Password != "rest-secret" {
		t.Errorf("REST = %+v", opts.REST)
	}
	if opts.IDs.NAC == nil || *opts.IDs.NAC != 0x3A1 {
		t.Errorf("NAC = %v, want 0x3A1", opts.IDs.NAC)
	}
	if opts.IDs.SiteID == nil || *opts.IDs.SiteID != 7 {
		t.Errorf("SiteID = %v, want 7", opts.IDs.SiteID)
	}
	if opts.IDs.NetID == nil || *opts.IDs.NetID != 0xBB800 {
		t.Errorf("NetID should keep its default, got %v", opts.IDs.NetID)
	}
	if opts.Control.TxMHz != 851.0125 || opts.Control.Band != "800mhz" {
		t.Errorf("Control = %+v", opts.Control)
	}
	if len(opts.Voices) != 2 || opts.Voices[1].TxMHz != 852.0125 || opts.Voices[1].Band != "800mhz" {
		t.Errorf("Voices = %+v", opts.Voices)
	}

	// unset keys keep their defaults
	if !opts.Lookups.Update || opts.RPCAddress != "127.0.0.1" {
		t.Errorf("defaults lost: lookups %+v, rpc address %q", opts.Lookups, opts.RPCAddress)
	}
}

func TestLoadOptions_BuildsSystem(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "metro.hcl", testutil.PlanHCL)

	opts, err := trunk.LoadOptions(path)
	if err != nil {
		t.Fatalf("LoadOptions() error: %v", err)
	}
	opts.BaseDir = filepath.Join(dir, "out")
	opts.Base = config.EmbeddedBase()

	sys, _, err := trunk.Create(opts)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if nac, _ := sys.Voices[1].Doc.GetInt("system.config.nac"); nac != 0x3A1 {
		t.Errorf("nac = %d", nac)
	}
	if port, _ := sys.Voices[1].Doc.GetInt("network.restPort"); port != 8102 {
		t.Errorf("restPort = %d, want 8102", port)
	}
	if !util.FileExists(filepath.Join(dir, "out", "iden_table.dat")) {
		t.Error("identity table not published")
	}
}

func TestLoadOptions_EnvOverrides(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "metro.hcl", testutil.PlanHCL)
	t.Setenv("TRUNKGEN_FNE__ADDRESS", "10.9.9.9")
	t.Setenv("TRUNKGEN_VC_COUNT", "4")
	t.Setenv("TRUNKGEN_IDS__NAC", "0x100")

	opts, err := trunk.LoadOptions(path)
	if err != nil {
		t.Fatalf("LoadOptions() error: %v", err)
	}
	if opts.FNE.Address != "10.9.9.9" {
		t.Errorf("FNE.Address = %q, want env override", opts.FNE.Address)
	}
	if opts.FNE.Port != 62032 {
		t.Errorf("FNE.Port = %d, file value should survive", opts.FNE.Port)
	}
	if opts.VoiceCount != 4 {
		t.Errorf("VoiceCount = %d, want 4", opts.VoiceCount)
	}
	if *opts.IDs.NAC != 0x100 {
		t.Errorf("NAC = 0x%X, want 0x100", *opts.IDs.NAC)
	}
}

func TestLoadOptions_EnvOnly(t *testing.T) {
	t.Setenv("TRUNKGEN_NAME", "envsys")
	t.Setenv("TRUNKGEN_PROTOCOL", "dmr")

	opts, err := trunk.LoadOptions("")
	if err != nil {
		t.Fatalf("LoadOptions() error: %v", err)
	}
	if opts.Name != "envsys" || opts.Protocol != netid.ProtocolDMR {
		t.Errorf("opts = %s/%s", opts.Name, opts.Protocol)
	}
	if opts.IDs.ColorCode == nil || opts.IDs.NAC != nil {
		t.Errorf("DMR plan should carry DMR identifiers, got %+v", opts.IDs)
	}
}

func TestLoadOptions_Errors(t *testing.T) {
	tests := []struct {
		name string
		plan string
	}{
		{"bad integer", `vc_count = "many"`},
		{"bad protocol", `protocol = "tetra"`},
		{"bad site model", `site_model = "enormous"`},
		{"bad id", "ids {\n  nac = \"zzz\"\n}"},
		{"nac on dmr", "protocol = \"dmr\"\nids {\n  nac = \"0x293\"\n}"},
		{"ran on p25", "protocol = \"p25\"\nids {\n  ran = 2\n}"},
		{"band count", "voice {\n  tx_mhz = [851.5]\n  bands = [\"800mhz\", \"uhf\"]\n}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := testutil.WriteFile(t, t.TempDir(), "plan.hcl", tt.plan)
			if _, err := trunk.LoadOptions(path); !errors.Is(err, util.ErrValidationFailed) {
				t.Errorf("expected ErrValidationFailed, got %v", err)
			}
		})
	}
}

func TestLoadOptions_RejectsOtherProtocolIDs(t *testing.T) {
	plan := "protocol = \"dmr\"\nids {\n  nac = \"0x293\"\n  color_code = 3\n}"
	path := testutil.WriteFile(t, t.TempDir(), "plan.hcl", plan)

	_, err := trunk.LoadOptions(path)
	if err == nil || !strings.Contains(err.Error(), "ids.nac does not apply to dmr systems") {
		t.Errorf("LoadOptions() error = %v", err)
	}
}

func TestLoadOptions_MissingFile(t *testing.T) {
	if _, err := trunk.LoadOptions(filepath.Join(t.TempDir(), "nope.hcl")); err == nil {
		t.Error("expected an error for a missing plan")
	}
}

func TestVoiceSpecs(t *testing.T) {
	t.Run("frequencies", func(t *testing.T) {
		specs, err := trunk.VoiceSpecs([]float64{851.5, 852.0}, []string{"800mhz", "800mhz"}, nil, nil, 0)
		if err != nil {
			t.Fatal(err)
		}
		if len(specs) != 2 || specs[0].TxMHz != 851.5 || specs[1].Band != "800mhz" {
			t.Errorf("specs = %+v", specs)
		}
	})

	t.Run("numbers with default id", func(t *testing.T) {
		specs, err := trunk.VoiceSpecs(nil, nil, nil, []int{5, 6}, 3)
		if err != nil {
			t.Fatal(err)
		}
		if len(specs) != 2 || specs[0].ChannelID != 3 || specs[1].ChannelNo != 6 {
			t.Errorf("specs = %+v", specs)
		}
	})

	t.Run("numbers with ids", func(t *testing.T) {
		specs, err := trunk.VoiceSpecs(nil, nil, []int{1, 2}, []int{5, 6}, 3)
		if err != nil {
			t.Fatal(err)
		}
		if specs[1].ChannelID != 2 {
			t.Errorf("specs = %+v", specs)
		}
	})

	t.Run("empty", func(t *testing.T) {
		specs, err := trunk.VoiceSpecs(nil, nil, nil, nil, 0)
		if err != nil || specs != nil {
			t.Errorf("VoiceSpecs() = %v, %v", specs, err)
		}
	})

	errCases := []struct {
		name  string
		tx    []float64
		bands []string
		ids   []int
		nos   []int
	}{
		{"band count", []float64{851.5}, []string{"800mhz", "uhf"}, nil, nil},
		{"id count", nil, nil, []int{1}, []int{5, 6}},
		{"ids alone", nil, nil, []int{1}, nil},
		{"bands alone", nil, []string{"uhf"}, nil, nil},
	}
	for _, tt := range errCases {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := trunk.VoiceSpecs(tt.tx, tt.bands, tt.ids, tt.nos, 0); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
