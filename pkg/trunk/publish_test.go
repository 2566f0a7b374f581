package trunk_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/trunkgen/trunkgen/internal/testutil"
	"github.com/trunkgen/trunkgen/pkg/iden"
	"github.com/trunkgen/trunkgen/pkg/trunk"
	"github.com/trunkgen/trunkgen/pkg/util"
)

func TestCreate_WritesEveryInstance(t *testing.T) {
	dir := t.TempDir()
	_, result, err := trunk.Create(testutil.P25Options(dir))
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	want := []string{"skynet-cc.yml", "skynet-vc01.yml", "skynet-vc02.yml"}
	if len(result.Written) != len(want) {
		t.Fatalf("Written = %v, want %d files", result.Written, len(want))
	}
	for i, name := range want {
		if result.Written[i] != filepath.Join(dir, name) {
			t.Errorf("Written[%d] = %q, want %q", i, result.Written[i], name)
		}
	}
	if len(result.Backups) != 0 {
		t.Errorf("first publish should back nothing up, got %v", result.Backups)
	}

	names := testutil.ListDir(t, dir)
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("directory holds %v, want %v", names, want)
	}

	testutil.AssertContains(t, testutil.ReadFile(t, filepath.Join(dir, "skynet-vc01.yml")),
		"identity: SKYNET-VC01", "rpcPort: 9891")
}

func TestCreate_WritesIdenTable(t *testing.T) {
	dir := t.TempDir()
	opts := testutil.P25Options(dir)
	opts.Control = trunk.ChannelSpec{TxMHz: 851.0125, Band: "800mhz"}
	opts.Voices = []trunk.ChannelSpec{{TxMHz: 851.5125}, {TxMHz: 852.0125}}

	if _, _, err := trunk.Create(opts); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	table, warnings, err := iden.LoadTable(filepath.Join(dir, iden.FileName))
	if err != nil {
		t.Fatalf("LoadTable() error: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
	e, ok := table.Get(0)
	if !ok || e.BaseFreqHz != 851006250 {
		t.Errorf("entry 0 = %+v, %v", e, ok)
	}
}

func TestPublish_BacksUpExistingFiles(t *testing.T) {
	dir := t.TempDir()
	opts := testutil.P25Options(dir)
	if _, _, err := trunk.Create(opts); err != nil {
		t.Fatalf("first Create() error: %v", err)
	}

	opts.IDs.SiteID = intPtr(9)
	_, result, err := trunk.Create(opts)
	if err != nil {
		t.Fatalf("second Create() error: %v", err)
	}
	if len(result.Backups) != 3 {
		t.Fatalf("Backups = %v, want 3", result.Backups)
	}

	old := testutil.ReadFile(t, filepath.Join(dir, "skynet-cc.yml"+util.BackupSuffix))
	cur := testutil.ReadFile(t, filepath.Join(dir, "skynet-cc.yml"))
	testutil.AssertContains(t, old, "siteId: 1")
	testutil.AssertContains(t, cur, "siteId: 9")
}

func TestPublish_FailedBackupSkipsOnlyThatFile(t *testing.T) {
	dir := t.TempDir()
	opts := testutil.P25Options(dir)
	if _, _, err := trunk.Create(opts); err != nil {
		t.Fatalf("first Create() error: %v", err)
	}

	// a directory where the backup should go makes the rename fail
	blocker := filepath.Join(dir, "skynet-vc01.yml"+util.BackupSuffix)
	testutil.WriteFile(t, blocker, "keep", "x")

	opts.IDs.SiteID = intPtr(9)
	_, result, err := trunk.Create(opts)
	if err == nil {
		t.Fatal("expected an error for the skipped file")
	}
	if len(result.Failed) != 1 || result.Failed[0].Path != filepath.Join(dir, "skynet-vc01.yml") {
		t.Fatalf("Failed = %v, want only vc01", result.Failed)
	}
	if len(result.Written) != 2 {
		t.Errorf("Written = %v, want the other 2 files", result.Written)
	}

	testutil.AssertContains(t, testutil.ReadFile(t, filepath.Join(dir, "skynet-vc01.yml")), "siteId: 1")
	testutil.AssertContains(t, testutil.ReadFile(t, filepath.Join(dir, "skynet-vc02.yml")), "siteId: 9")
}

func TestPublish_RemovesStagingDirectory(t *testing.T) {
	dir := t.TempDir()
	if _, _, err := trunk.Create(testutil.P25Options(dir)); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	for _, name := range testutil.ListDir(t, dir) {
		if strings.HasPrefix(name, ".trunkgen-stage-") {
			t.Errorf("staging directory %s left behind", name)
		}
	}
}

func TestPublish_RequiresBaseDir(t *testing.T) {
	opts := testutil.P25Options("")
	sys, err := trunk.Build(opts)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if _, err := trunk.Publish(sys); !errors.Is(err, util.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestPublish_CreatesBaseDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "systems", "skynet")
	if _, _, err := trunk.Create(testutil.P25Options(dir)); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if !util.FileExists(filepath.Join(dir, "skynet-cc.yml")) {
		t.Error("control channel file not written")
	}
}

func TestArtifacts_Order(t *testing.T) {
	opts := testutil.P25Options(t.TempDir())
	opts.Control = trunk.ChannelSpec{TxMHz: 146.0125}
	sys, err := trunk.Build(opts)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	artifacts, err := sys.Artifacts()
	if err != nil {
		t.Fatalf("Artifacts() error: %v", err)
	}

	var names []string
	for _, a := range artifacts {
		names = append(names, a.Name)
	}
	want := "skynet-cc.yml,skynet-vc01.yml,skynet-vc02.yml,iden_table.dat"
	if strings.Join(names, ",") != want {
		t.Errorf("artifacts = %v, want %s", names, want)
	}
}

func TestPublishResult_Err(t *testing.T) {
	var nilResult *trunk.PublishResult
	if nilResult.Err() != nil {
		t.Error("nil result should have no error")
	}

	r := &trunk.PublishResult{
		Written: []string{"a"},
		Failed:  []trunk.FileError{{Path: "b", Err: os.ErrPermission}},
	}
	err := r.Err()
	if !errors.Is(err, os.ErrPermission) {
		t.Errorf("Err() should wrap the file error, got %v", err)
	}
	if !strings.Contains(err.Error(), "1 of 2") {
		t.Errorf("Err() = %q", err)
	}
}

func intPtr(v int) *int { return &v }
