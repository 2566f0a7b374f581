package trunk

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/trunkgen/trunkgen/pkg/iden"
	"github.com/trunkgen/trunkgen/pkg/util"
)

const stagePattern = ".trunkgen-stage-*"

// Artifact is one file a system publishes.
type Artifact struct {
	Name string // file name within the system directory
	Data []byte
}

// FileError is a destination that could not be published.
type FileError struct {
	Path string
	Err  error
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e FileError) Unwrap() error { return e.Err }

// PublishResult lists what Publish did per file.
type PublishResult struct {
	Written []string
	Backups []string
	Failed  []FileError
}

// Err joins the per-file failures, or returns nil.
func (r *PublishResult) Err() error {
	if r == nil || len(r.Failed) == 0 {
		return nil
	}
	errs := make([]error, len(r.Failed))
	for i, f := range r.Failed {
		errs[i] = f
	}
	return fmt.Errorf("publishing %d of %d files failed: %w",
		len(r.Failed), len(r.Failed)+len(r.Written), errors.Join(errs...))
}

// Artifacts renders every file of the system: the instances in control then
// voice order, then the identity table when the system has one.
func (s *System) Artifacts() ([]Artifact, error) {
	var out []Artifact
	for _, in := range s.Instances() {
		data, err := in.Doc.Marshal()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", in.Label(), err)
		}
		out = append(out, Artifact{Name: in.FileName(s.Name), Data: data})
	}
	if s.Iden != nil && s.Iden.Len() > 0 {
		out = append(out, Artifact{Name: iden.FileName, Data: s.Iden.Bytes()})
	}
	return out, nil
}

// Publish writes the system into BaseDir. Every file is first staged in a
// temporary directory inside BaseDir; if staging fails nothing is published.
// Each destination is then renamed aside to a .bak backup and replaced with
// its staged file. A destination whose backup fails is skipped and reported
// in the result while the remaining files are still published.
func Publish(sys *System) (*PublishResult, error) {
	if sys.BaseDir == "" {
		return nil, fmt.Errorf("%w: base directory is required", util.ErrInvalidConfig)
	}
	log := util.WithOperation("publish").WithFields(map[string]interface{}{
		"system": sys.Name,
		"dir":    sys.BaseDir,
	})

	artifacts, err := sys.Artifacts()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(sys.BaseDir, 0755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", sys.BaseDir, err)
	}
	stage, err := os.MkdirTemp(sys.BaseDir, stagePattern)
	if err != nil {
		return nil, fmt.Errorf("creating staging directory: %w", err)
	}
	defer os.RemoveAll(stage)

	for _, a := range artifacts {
		if err := os.WriteFile(filepath.Join(stage, a.Name), a.Data, 0644); err != nil {
			return nil, fmt.Errorf("staging %s: %w", a.Name, err)
		}
	}
	log.Debugf("staged %d files in %s", len(artifacts), stage)

	result := &PublishResult{}
	for _, a := range artifacts {
		dst := filepath.Join(sys.BaseDir, a.Name)

		backup, err := util.BackupFile(dst)
		if err != nil {
			log.WithField("file", dst).Warnf("skipping file: %v", err)
			result.Failed = append(result.Failed, FileError{Path: dst, Err: err})
			continue
		}
		if backup != "" {
			result.Backups = append(result.Backups, backup)
		}

		if err := os.Rename(filepath.Join(stage, a.Name), dst); err != nil {
			if backup != "" {
				// restore the previous file
				os.Rename(backup, dst)
			}
			result.Failed = append(result.Failed, FileError{Path: dst, Err: err})
			continue
		}
		result.Written = append(result.Written, dst)
	}

	log.Infof("published %d files (%d failed)", len(result.Written), len(result.Failed))
	return result, nil
}

// Create builds and publishes a system. The returned error covers build,
// staging and per-file failures; the result is returned whenever publishing
// was attempted.
func Create(opts Options) (*System, *PublishResult, error) {
	sys, err := Build(opts)
	if err != nil {
		return nil, nil, err
	}
	result, err := Publish(sys)
	if err != nil {
		return sys, nil, err
	}
	return sys, result, result.Err()
}

// SaveAll republishes every instance of a system. The identity table is left
// as it is on disk.
func (s *System) SaveAll() (*PublishResult, error) {
	instancesOnly := *s
	instancesOnly.Iden = nil
	result, err := Publish(&instancesOnly)
	if err != nil {
		return nil, err
	}
	return result, result.Err()
}
