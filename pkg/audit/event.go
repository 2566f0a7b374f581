// Package audit records trunked-system changes as JSON lines.
package audit

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"time"

	"golang.org/x/crypto/blake2b"
)

// Operations recorded by the CLI.
const (
	OpTrunkCreate   = "trunk.create"
	OpTrunkUpdate   = "trunk.update"
	OpTrunkValidate = "trunk.validate"
	OpIdenSave      = "iden.save"
)

// Event is one audited operation.
type Event struct {
	ID        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	User      string        `json:"user"`
	System    string        `json:"system,omitempty"`
	Operation string        `json:"operation"`
	Key       string        `json:"key,omitempty"`
	Value     string        `json:"value,omitempty"`
	Artifacts []Artifact    `json:"artifacts,omitempty"`
	Problems  []string      `json:"problems,omitempty"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
}

// Artifact is a file an operation wrote, identified by content digest.
type Artifact struct {
	Path   string `json:"path"`
	Size   int    `json:"size"`
	Digest string `json:"blake2b"`
}

// Filter selects events in Query. Zero fields match everything.
type Filter struct {
	User        string
	System      string
	Operation   string
	StartTime   time.Time
	EndTime     time.Time
	SuccessOnly bool
	FailureOnly bool
	Limit       int
	Offset      int
}

// Match reports whether e passes every set criterion.
func (f Filter) Match(e *Event) bool {
	switch {
	case f.User != "" && e.User != f.User:
		return false
	case f.System != "" && e.System != f.System:
		return false
	case f.Operation != "" && e.Operation != f.Operation:
		return false
	case !f.StartTime.IsZero() && e.Timestamp.Before(f.StartTime):
		return false
	case !f.EndTime.IsZero() && e.Timestamp.After(f.EndTime):
		return false
	case f.SuccessOnly && !e.Success:
		return false
	case f.FailureOnly && e.Success:
		return false
	}
	return true
}

// NewEvent creates an event stamped with the current time.
func NewEvent(user, system, operation string) *Event {
	return &Event{
		ID:        generateID(),
		Timestamp: time.Now(),
		User:      user,
		System:    system,
		Operation: operation,
	}
}

// WithKeyValue records the setting an update changed.
func (e *Event) WithKeyValue(key, value string) *Event {
	e.Key = key
	e.Value = value
	return e
}

// WithArtifacts attaches written files.
func (e *Event) WithArtifacts(artifacts []Artifact) *Event {
	e.Artifacts = artifacts
	return e
}

// WithProblems attaches validation findings.
func (e *Event) WithProblems(problems []string) *Event {
	e.Problems = problems
	return e
}

// WithSuccess marks the event as successful
func (e *Event) WithSuccess() *Event {
	e.Success = true
	return e
}

// WithError marks the event as failed
func (e *Event) WithError(err error) *Event {
	e.Success = false
	if err != nil {
		e.Error = err.Error()
	}
	return e
}

// WithDuration sets the operation duration
func (e *Event) WithDuration(d time.Duration) *Event {
	e.Duration = d
	return e
}

// Digest returns the hex BLAKE2b-256 digest of data.
func Digest(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// NewArtifact describes data written to path.
func NewArtifact(path string, data []byte) Artifact {
	return Artifact{Path: path, Size: len(data), Digest: Digest(data)}
}

// DigestFiles reads each path and describes it. Paths are recorded as
// absolute when they can be resolved.
func DigestFiles(paths []string) ([]Artifact, error) {
	out := make([]Artifact, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("digesting %s: %w", p, err)
		}
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		out = append(out, NewArtifact(p, data))
	}
	return out, nil
}

var idSeq atomic.Uint64

func generateID() string {
	return strconv.FormatInt(time.Now().UnixNano(), 36) + "-" + strconv.FormatUint(idSeq.Add(1), 36)
}
