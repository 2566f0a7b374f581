package trunk

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/trunkgen/trunkgen/pkg/netid"
	"github.com/trunkgen/trunkgen/pkg/util"
)

// ErrConsistencyMismatch is matched by Report.Err when instances disagree on a
// shared value or claim the same channel.
var ErrConsistencyMismatch = errors.New("trunked system is inconsistent")

// InstanceErrors holds the range and format problems found in one instance.
type InstanceErrors struct {
	Instance string   `json:"instance"`
	Errors   []string `json:"errors"`
}

// Mismatch is a voice channel disagreeing with the control channel.
type Mismatch struct {
	Ordinal  int    `json:"ordinal"`
	Field    string `json:"field"`
	Key      string `json:"key"`
	Expected any    `json:"expected"`
	Actual   any    `json:"actual"`
}

func (m Mismatch) String() string {
	return fmt.Sprintf("VC%02d: %s mismatch (expected %v)", m.Ordinal, m.Field, m.Expected)
}

// Collision is a channel id/number pair claimed by more than one instance.
type Collision struct {
	ChannelID int      `json:"channel_id"`
	ChannelNo int      `json:"channel_no"`
	Instances []string `json:"instances"`
}

func (c Collision) String() string {
	return fmt.Sprintf("channel %d-%d (0x%03X) claimed by %s",
		c.ChannelID, c.ChannelNo, c.ChannelNo, strings.Join(c.Instances, ", "))
}

// Report is the outcome of validating a system.
type Report struct {
	System     string           `json:"system"`
	Instances  []InstanceErrors `json:"instances,omitempty"`
	Mismatches []Mismatch       `json:"mismatches,omitempty"`
	Collisions []Collision      `json:"collisions,omitempty"`
}

// Valid reports whether nothing was found.
func (r *Report) Valid() bool {
	return len(r.Instances) == 0 && len(r.Mismatches) == 0 && len(r.Collisions) == 0
}

// Messages flattens the report into one line per problem.
func (r *Report) Messages() []string {
	var out []string
	for _, ie := range r.Instances {
		for _, e := range ie.Errors {
			out = append(out, ie.Instance+": "+e)
		}
	}
	for _, m := range r.Mismatches {
		out = append(out, m.String())
	}
	for _, c := range r.Collisions {
		out = append(out, c.String())
	}
	return out
}

// Err returns nil for a valid report. Otherwise the error matches
// util.ErrValidationFailed, and also ErrConsistencyMismatch when instances
// disagree or collide.
func (r *Report) Err() error {
	if r.Valid() {
		return nil
	}
	ve := util.NewValidationError(r.Messages()...)
	if len(r.Mismatches) > 0 || len(r.Collisions) > 0 {
		return fmt.Errorf("%w: %w", ErrConsistencyMismatch, ve)
	}
	return ve
}

// sharedField is a value every voice channel must copy from the control
// channel. Optional fields are only compared when the control channel sets
// them.
type sharedField struct {
	name     string
	path     string
	optional bool
}

var sharedFields = []sharedField{
	{"NAC", "system.config." + netid.KeyNAC, true},
	{"Color code", "system.config." + netid.KeyColorCode, true},
	{"Site ID", "system.config." + netid.KeySiteID, true},
	{"Network ID", "system.config." + netid.KeyNetID, true},
	{"DMR Network ID", "system.config." + netid.KeyDMRNetID, true},
	{"System ID", "system.config." + netid.KeySysID, true},
	{"RFSS ID", "system.config." + netid.KeyRFSSID, true},
	{"RAN", "system.config." + netid.KeyRAN, true},
	{"FNE address", "network.address", false},
	{"FNE port", "network.port", false},
}

// offsetField is a value voice channel i must hold at the control channel's
// value plus i. A non-empty enabledBy names a control channel flag that must be
// set for the field to be checked.
type offsetField struct {
	name      string
	path      string
	enabledBy string
}

var offsetFields = []offsetField{
	{"Peer ID", "network.id", ""},
	{"RPC port", "network.rpcPort", ""},
	{"REST port", "network.restPort", "network.restEnable"},
}

// Validate checks each instance's identifiers and format, compares every voice
// channel against the control channel (shared values, and peer id and ports
// at the control channel's value plus the voice channel number) and looks for
// channel collisions.
func (s *System) Validate() *Report {
	r := &Report{System: s.Name}

	for _, in := range s.Instances() {
		if errs := s.instanceErrors(in); len(errs) > 0 {
			r.Instances = append(r.Instances, InstanceErrors{Instance: in.ReportKey(), Errors: errs})
		}
	}
	r.Mismatches = s.mismatches()
	r.Collisions = s.collisions()

	util.WithSystem(s.Name).WithFields(map[string]interface{}{
		"instance_errors": len(r.Instances),
		"mismatches":      len(r.Mismatches),
		"collisions":      len(r.Collisions),
	}).Debug("validated trunked system")
	return r
}

func (s *System) instanceErrors(in *Instance) []string {
	errs := in.Doc.Validate()
	for _, p := range netid.Info(s.Protocol, s.SiteModel) {
		path := "system.config." + p.Key
		if !in.Doc.Has(path) {
			continue
		}
		v, ok := in.Doc.GetInt(path)
		if !ok {
			errs = append(errs, fmt.Sprintf("Invalid %s (not an integer)", path))
			continue
		}
		if err := netid.ValidateField(s.Protocol, s.SiteModel, p.Key, v); err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}

func (s *System) mismatches() []Mismatch {
	if s.Control == nil {
		return nil
	}
	var out []Mismatch
	for _, f := range sharedFields {
		want, ok := s.Control.Doc.Get(f.path)
		if !ok && f.optional {
			continue
		}
		for _, vc := range s.Voices {
			got, _ := vc.Doc.Get(f.path)
			if !reflect.DeepEqual(got, want) {
				out = append(out, Mismatch{Ordinal: vc.Ordinal, Field: f.name, Key: f.path, Expected: want, Actual: got})
			}
		}
	}
	for _, f := range offsetFields {
		if f.enabledBy != "" {
			if on, _ := s.Control.Doc.GetBool(f.enabledBy); !on {
				continue
			}
		}
		base, ok := s.Control.Doc.GetInt(f.path)
		if !ok {
			continue
		}
		for _, vc := range s.Voices {
			want := base + vc.Ordinal
			if got, ok := vc.Doc.GetInt(f.path); !ok || got != want {
				actual, _ := vc.Doc.Get(f.path)
				out = append(out, Mismatch{Ordinal: vc.Ordinal, Field: f.name, Key: f.path, Expected: want, Actual: actual})
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Ordinal < out[j].Ordinal })
	return out
}

func (s *System) collisions() []Collision {
	claims := map[channelKey][]string{}
	var order []channelKey
	for _, in := range s.Instances() {
		if in.Channel.ChannelID < 0 {
			continue
		}
		k := in.Channel.key()
		if _, seen := claims[k]; !seen {
			order = append(order, k)
		}
		claims[k] = append(claims[k], in.Label())
	}

	var out []Collision
	for _, k := range order {
		if labels := claims[k]; len(labels) > 1 {
			out = append(out, Collision{ChannelID: k.id, ChannelNo: k.no, Instances: labels})
		}
	}
	return out
}
