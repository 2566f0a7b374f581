package trunk

import (
	"fmt"

	"github.com/trunkgen/trunkgen/pkg/iden"
)

// Channel is the assignment an instance transmits on. TxHz and RxHz are zero
// when the channel was given by id and number rather than frequency.
type Channel struct {
	ChannelID int    `json:"channel_id"`
	ChannelNo int    `json:"channel_no"`
	TxHz      int64  `json:"tx_hz,omitempty"`
	RxHz      int64  `json:"rx_hz,omitempty"`
	Band      string `json:"band,omitempty"`
}

// HasFrequency reports whether the channel was resolved from a frequency.
func (c Channel) HasFrequency() bool { return c.TxHz > 0 }

func (c Channel) key() channelKey { return channelKey{c.ChannelID, c.ChannelNo} }

type channelKey struct {
	id, no int
}

// channelPlan is the outcome of channel resolution for a whole system.
type channelPlan struct {
	control Channel
	voices  []Channel
	table   *iden.Table // nil unless some channel was given by frequency
}

func resolveChannels(opts Options) (*channelPlan, error) {
	plan := &channelPlan{}

	cc, err := plan.resolve(opts.Control)
	if err != nil {
		return nil, fmt.Errorf("control channel: %w", err)
	}
	plan.control = cc

	if len(opts.Voices) == 0 {
		for i := 1; i <= opts.VoiceCount; i++ {
			plan.voices = append(plan.voices, Channel{ChannelID: cc.ChannelID, ChannelNo: cc.ChannelNo + i})
		}
		return plan, nil
	}

	for i, spec := range opts.Voices {
		vc, err := plan.resolve(spec)
		if err != nil {
			return nil, fmt.Errorf("voice channel %d: %w", i+1, err)
		}
		plan.voices = append(plan.voices, vc)
	}
	return plan, nil
}

func (p *channelPlan) resolve(spec ChannelSpec) (Channel, error) {
	if spec.TxMHz <= 0 {
		if err := iden.ValidateChannelID(spec.ChannelID); err != nil {
			return Channel{}, err
		}
		if spec.ChannelNo < 0 {
			return Channel{}, fmt.Errorf("channel number must not be negative, got %d", spec.ChannelNo)
		}
		return Channel{ChannelID: spec.ChannelID, ChannelNo: spec.ChannelNo}, nil
	}

	var a iden.Assignment
	if spec.Band != "" {
		preset, err := iden.LookupPreset(spec.Band)
		if err != nil {
			return Channel{}, err
		}
		if !preset.TxRange.Contains(spec.TxMHz) {
			return Channel{}, fmt.Errorf("%w: TX %g MHz is outside the %s range (%g-%g MHz)",
				iden.ErrFrequencyOutOfPlanRange, spec.TxMHz, preset.Key, preset.TxRange.Min, preset.TxRange.Max)
		}
		id, _ := iden.PresetChannelID(preset.Key)
		if a, err = iden.CalculateChannelAssignment(spec.TxMHz, preset.Key, id); err != nil {
			return Channel{}, err
		}
	} else {
		var err error
		if a, err = iden.CalculateChannelAssignment(spec.TxMHz, "", 0); err != nil {
			return Channel{}, err
		}
		a.ChannelID, _ = iden.PresetChannelID(a.Preset)
	}

	if p.table == nil {
		p.table = iden.NewTable()
	}
	if !p.table.Has(a.ChannelID) {
		entry, err := iden.NewEntryFromPreset(a.ChannelID, a.Preset)
		if err != nil {
			return Channel{}, err
		}
		if err := p.table.Add(entry); err != nil {
			return Channel{}, err
		}
	}

	return Channel{
		ChannelID: a.ChannelID,
		ChannelNo: a.ChannelNo,
		TxHz:      a.TxHz,
		RxHz:      a.RxHz,
		Band:      a.Preset,
	}, nil
}
