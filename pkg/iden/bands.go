// Package iden computes RF channel plans: the built-in band catalog, identity
// (IDEN) table entries that map transmit frequencies to channel numbers, and the
// iden_table.dat file the host runtime consumes.
package iden

import (
	"fmt"
	"strings"
)

// FrequencyRange is an inclusive range in MHz.
type FrequencyRange struct {
	Min float64
	Max float64
}

// Contains reports whether mhz lies within the range.
func (r FrequencyRange) Contains(mhz float64) bool {
	return mhz >= r.Min && mhz <= r.Max
}

// BandPreset describes a named RF band.
type BandPreset struct {
	Key            string // catalog key, e.g. "800mhz"
	Name           string // display name
	BaseFreqHz     int64
	SpacingKHz     float64
	InputOffsetMHz float64
	BandwidthKHz   float64
	TxRange        FrequencyRange
	RxRange        FrequencyRange
}

// Entry returns an identity entry for the preset at the given channel id.
func (p BandPreset) Entry(channelID int) Entry {
	return Entry{
		ChannelID:      channelID,
		BaseFreqHz:     p.BaseFreqHz,
		SpacingKHz:     p.SpacingKHz,
		InputOffsetMHz: p.InputOffsetMHz,
		BandwidthKHz:   p.BandwidthKHz,
	}
}

// highIdentityPresetKey is parked on the last identity slot so the low slots stay
// contiguous for the commonly combined bands.
const highIdentityPresetKey = "900mhz"

// catalog is declaration-ordered; auto-detection walks it front to back.
var catalog = []BandPreset{
	{
		Key:            "800mhz",
		Name:           "800 MHz Trunked (800T)",
		BaseFreqHz:     851006250,
		SpacingKHz:     6.25,
		InputOffsetMHz: -45.0,
		BandwidthKHz:   12.5,
		TxRange:        FrequencyRange{851.0, 870.0},
		RxRange:        FrequencyRange{806.0, 825.0},
	},
	{
		Key:            "900mhz",
		Name:           "900 MHz ISM/Business",
		BaseFreqHz:     935001250,
		SpacingKHz:     6.25,
		InputOffsetMHz: -39.0,
		BandwidthKHz:   12.5,
		TxRange:        FrequencyRange{935.0, 960.0},
		RxRange:        FrequencyRange{896.0, 901.0},
	},
	{
		Key:            "uhf",
		Name:           "UHF 450-470 MHz",
		BaseFreqHz:     450000000,
		SpacingKHz:     6.25,
		InputOffsetMHz: 5.0,
		BandwidthKHz:   12.5,
		TxRange:        FrequencyRange{450.0, 470.0},
		RxRange:        FrequencyRange{455.0, 475.0},
	},
	{
		Key:            "vhf",
		Name:           "VHF 146-148 MHz (2m Ham)",
		BaseFreqHz:     146000000,
		SpacingKHz:     6.25,
		InputOffsetMHz: 0.6,
		BandwidthKHz:   12.5,
		TxRange:        FrequencyRange{146.0, 148.0},
		RxRange:        FrequencyRange{146.6, 148.6},
	},
	{
		Key:            "vhf-hi",
		Name:           "VHF-Hi 150-174 MHz",
		BaseFreqHz:     150000000,
		SpacingKHz:     6.25,
		InputOffsetMHz: 0.6,
		BandwidthKHz:   12.5,
		TxRange:        FrequencyRange{150.0, 174.0},
		RxRange:        FrequencyRange{155.0, 179.0},
	},
	{
		Key:            "uhf-ham",
		Name:           "UHF 430-450 MHz (70cm Ham)",
		BaseFreqHz:     430000000,
		SpacingKHz:     6.25,
		InputOffsetMHz: 5.0,
		BandwidthKHz:   12.5,
		TxRange:        FrequencyRange{430.0, 450.0},
		RxRange:        FrequencyRange{435.0, 455.0},
	},
}

// Presets returns a copy of the catalog in declaration order.
func Presets() []BandPreset {
	out := make([]BandPreset, len(catalog))
	copy(out, catalog)
	return out
}

// PresetNames returns the catalog keys in declaration order.
func PresetNames() []string {
	names := make([]string, len(catalog))
	for i, p := range catalog {
		names[i] = p.Key
	}
	return names
}

// LookupPreset finds a preset by key (case-insensitive).
func LookupPreset(key string) (BandPreset, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, p := range catalog {
		if p.Key == key {
			return p, nil
		}
	}
	return BandPreset{}, fmt.Errorf("%w: %q (available: %s)", ErrUnknownBandPreset, key, strings.Join(PresetNames(), ", "))
}

// PresetChannelID returns the conventional identity slot for a preset: its
// catalog position, except 900mhz which takes slot 15.
func PresetChannelID(key string) (int, error) {
	p, err := LookupPreset(key)
	if err != nil {
		return 0, err
	}
	if p.Key == highIdentityPresetKey {
		return MaxChannelID, nil
	}
	for i := range catalog {
		if catalog[i].Key == p.Key {
			return i, nil
		}
	}
	return 0, nil
}

// NewEntryFromPreset builds an identity entry from a catalog preset.
func NewEntryFromPreset(channelID int, key string) (Entry, error) {
	p, err := LookupPreset(key)
	if err != nil {
		return Entry{}, err
	}
	return p.Entry(channelID), nil
}

// DefaultTable returns an identity table holding every catalog preset at its
// conventional slot.
func DefaultTable() *Table {
	t := NewTable()
	for _, p := range catalog {
		id, _ := PresetChannelID(p.Key)
		// ids from PresetChannelID are always in range
		_ = t.Add(p.Entry(id))
	}
	return t
}
