package iden

import (
	"fmt"
	"math"
)

const (
	MinChannelID = 0
	MaxChannelID = 15

	// MaxFreqGapHz is the widest TX offset an entry can address above its base.
	MaxFreqGapHz = 30000000

	HzPerMHz = 1000000
	HzPerKHz = 1000
)

// Entry is one identity-table slot.
type Entry struct {
	ChannelID      int
	BaseFreqHz     int64
	SpacingKHz     float64
	InputOffsetMHz float64 // RX minus TX; negative on the 800/900 MHz bands
	BandwidthKHz   float64
}

// SpacingHz returns the channel spacing rounded to whole Hz.
func (e Entry) SpacingHz() int64 {
	return int64(math.Round(e.SpacingKHz * HzPerKHz))
}

// ChannelNumber returns the channel number addressing txHz from this entry's base.
func (e Entry) ChannelNumber(txHz int64) (int, error) {
	if txHz < e.BaseFreqHz {
		return 0, &PlanRangeError{TxHz: txHz, BaseHz: e.BaseFreqHz}
	}
	if txHz > e.BaseFreqHz+MaxFreqGapHz {
		return 0, &PlanRangeError{TxHz: txHz, BaseHz: e.BaseFreqHz, Above: true}
	}
	space := e.SpacingHz()
	if space <= 0 {
		return 0, fmt.Errorf("channel id %d: spacing must be positive, got %.2f kHz", e.ChannelID, e.SpacingKHz)
	}
	return int((txHz - e.BaseFreqHz) / space), nil
}

// ReceiveFrequency applies the input offset to txHz. RX below TX is valid; only
// a negative result is rejected.
func (e Entry) ReceiveFrequency(txHz int64) (int64, error) {
	rx := txHz + int64(math.Round(e.InputOffsetMHz*HzPerMHz))
	if rx < 0 {
		return 0, fmt.Errorf("%w: RX frequency (%s MHz)", ErrNegativeFrequency, FormatMHz(rx))
	}
	return rx, nil
}

// TransmitFrequency is the inverse of ChannelNumber.
func (e Entry) TransmitFrequency(channelNo int) int64 {
	return e.BaseFreqHz + int64(channelNo)*e.SpacingHz()
}

// Line renders the entry in iden_table.dat form, trailing comma included.
func (e Entry) Line() string {
	return fmt.Sprintf("%d,%d,%.2f,%.5f,%.1f,", e.ChannelID, e.BaseFreqHz, e.SpacingKHz, e.InputOffsetMHz, e.BandwidthKHz)
}

func (e Entry) String() string {
	return fmt.Sprintf("Entry(id=%d, base=%.3fMHz, spacing=%gkHz, offset=%gMHz, bw=%gkHz)",
		e.ChannelID, float64(e.BaseFreqHz)/HzPerMHz, e.SpacingKHz, e.InputOffsetMHz, e.BandwidthKHz)
}

// ValidateChannelID checks id against the 4-bit identity space.
func ValidateChannelID(id int) error {
	if id < MinChannelID || id > MaxChannelID {
		return fmt.Errorf("%w: must be %d-%d, got %d", ErrInvalidChannelID, MinChannelID, MaxChannelID, id)
	}
	return nil
}

// MHzToHz converts an operator-entered MHz value to Hz, rounding to the nearest
// Hz so decimal inputs like 146.0125 do not truncate to ...499.
func MHzToHz(mhz float64) int64 {
	return int64(math.Round(mhz * HzPerMHz))
}

// FormatMHz renders hz as MHz with five decimals.
func FormatMHz(hz int64) string {
	return fmt.Sprintf("%.5f", float64(hz)/HzPerMHz)
}
