package iden

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownBandPreset        = errors.New("unknown band preset")
	ErrInvalidChannelID         = errors.New("invalid channel id")
	ErrFrequencyOutOfPlanRange  = errors.New("frequency outside channel plan")
	ErrFrequencyBelowBase       = errors.New("frequency below base frequency")
	ErrFrequencyTooFarAboveBase = errors.New("frequency too far above base frequency")
	ErrNegativeFrequency        = errors.New("negative frequency")
	ErrNoSuitableBand           = errors.New("no suitable band preset")
	ErrLineTooLong              = errors.New("line too long")
)

// PlanRangeError reports a transmit frequency outside an entry's
// [base, base+MaxFreqGapHz] window.
type PlanRangeError struct {
	TxHz   int64
	BaseHz int64
	Above  bool // true when tx exceeds the ceiling, false when below base
}

func (e *PlanRangeError) Error() string {
	if e.Above {
		return fmt.Sprintf("TX frequency (%s MHz) is too far above base frequency (%s MHz), maximum gap is %d MHz",
			FormatMHz(e.TxHz), FormatMHz(e.BaseHz), MaxFreqGapHz/HzPerMHz)
	}
	return fmt.Sprintf("TX frequency (%s MHz) is below base frequency (%s MHz)", FormatMHz(e.TxHz), FormatMHz(e.BaseHz))
}

func (e *PlanRangeError) Unwrap() []error {
	if e.Above {
		return []error{ErrFrequencyOutOfPlanRange, ErrFrequencyTooFarAboveBase}
	}
	return []error{ErrFrequencyOutOfPlanRange, ErrFrequencyBelowBase}
}
