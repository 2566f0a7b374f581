package iden

import "fmt"

// Assignment is the channel identity a host transmits on.
type Assignment struct {
	ChannelID int
	ChannelNo int
	TxHz      int64
	RxHz      int64
	Preset    string // catalog key used, empty when derived from a loaded table
}

func (a Assignment) String() string {
	return fmt.Sprintf("TX %s MHz, RX %s MHz, Ch ID %d, Ch# %d (0x%03X)",
		FormatMHz(a.TxHz), FormatMHz(a.RxHz), a.ChannelID, a.ChannelNo, a.ChannelNo)
}

// AssignFromEntry computes the assignment for txHz on a specific entry.
func AssignFromEntry(e Entry, txHz int64) (Assignment, error) {
	if err := ValidateChannelID(e.ChannelID); err != nil {
		return Assignment{}, err
	}
	chNo, err := e.ChannelNumber(txHz)
	if err != nil {
		return Assignment{}, err
	}
	rx, err := e.ReceiveFrequency(txHz)
	if err != nil {
		return Assignment{}, err
	}
	return Assignment{ChannelID: e.ChannelID, ChannelNo: chNo, TxHz: txHz, RxHz: rx}, nil
}

// CalculateChannelAssignment resolves a TX frequency (MHz) to a channel
// assignment. With a preset the frequency is computed against that band at
// channelID. Without one the catalog is scanned in declaration order and the
// first band whose TX range holds the frequency wins.
func CalculateChannelAssignment(txMHz float64, preset string, channelID int) (Assignment, error) {
	if err := ValidateChannelID(channelID); err != nil {
		return Assignment{}, err
	}
	txHz := MHzToHz(txMHz)

	if preset != "" {
		p, err := LookupPreset(preset)
		if err != nil {
			return Assignment{}, err
		}
		a, err := AssignFromEntry(p.Entry(channelID), txHz)
		if err != nil {
			return Assignment{}, fmt.Errorf("band %s: %w", p.Key, err)
		}
		a.Preset = p.Key
		return a, nil
	}

	for _, p := range catalog {
		if !p.TxRange.Contains(txMHz) {
			continue
		}
		a, err := AssignFromEntry(p.Entry(channelID), txHz)
		if err != nil {
			continue
		}
		a.Preset = p.Key
		return a, nil
	}

	return Assignment{}, fmt.Errorf("%w for %g MHz: specify a band preset or configure the channel manually", ErrNoSuitableBand, txMHz)
}

// AssignFromTable resolves txHz against the entries of a loaded table.
func AssignFromTable(t *Table, txHz int64) (Assignment, error) {
	e, ok := t.FindForFrequency(txHz)
	if !ok {
		return Assignment{}, fmt.Errorf("%w: no identity entry covers %s MHz", ErrFrequencyOutOfPlanRange, FormatMHz(txHz))
	}
	return AssignFromEntry(e, txHz)
}
