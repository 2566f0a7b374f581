package netid

import (
	"errors"
	"fmt"
)

// Config keys under system.config in a host document.
const (
	KeySiteID    = "siteId"
	KeyNAC       = "nac"
	KeyColorCode = "colorCode"
	KeyDMRNetID  = "dmrNetId"
	KeyNetID     = "netId"
	KeySysID     = "sysId"
	KeyRFSSID    = "rfssId"
	KeyRAN       = "ran"
)

// Param describes one identifier a protocol uses.
type Param struct {
	Key         string
	Min         int
	Max         int
	Default     int
	Description string
	Hex         bool
}

// Bounds returns the parameter's inclusive range.
func (p Param) Bounds() Bounds { return Bounds{p.Min, p.Max} }

// Info lists the identifiers a protocol uses with their limits and defaults.
// The site model only affects DMR.
func Info(p Protocol, m SiteModel) []Param {
	switch p {
	case ProtocolDMR:
		net, site := DMRNetIDBounds(m), DMRSiteIDBounds(m)
		return []Param{
			{Key: KeyColorCode, Min: DMRColorCodeMin, Max: DMRColorCodeMax, Default: 1, Description: "DMR Color Code"},
			{Key: KeyDMRNetID, Min: net.Min, Max: net.Max, Default: 1, Description: fmt.Sprintf("DMR Network ID (%s site model)", m)},
			{Key: KeySiteID, Min: site.Min, Max: site.Max, Default: 1, Description: fmt.Sprintf("DMR Site ID (%s site model)", m)},
		}
	case ProtocolP25:
		return []Param{
			{Key: KeyNAC, Min: P25NACMin, Max: P25NACMax, Default: 0x293, Description: "P25 Network Access Code (NAC)", Hex: true},
			{Key: KeyNetID, Min: P25NetIDMin, Max: P25NetIDMax, Default: 0xBB800, Description: "P25 Network ID (WACN)", Hex: true},
			{Key: KeySysID, Min: P25SysIDMin, Max: P25SysIDMax, Default: 0x001, Description: "P25 System ID", Hex: true},
			{Key: KeyRFSSID, Min: P25RFSSIDMin, Max: P25RFSSIDMax, Default: 1, Description: "P25 RFSS (RF Sub-System) ID"},
			{Key: KeySiteID, Min: P25SiteIDMin, Max: P25SiteIDMax, Default: 1, Description: "P25 Site ID"},
		}
	case ProtocolNXDN:
		return []Param{
			{Key: KeyRAN, Min: NXDNRANMin, Max: NXDNRANMax, Default: 1, Description: "NXDN Random Access Number (RAN)"},
			{Key: KeySysID, Min: NXDNLocationIDMin, Max: NXDNLocationIDMax, Default: 0x001, Description: "NXDN System ID (Location ID)", Hex: true},
			{Key: KeySiteID, Min: NXDNSiteIDMin, Max: NXDNSiteIDMax, Default: 1, Description: "NXDN Site ID"},
		}
	}
	return nil
}

// ValidateField checks one identifier by config key for a protocol.
func ValidateField(p Protocol, m SiteModel, key string, v int) error {
	switch p {
	case ProtocolDMR:
		switch key {
		case KeyColorCode:
			return ValidateDMRColorCode(v)
		case KeyDMRNetID:
			return ValidateDMRNetID(v, m)
		case KeySiteID:
			return ValidateDMRSiteID(v, m)
		}
	case ProtocolP25:
		switch key {
		case KeyNAC:
			return ValidateP25NAC(v)
		case KeyNetID:
			return ValidateP25NetID(v)
		case KeySysID:
			return ValidateP25SysID(v)
		case KeyRFSSID:
			return ValidateP25RFSSID(v)
		case KeySiteID:
			return ValidateP25SiteID(v)
		}
	case ProtocolNXDN:
		switch key {
		case KeyRAN:
			return ValidateNXDNRAN(v)
		case KeySysID:
			return ValidateNXDNLocationID(v)
		case KeySiteID:
			return ValidateNXDNSiteID(v)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownProtocol, p)
	}
	return fmt.Errorf("%w: %q is not used by %s", ErrUnknownField, key, p)
}

// Identifiers is the set of protocol identifiers shared by every instance in a
// system. Nil fields are left unset in generated documents.
type Identifiers struct {
	SiteID    *int
	NAC       *int
	ColorCode *int
	DMRNetID  *int
	NetID     *int
	SysID     *int
	RFSSID    *int
	RAN       *int
}

// Int returns a pointer to v, for filling Identifiers literals.
func Int(v int) *int { return &v }

// Defaults returns the identifiers a protocol uses, set to their defaults.
func Defaults(p Protocol) Identifiers {
	var ids Identifiers
	for _, param := range Info(p, SiteModelSmall) {
		ids.set(param.Key, param.Default)
	}
	return ids
}

// Field is one set identifier with its config key.
type Field struct {
	Key   string
	Value int
}

// Fields returns the set identifiers in the order they are written to a
// document.
func (ids Identifiers) Fields() []Field {
	var out []Field
	for _, f := range ids.slots() {
		if *f.ptr != nil {
			out = append(out, Field{Key: f.key, Value: **f.ptr})
		}
	}
	return out
}

// Get returns the identifier stored under a config key.
func (ids Identifiers) Get(key string) (int, bool) {
	for _, f := range ids.slots() {
		if f.key == key && *f.ptr != nil {
			return **f.ptr, true
		}
	}
	return 0, false
}

// Set stores v under a config key.
func (ids *Identifiers) Set(key string, v int) error {
	if !ids.set(key, v) {
		return fmt.Errorf("%w: %q", ErrUnknownField, key)
	}
	return nil
}

func (ids *Identifiers) set(key string, v int) bool {
	for _, f := range ids.slots() {
		if f.key == key {
			*f.ptr = Int(v)
			return true
		}
	}
	return false
}

type slot struct {
	key string
	ptr **int
}

func (ids *Identifiers) slots() []slot {
	return []slot{
		{KeySiteID, &ids.SiteID},
		{KeyNAC, &ids.NAC},
		{KeyColorCode, &ids.ColorCode},
		{KeyDMRNetID, &ids.DMRNetID},
		{KeyNetID, &ids.NetID},
		{KeySysID, &ids.SysID},
		{KeyRFSSID, &ids.RFSSID},
		{KeyRAN, &ids.RAN},
	}
}

// Validate checks every set identifier the protocol uses and returns all range
// errors joined. Identifiers the protocol does not use are ignored.
func (ids Identifiers) Validate(p Protocol, m SiteModel) error {
	var errs []error
	for _, param := range Info(p, m) {
		v, ok := ids.Get(param.Key)
		if !ok {
			continue
		}
		if err := ValidateField(p, m, param.Key, v); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RangeErrors unpacks the *RangeError values from an error returned by
// Validate.
func RangeErrors(err error) []*RangeError {
	if err == nil {
		return nil
	}
	var out []*RangeError
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			out = append(out, RangeErrors(e)...)
		}
		return out
	}
	var re *RangeError
	if errors.As(err, &re) {
		out = append(out, re)
	}
	return out
}
