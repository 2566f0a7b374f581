package netid

import "fmt"

// hexThreshold is the largest maximum still shown in decimal only.
const hexThreshold = 999

// RangeError reports an identifier outside its inclusive protocol bounds.
type RangeError struct {
	Field     string // human label, e.g. "NAC"
	Key       string // config key, e.g. "nac"
	Value     int
	Min       int
	Max       int
	Hex       bool
	SiteModel string // set for site-model dependent DMR fields
}

func (e *RangeError) Error() string {
	field := e.Field
	if e.SiteModel != "" {
		field = fmt.Sprintf("%s for %s site model", e.Field, e.SiteModel)
	}
	return fmt.Sprintf("%s must be between %s and %s, got %s",
		field, e.format(e.Min), e.format(e.Max), e.format(e.Value))
}

func (e *RangeError) Unwrap() error { return ErrOutOfRange }

func (e *RangeError) format(v int) string {
	if e.Hex {
		return fmt.Sprintf("%d (0x%X)", v, v)
	}
	return fmt.Sprintf("%d", v)
}

// FormatHexOrDecimal renders v with a hex suffix when the field's maximum is
// large enough that operators think of it in hex.
func FormatHexOrDecimal(v, max int) string {
	if max > hexThreshold {
		return fmt.Sprintf("%d (0x%X)", v, v)
	}
	return fmt.Sprintf("%d", v)
}

func checkRange(field, key string, v int, b Bounds, hex bool, model string) error {
	if b.Contains(v) {
		return nil
	}
	return &RangeError{
		Field:     field,
		Key:       key,
		Value:     v,
		Min:       b.Min,
		Max:       b.Max,
		Hex:       hex || b.Max > hexThreshold,
		SiteModel: model,
	}
}

func ValidateDMRColorCode(v int) error {
	return checkRange("Color code", KeyColorCode, v, Bounds{DMRColorCodeMin, DMRColorCodeMax}, false, "")
}

// ValidateDMRNetID checks a DMR network id against the site model's range.
func ValidateDMRNetID(v int, m SiteModel) error {
	return checkRange("DMR network ID", KeyDMRNetID, v, DMRNetIDBounds(m), false, m.String())
}

// ValidateDMRSiteID checks a DMR site id against the site model's range.
func ValidateDMRSiteID(v int, m SiteModel) error {
	return checkRange("DMR site ID", KeySiteID, v, DMRSiteIDBounds(m), false, m.String())
}

func ValidateP25NAC(v int) error {
	return checkRange("NAC", KeyNAC, v, Bounds{P25NACMin, P25NACMax}, true, "")
}

// ValidateP25NetID checks a P25 WACN.
func ValidateP25NetID(v int) error {
	return checkRange("Network ID (WACN)", KeyNetID, v, Bounds{P25NetIDMin, P25NetIDMax}, true, "")
}

func ValidateP25SysID(v int) error {
	return checkRange("System ID", KeySysID, v, Bounds{P25SysIDMin, P25SysIDMax}, true, "")
}

func ValidateP25RFSSID(v int) error {
	return checkRange("RFSS ID", KeyRFSSID, v, Bounds{P25RFSSIDMin, P25RFSSIDMax}, false, "")
}

func ValidateP25SiteID(v int) error {
	return checkRange("Site ID", KeySiteID, v, Bounds{P25SiteIDMin, P25SiteIDMax}, false, "")
}

func ValidateNXDNRAN(v int) error {
	return checkRange("RAN", KeyRAN, v, Bounds{NXDNRANMin, NXDNRANMax}, false, "")
}

// ValidateNXDNLocationID checks the NXDN location id, stored as the system id.
func ValidateNXDNLocationID(v int) error {
	return checkRange("Location ID", KeySysID, v, Bounds{NXDNLocationIDMin, NXDNLocationIDMax}, true, "")
}

func ValidateNXDNSiteID(v int) error {
	return checkRange("Site ID", KeySiteID, v, Bounds{NXDNSiteIDMin, NXDNSiteIDMax}, false, "")
}
