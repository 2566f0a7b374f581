// Package netid holds the protocol identifier limits for DMR, P25 and NXDN and
// validates operator-supplied identifiers against them.
package netid

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrOutOfRange       = errors.New("value out of range")
	ErrUnknownProtocol  = errors.New("unknown protocol")
	ErrUnknownSiteModel = errors.New("unknown site model")
	ErrUnknownField     = errors.New("unknown identifier field")
)

// Protocol is a digital voice air interface.
type Protocol string

const (
	ProtocolDMR  Protocol = "dmr"
	ProtocolP25  Protocol = "p25"
	ProtocolNXDN Protocol = "nxdn"
)

// Protocols lists every supported protocol.
func Protocols() []Protocol {
	return []Protocol{ProtocolDMR, ProtocolP25, ProtocolNXDN}
}

// ParseProtocol accepts a protocol name in any case.
func ParseProtocol(s string) (Protocol, error) {
	p := Protocol(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case ProtocolDMR, ProtocolP25, ProtocolNXDN:
		return p, nil
	}
	return "", fmt.Errorf("%w: %q (expected dmr, p25 or nxdn)", ErrUnknownProtocol, s)
}

func (p Protocol) String() string { return string(p) }

// SiteModel is the DMR trade-off between network-id and site-id address space.
type SiteModel int

const (
	SiteModelTiny SiteModel = iota
	SiteModelSmall
	SiteModelLarge
	SiteModelHuge
)

var siteModelNames = []string{"tiny", "small", "large", "huge"}

// ParseSiteModel maps a site model name to its value. An empty name selects
// the small model.
func ParseSiteModel(s string) (SiteModel, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return SiteModelSmall, nil
	}
	for i, name := range siteModelNames {
		if name == s {
			return SiteModel(i), nil
		}
	}
	return SiteModelSmall, fmt.Errorf("%w: %q (expected %s)", ErrUnknownSiteModel, s, strings.Join(siteModelNames, ", "))
}

func (m SiteModel) String() string {
	if m < SiteModelTiny || m > SiteModelHuge {
		return fmt.Sprintf("SiteModel(%d)", int(m))
	}
	return siteModelNames[m]
}

// Bounds is an inclusive integer range.
type Bounds struct {
	Min int
	Max int
}

// Contains reports whether v lies within the bounds.
func (b Bounds) Contains(v int) bool {
	return v >= b.Min && v <= b.Max
}

// DMR limits
const (
	DMRColorCodeMin = 0
	DMRColorCodeMax = 15
)

// P25 limits
const (
	P25NACMin    = 0x000
	P25NACMax    = 0xF7F
	P25NetIDMin  = 1
	P25NetIDMax  = 0xFFFFE
	P25SysIDMin  = 1
	P25SysIDMax  = 0xFFE
	P25RFSSIDMin = 1
	P25RFSSIDMax = 0xFE
	P25SiteIDMin = 1
	P25SiteIDMax = 0xFE
)

// NXDN limits
const (
	NXDNRANMin        = 0
	NXDNRANMax        = 63
	NXDNLocationIDMin = 1
	NXDNLocationIDMax = 0xFFFFFF
	NXDNSiteIDMin     = 1
	NXDNSiteIDMax     = 0xFFFFFF
)

type siteModelLimits struct {
	netID  Bounds
	siteID Bounds
}

var dmrSiteModelLimits = [...]siteModelLimits{
	SiteModelTiny:  {netID: Bounds{1, 0x1FF}, siteID: Bounds{1, 0x07}},
	SiteModelSmall: {netID: Bounds{1, 0x7F}, siteID: Bounds{1, 0x1F}},
	SiteModelLarge: {netID: Bounds{1, 0x1F}, siteID: Bounds{1, 0x7F}},
	SiteModelHuge:  {netID: Bounds{1, 0x03}, siteID: Bounds{1, 0x3FF}},
}

func modelLimits(m SiteModel) siteModelLimits {
	if m < SiteModelTiny || m > SiteModelHuge {
		m = SiteModelSmall
	}
	return dmrSiteModelLimits[m]
}

// DMRNetIDBounds returns the DMR network id range for a site model.
func DMRNetIDBounds(m SiteModel) Bounds { return modelLimits(m).netID }

// DMRSiteIDBounds returns the DMR site id range for a site model.
func DMRSiteIDBounds(m SiteModel) Bounds { return modelLimits(m).siteID }
