package config

import (
	"fmt"

	"github.com/trunkgen/trunkgen/pkg/util"
)

const (
	presharedKeyLen = 64
	secureKeyLen    = 32
	maxIdentityLen  = 32
	maxCallsignLen  = 16
)

// Validate runs format checks that need no knowledge of the active protocol:
// addresses, ports, key lengths and level ranges. It returns one message per
// problem; an empty result means the document passed.
func (d *Document) Validate() []string {
	v := &util.ValidationBuilder{}

	if d.boolOr("network.enable", false) {
		v.Add(util.IsValidHostAddress(d.stringOr("network.address", "")), "Invalid network.address")
		v.Add(validPort(d.intOr("network.port", 0)), "Invalid network.port")
		if d.boolOr("network.encrypted", false) {
			v.Add(validHexKey(d.stringOr("network.presharedKey", ""), presharedKeyLen),
				fmt.Sprintf("Invalid network.presharedKey (must be %d hex characters)", presharedKeyLen))
		}
	}

	if addr := d.stringOr("network.rpcAddress", ""); addr != "" {
		v.Add(util.IsValidHostAddress(addr), "Invalid network.rpcAddress")
	}
	if port := d.intOr("network.rpcPort", 0); port != 0 {
		v.Add(validPort(port), "Invalid network.rpcPort")
	}

	if d.boolOr("network.restEnable", false) {
		v.Add(util.IsValidHostAddress(d.stringOr("network.restAddress", "")), "Invalid network.restAddress")
		v.Add(validPort(d.intOr("network.restPort", 0)), "Invalid network.restPort")
	}

	identity := d.stringOr("system.identity", "")
	v.Add(len(identity) > 0 && len(identity) <= maxIdentityLen, "Invalid system.identity")

	v.Add(inRange(d.intOr("system.config.colorCode", 1), 0, 15), "Invalid system.config.colorCode (must be 0-15)")
	v.Add(inRange(d.intOr("system.config.nac", 0), 0, 0xFFF), "Invalid system.config.nac (must be 0-4095)")
	v.Add(inRange(d.intOr("system.config.ran", 0), 0, 63), "Invalid system.config.ran (must be 0-63)")

	if d.boolOr("system.cwId.enable", false) {
		callsign := d.stringOr("system.cwId.callsign", "")
		v.Add(len(callsign) > 0 && len(callsign) <= maxCallsignLen, "Invalid system.cwId.callsign")
	}

	v.Add(inRange(d.intOr("system.modem.rxLevel", 0), 0, 100), "Invalid system.modem.rxLevel (must be 0-100)")
	v.Add(inRange(d.intOr("system.modem.txLevel", 0), 0, 100), "Invalid system.modem.txLevel (must be 0-100)")

	if key := d.stringOr("system.config.secure.key", ""); key != "" {
		v.Add(validHexKey(key, secureKeyLen),
			fmt.Sprintf("Invalid system.config.secure.key (must be %d hex characters)", secureKeyLen))
	}

	return v.Messages()
}

func (d *Document) intOr(path string, def int) int {
	if !d.Has(path) {
		return def
	}
	v, ok := d.GetInt(path)
	if !ok {
		// present but not an integer; force a range failure
		return -1
	}
	return v
}

func (d *Document) stringOr(path, def string) string {
	if v, ok := d.GetString(path); ok {
		return v
	}
	return def
}

func (d *Document) boolOr(path string, def bool) bool {
	if v, ok := d.GetBool(path); ok {
		return v
	}
	return def
}

func validPort(p int) bool {
	return util.ValidatePort(p) == nil
}

func validHexKey(key string, n int) bool {
	return len(key) == n && util.IsHex(key)
}

func inRange(v, lo, hi int) bool {
	return v >= lo && v <= hi
}
