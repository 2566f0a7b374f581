package util

import (
	"fmt"
	"net"
)

// IsValidIPv4 checks if a string is a valid IPv4 address
func IsValidIPv4(ipStr string) bool {
	ip := net.ParseIP(ipStr)
	return ip != nil && ip.To4() != nil
}

// IsValidHostAddress accepts IPv4 addresses plus the two literals the host
// runtime understands without resolution: "0.0.0.0" and "localhost".
func IsValidHostAddress(addr string) bool {
	if addr == "localhost" {
		return true
	}
	return IsValidIPv4(addr)
}

// ValidatePort checks a TCP/UDP port number (1-65535).
func ValidatePort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}
	return nil
}

// JoinHostPort formats an address:port endpoint for display.
func JoinHostPort(addr string, port int) string {
	return net.JoinHostPort(addr, fmt.Sprint(port))
}
