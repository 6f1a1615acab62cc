package domain

import (
	"regexp"
	"strings"
)

var (
	macRegex       = regexp.MustCompile(`^([0-9A-Fa-f]{2}[:-]){5}([0-9A-Fa-f]{2})$`)
	interfaceRegex = regexp.MustCompile(`^[a-zA-Z0-9\-_]+$`)
)

// IsValidMAC checks if the string is a valid MAC address.
func IsValidMAC(mac string) bool {
	return macRegex.MatchString(mac)
}

// NormalizeBSSID lowercases a MAC and uses colons as separators. Strings that
// are not MACs are returned trimmed but otherwise untouched.
func NormalizeBSSID(bssid string) string {
	bssid = strings.TrimSpace(bssid)
	if !IsValidMAC(bssid) {
		return bssid
	}
	return strings.ToLower(strings.ReplaceAll(bssid, "-", ":"))
}

// IsValidInterface checks if the string is a safe interface name (alphanumeric + - _).
// Names end up as arguments to iw, so anything else is refused.
func IsValidInterface(iface string) bool {
	// IFNAMSIZ is 16
	if len(iface) == 0 || len(iface) > 16 {
		return false
	}
	return interfaceRegex.MatchString(iface)
}
