package service

import "strings"

// normalizeAddress lowercases an address for use as a map key. Address
// comparisons are case-insensitive everywhere in the core.
func normalizeAddress(a string) string {
	return strings.ToLower(strings.TrimSpace(a))
}
