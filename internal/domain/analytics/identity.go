package analytics

import "strings"

// NormalizeEmail canonicalises an email address into the universal join key
// used across all three sources: trimmed and lower-cased. An empty result
// means "no identity" and the record carrying it is excluded from fusion.
func NormalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// HasIdentity reports whether a normalised email can act as a join key.
func HasIdentity(email string) bool {
	return email != ""
}
