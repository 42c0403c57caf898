package utils

import "strings"

// Normalize lower-cases and trims an identity key (username, email, role
// name). Applied on write and on every lookup.
func Normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
