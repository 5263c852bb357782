package domain

import (
	"regexp"
	"strings"
)

// platePattern matches Colombian-style plates: three letters, two digits,
// then a digit (cars, e.g. ABC123) or a letter (motorcycles, e.g. ABC12D).
var platePattern = regexp.MustCompile(`^[A-Z]{3}[0-9]{2}[0-9A-Z]$`)

// NormalizePlate trims whitespace and uppercases a raw plate string.
// Apply before validation and before any repo lookup so "abc123 " and
// "ABC123" always hit the same trip row.
func NormalizePlate(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// ValidPlate reports whether plate (already normalized) has a legal format.
func ValidPlate(plate string) bool {
	return platePattern.MatchString(plate)
}
