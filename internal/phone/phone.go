// Package phone provides the single canonical phone-number normalization
// used everywhere a number serves as a store key. Issuance and verification
// must agree on the key, so nothing else in the codebase is allowed to
// massage phone numbers on its own.
package phone

import (
	"fmt"
	"strings"
)

const (
	minDigits = 7
	maxDigits = 15 // E.164 upper bound
)

// Normalize converts raw user input to canonical form: a leading "+"
// followed by 7 to 15 digits. Every non-digit character is dropped.
func Normalize(raw string) (string, error) {
	var b strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}

	digits := b.String()
	if len(digits) < minDigits || len(digits) > maxDigits {
		return "", fmt.Errorf("phone number must contain %d to %d digits", minDigits, maxDigits)
	}

	return "+" + digits, nil
}
