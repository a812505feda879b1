package utils

import (
	"strings"
)

// ReferenceCodePrefix is shown to homeowners on every reference code
const ReferenceCodePrefix = "RV-"

// ReferenceCode derives the human-readable reference shown to the homeowner
// from a lead id. The result is stable for the lifetime of the lead:
// "RV-" followed by 8 uppercase alphanumeric characters.
func ReferenceCode(leadID string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(leadID) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
		if b.Len() == 8 {
			break
		}
	}
	code := b.String()
	for len(code) < 8 {
		code += "0"
	}
	return ReferenceCodePrefix + code
}
