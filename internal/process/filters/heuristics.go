package filters

import (
	"strings"
	"unicode"
)

// IsSymbolOnly reports whether text has no letter or digit.
func IsSymbolOnly(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return true
	}

	for _, r := range trimmed {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			return false
		}
	}

	return true
}
