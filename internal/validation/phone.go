package validation

import (
	"errors"
	"regexp"
	"strings"
)

var e164 = regexp.MustCompile(`^\+[1-9][0-9]{7,14}$`)

// NormalizePhone strips spaces, dashes and parentheses and validates the
// result as an E.164 number. A bare 10-digit number is taken as Indian (+91).
func NormalizePhone(phone string) (string, error) {
	cleaned := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(strings.TrimSpace(phone))

	if cleaned == "" {
		return "", errors.New("phone number is required")
	}

	if len(cleaned) == 10 && !strings.HasPrefix(cleaned, "+") {
		cleaned = "+91" + cleaned
	}

	if !e164.MatchString(cleaned) {
		return "", errors.New("invalid phone number, use international format like +919876543210")
	}

	return cleaned, nil
}
