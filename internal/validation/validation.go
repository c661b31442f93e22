package validation

import (
	"regexp"
	"strings"
	"unicode"
)

// phonePattern allows an optional leading "+" followed by 6-15 digits.
var phonePattern = regexp.MustCompile(`^\+?[0-9]{6,15}$`)

// NormalizePhoneNumber strips a messaging-channel prefix ("whatsapp:") and
// guarantees a leading "+" so numbers compare equal across callers.
func NormalizePhoneNumber(number string) string {
	number = strings.TrimSpace(strings.TrimPrefix(number, "whatsapp:"))
	if number == "" {
		return number
	}
	if !strings.HasPrefix(number, "+") {
		number = "+" + number
	}
	return number
}

// ValidatePhoneNumber checks if a string is a plausible phone number.
func ValidatePhoneNumber(number string) bool {
	return phonePattern.MatchString(strings.TrimSpace(number))
}

// ValidateRecipient checks the recipient id extracted from a handover reply
// envelope: it must start with "+" and contain at least one digit.
func ValidateRecipient(recipient string) bool {
	if !strings.HasPrefix(recipient, "+") {
		return false
	}
	for _, r := range recipient {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// ParseLanguages splits a comma-separated language list, trimming blanks.
func ParseLanguages(raw string) []string {
	var languages []string
	for _, lang := range strings.Split(raw, ",") {
		lang = strings.TrimSpace(lang)
		if lang != "" {
			languages = append(languages, lang)
		}
	}
	return languages
}
