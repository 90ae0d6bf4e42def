package chatbot

import "strings"

const (
	minPhoneDigits = 10
	maxPhoneDigits = 15

	// maxPhoneRetries is how many invalid phone answers re-prompt before the flow moves on.
	maxPhoneRetries = 2
)

// phoneFormatting are the separators visitors type between phone digits.
var phoneFormatting = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "")

// IsValidPhone accepts 10 to 15 digits with an optional leading plus sign and
// common separators in between.
func IsValidPhone(s string) bool {
	compact := phoneFormatting.Replace(strings.TrimSpace(s))
	compact = strings.TrimPrefix(compact, "+")
	if len(compact) < minPhoneDigits || len(compact) > maxPhoneDigits {
		return false
	}
	for _, r := range compact {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// NormalizePhone keeps the digits and a leading plus sign.
func NormalizePhone(s string) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	if strings.HasPrefix(s, "+") {
		b.WriteByte('+')
	}
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
