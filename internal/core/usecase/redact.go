package usecase

import (
	"regexp"
	"strings"
)

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	phonePattern = regexp.MustCompile(`(\+?\d{1,3}[\s.-]?)?\(?\d{2,3}\)?[\s.-]?\d{4,5}[\s.-]?\d{4}`)
	nonDigit     = regexp.MustCompile(`\D`)
)

const redactMaxLength = 100

// RedactMessage masks emails and phone numbers, then truncates. Execution
// logs only ever store the redacted form.
func RedactMessage(message string) string {
	redacted := emailPattern.ReplaceAllStringFunc(message, func(match string) string {
		at := strings.Index(match, "@")
		if at == -1 {
			return match
		}
		return "***" + match[at:]
	})

	redacted = phonePattern.ReplaceAllStringFunc(redacted, func(match string) string {
		digits := nonDigit.ReplaceAllString(match, "")
		if len(digits) > 4 {
			digits = digits[len(digits)-4:]
		}
		return "***-" + digits
	})

	if len(redacted) > redactMaxLength {
		redacted = redacted[:redactMaxLength] + "..."
	}
	return redacted
}
