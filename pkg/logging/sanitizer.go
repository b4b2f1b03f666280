// Package logging provides redaction helpers so provider secrets never reach
// log output.
package logging

import (
	"regexp"
)

// RedactedText is the replacement text for sensitive data.
const RedactedText = "[REDACTED]"

var (
	// Matches password values in connection strings and form bodies:
	// password=xxx, pwd=xxx, pass=xxx (until next delimiter).
	passwordPattern = regexp.MustCompile(`(?i)(password|pwd|pass)=[^;&\s]+`)

	// Matches bearer/session tokens.
	tokenPattern = regexp.MustCompile(`(?i)(Bearer|X-Authentication:?)\s+[A-Za-z0-9+/=._-]{8,}`)

	// Matches API key values in query strings and headers.
	apiKeyPattern = regexp.MustCompile(`(?i)(api[_-]?key|apikey|app[_-]?key|key)=[A-Za-z0-9-_]{8,}`)

	// Matches URL userinfo credentials (user:pass@host).
	connStringPattern = regexp.MustCompile(`://[^:/\s]+:[^@\s]+@[^/\s]+`)

	// Matches PEM blocks so certificate material never lands in a log line.
	pemPattern = regexp.MustCompile(`-----BEGIN [A-Z ]+-----[\s\S]*?-----END [A-Z ]+-----`)
)

// SanitizeError sanitizes error messages that might contain sensitive data.
// Use this before logging any error from credential or upstream operations.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return Sanitize(err.Error())
}

// Sanitize removes secret material from an arbitrary string.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}

	sanitized := passwordPattern.ReplaceAllString(s, "${1}="+RedactedText)
	sanitized = tokenPattern.ReplaceAllString(sanitized, "${1} "+RedactedText)
	sanitized = apiKeyPattern.ReplaceAllString(sanitized, "${1}="+RedactedText)
	sanitized = connStringPattern.ReplaceAllString(sanitized, "://"+RedactedText+"@"+RedactedText)
	sanitized = pemPattern.ReplaceAllString(sanitized, RedactedText)

	return sanitized
}
