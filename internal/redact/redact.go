// Package redact provides utilities for scrubbing sensitive information from
// strings before they are logged. Error messages bubbling up from the
// database driver or the token layer can carry connection strings, SQL
// fragments, or signed tokens; redacting them at the logging boundary keeps
// them out of log aggregation.
package redact

import "regexp"

// RedactionPlaceholder is the generic replacement for matched secrets.
const RedactionPlaceholder = "[REDACTED]"

// rule pairs a pattern with its replacement placeholder. Rules apply in
// order, so broader patterns come after more specific ones.
type rule struct {
	pattern     *regexp.Regexp
	placeholder string
}

var rules = []rule{
	// Connection strings with inline credentials.
	{regexp.MustCompile(`(?i)(postgres|postgresql|mysql)://[^@\s]+@`), "[REDACTED_DSN]"},

	// Password values in key=value or key: value form.
	{regexp.MustCompile(`(?i)(password|passwd|pwd)([=:\s]['"]?)[^'"&\s]{3,}`), "[REDACTED_CREDENTIAL]"},

	// Secrets and signing keys.
	{regexp.MustCompile(`(?i)(secret|api[_-]?key|token)(['"\s:=]+)[A-Za-z0-9_\-.~+/]{8,}`), "[REDACTED_KEY]"},

	// Signed JWTs (three base64url segments starting with eyJ).
	{regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`), "[REDACTED_JWT]"},

	// SQL fragments echoed back by the driver.
	{regexp.MustCompile(`(?i)(SELECT|INSERT|UPDATE|DELETE)[\s\w,*()]+(?:FROM|INTO|SET)[\s\w,*()='"$]*`), "[REDACTED_SQL]"},

	// Filesystem paths.
	{regexp.MustCompile(`(/[\w.-]+){2,}`), "[REDACTED_PATH]"},

	// host:port pairs from network errors.
	{regexp.MustCompile(`\b(?:[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z]{2,}:\d{1,5}\b`), "[REDACTED_HOST]"},
}

// String redacts sensitive information from the input string.
func String(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, r := range rules {
		result = r.pattern.ReplaceAllString(result, r.placeholder)
	}
	return result
}

// Error redacts sensitive information from an error's Error() output.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
