package respond

import (
	"regexp"
)

var (
	// Discord webhook URLs embed the auth token as the last path segment.
	webhookTokenPattern = regexp.MustCompile(`(/api/webhooks/\d+)/[a-zA-Z0-9_-]+`)

	// Credentials embedded in URLs or DSNs
	urlPasswordPattern = regexp.MustCompile(`://([^:/]+):([^@]+)@`)
)

// SanitizeError returns the error message with secrets masked, so webhook
// tokens and credentials never end up in logs or responses.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}

	msg := err.Error()

	msg = webhookTokenPattern.ReplaceAllString(msg, "$1/****")
	msg = urlPasswordPattern.ReplaceAllString(msg, "://$1:****@")

	return msg
}
