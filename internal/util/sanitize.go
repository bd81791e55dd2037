// Package util provides URL helpers shared by the transport, the CLI and logging.
package util

import (
	"net/url"
	"strings"
)

// DefaultSensitiveParams contains query parameter names that are redacted from logged URLs
var DefaultSensitiveParams = []string{
	"api_key", "apikey", "api-key",
	"token", "access_token", "auth_token", "auth",
	"password", "passwd", "pwd",
	"secret", "client_secret",
	"key", "private_key",
	"authorization",
	"session", "session_id", "sessionid",
}

const redacted = "[REDACTED]"

// SanitizeURL replaces the values of sensitive query parameters (case-insensitive)
// with "[REDACTED]". URLs that fail to parse or carry nothing sensitive are returned unchanged.
func SanitizeURL(rawURL string, sensitiveParams []string) string {
	if len(sensitiveParams) == 0 {
		sensitiveParams = DefaultSensitiveParams
	}

	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.RawQuery == "" {
		return rawURL
	}

	sensitive := make(map[string]struct{}, len(sensitiveParams))
	for _, name := range sensitiveParams {
		sensitive[strings.ToLower(name)] = struct{}{}
	}

	query := parsed.Query()
	changed := false
	for name := range query {
		if _, ok := sensitive[strings.ToLower(name)]; ok {
			query.Set(name, redacted)
			changed = true
		}
	}

	if !changed {
		return rawURL
	}

	parsed.RawQuery = query.Encode()
	return parsed.String()
}

// SanitizeURLDefault redacts sensitive parameters using the default list
func SanitizeURLDefault(rawURL string) string {
	return SanitizeURL(rawURL, nil)
}
