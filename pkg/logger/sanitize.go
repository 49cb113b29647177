package logger

import (
	"log/slog"
	"strings"
)

// MaskUsername masks a username for logging (e.g., "a****", "u***@e***.com")
func MaskUsername(username string) string {
	if username == "" {
		return ""
	}

	if local, domain, ok := strings.Cut(username, "@"); ok {
		// Mask domain: keep TLD, mask the rest
		domainParts := strings.Split(domain, ".")
		if len(domainParts) > 1 {
			for i := 0; i < len(domainParts)-1; i++ {
				domainParts[i] = strings.Repeat("*", len(domainParts[i]))
			}
			domain = strings.Join(domainParts, ".")
		}
		return maskTail(local) + "@" + domain
	}

	return maskTail(username)
}

// maskTail keeps the first rune and masks the rest
func maskTail(s string) string {
	runes := []rune(s)
	if len(runes) <= 1 {
		return s
	}
	return string(runes[0]) + strings.Repeat("*", len(runes)-1)
}

// RedactedAttr returns a redacted slog attribute for sensitive values
// In production, returns "[REDACTED]"; in development, returns the actual value
func RedactedAttr(key, value, env string) slog.Attr {
	if env == "production" {
		return slog.String(key, "[REDACTED]")
	}
	return slog.String(key, value)
}

// SanitizeQueryString checks if query string contains sensitive parameters
// and returns true if the entire query string should be redacted
func SanitizeQueryString(rawQuery string) bool {
	sensitiveParams := []string{
		"otp",
		"secret",
		"key",
		"token",
		"username",
		"auth",
	}

	query := strings.ToLower(rawQuery)
	for _, param := range sensitiveParams {
		if strings.Contains(query, param) {
			return true
		}
	}
	return false
}
