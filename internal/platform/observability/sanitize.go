package observability

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Log fields built from request data are stripped of control characters and
// truncated so a hostile path or header cannot inject log lines.

func clampString(value string, limit int) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\r' && r != '\t' {
			return -1
		}
		return r
	}, value)

	if utf8.RuneCountInString(cleaned) <= limit {
		return cleaned
	}
	runes := []rune(cleaned)
	return string(runes[:limit])
}

// SanitizeRoute bounds the chi route pattern recorded on log entries and spans.
func SanitizeRoute(route string) string {
	if route == "" {
		return "/"
	}
	return clampString(route, 180)
}

// SanitizeMethod bounds the HTTP method field.
func SanitizeMethod(method string) string {
	return clampString(method, 10)
}

// SanitizeUserID bounds Firebase UIDs before they reach log output.
func SanitizeUserID(uid string) string {
	if uid == "" {
		return ""
	}
	return clampString(uid, 64)
}
