// Package normalize provides helper functions for consistent string normalization
// across the application. Use these helpers instead of scattered strings.ToLower
// and strings.TrimSpace calls to ensure consistent behavior.
package normalize

import (
	"strings"
	"time"
)

// Username normalizes a username by trimming whitespace.
// Case is preserved: the health API compares usernames exactly.
func Username(s string) string {
	return strings.TrimSpace(s)
}

// Role normalizes a role value by trimming whitespace and converting to lowercase.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// QueryParam normalizes a query parameter by trimming whitespace.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}

// Date normalizes a calendar date parameter to YYYY-MM-DD.
// Full timestamps are cut to their date part; anything else yields "".
func Date(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 10 {
		return ""
	}
	s = s[:10]
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return ""
	}
	return s
}
