// Package htmlsanitize turns upstream free text (dish and outlet names) into
// plain display labels. It uses bluemonday to drop any markup the source
// system let through.
package htmlsanitize

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// policy strips every element and attribute.
	policy     *bluemonday.Policy
	policyOnce sync.Once
)

// getPolicy returns the shared strict policy, creating it on first use.
func getPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.StrictPolicy()
	})
	return policy
}

// PlainText removes all markup from s, decodes entities and collapses
// runs of whitespace. Templates escape the result again on output.
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	if IsPlainText(s) && !strings.Contains(s, "&") {
		return strings.Join(strings.Fields(s), " ")
	}
	cleaned := html.UnescapeString(getPolicy().Sanitize(s))
	return strings.Join(strings.Fields(cleaned), " ")
}

// Label is PlainText with a fallback for values that end up empty.
func Label(s, fallback string) string {
	if out := PlainText(s); out != "" {
		return out
	}
	return fallback
}

// IsPlainText checks if content appears to be plain text (no HTML tags).
func IsPlainText(content string) bool {
	if content == "" {
		return true
	}
	// Valid HTML tags require both characters, so if either is missing, treat as plain text
	return !strings.Contains(content, "<") || !strings.Contains(content, ">")
}
