package policy

import (
	"regexp"
	"strings"
)

// orSeparator is the disjunction token. AND, WITH and parentheses are not
// recognised and stay inside a segment.
var orSeparator = regexp.MustCompile(`\s+(?i:or)\s+`)

// ParseExpression splits a license field on OR into candidate identifiers.
// Segments are trimmed and empty ones dropped; casing is preserved.
func ParseExpression(raw string) []string {
	segments := orSeparator.Split(raw, -1)

	ids := make([]string, 0, len(segments))
	for _, segment := range segments {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		ids = append(ids, segment)
	}
	return ids
}
