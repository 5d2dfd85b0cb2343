package policy

import (
	"regexp"
	"strings"
)

// CompilePattern translates an ignore glob into an anchored, case-sensitive regexp.
//
// '*' matches any run of characters and '?' exactly one. A bracket group
// "[...]" is copied through as a character class. Everything else is copied
// verbatim, so regexp metacharacters such as '.' or '+' keep their regexp
// meaning: "lodash.get" also matches "lodashXget". There is no '**', brace
// expansion or escaping.
func CompilePattern(pattern string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString("^(?:")

	for i := 0; i < len(pattern); i++ {
		switch c := pattern[i]; c {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		case '[':
			end := strings.IndexByte(pattern[i+1:], ']')
			if end < 0 {
				b.WriteByte(c)
				continue
			}
			b.WriteString(pattern[i : i+end+2])
			i += end + 1
		default:
			b.WriteByte(c)
		}
	}

	b.WriteString(")$")
	return regexp.Compile(b.String())
}

// IsIgnored returns true if name fully matches at least one pattern.
// Patterns that do not compile never match.
func IsIgnored(name string, patterns []string) bool {
	for _, pattern := range patterns {
		re, err := CompilePattern(pattern)
		if err != nil {
			continue
		}
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

func matchesAny(name string, matchers []*regexp.Regexp) bool {
	for _, re := range matchers {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}
