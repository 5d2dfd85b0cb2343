package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsIgnored(t *testing.T) {
	tests := []struct {
		name     string
		pkg      string
		patterns []string
		want     bool
	}{
		{"scoped wildcard", "@types/node", []string{"@types/*"}, true},
		{"scoped wildcard miss", "lodash", []string{"@types/*"}, false},
		{"star ignores everything", "foo", []string{"*"}, true},
		{"empty pattern list", "foo", nil, false},
		{"prefix wildcard", "eslint-plugin-foo", []string{"eslint-*"}, true},
		{"anchored at start", "my-eslint-plugin", []string{"eslint-*"}, false},
		{"anchored at end", "react-dom", []string{"react"}, false},
		{"question mark is one char", "ab", []string{"a?"}, true},
		{"question mark needs a char", "a", []string{"a?"}, false},
		{"character class", "pkg-b", []string{"pkg-[abc]"}, true},
		{"character class miss", "pkg-d", []string{"pkg-[abc]"}, false},
		{"star inside class is literal", "a*", []string{"a[*]"}, true},
		{"case sensitive", "React", []string{"react"}, false},
		{"second pattern matches", "lodash", []string{"@types/*", "lodash"}, true},
		{"invalid pattern never matches", "foo", []string{"foo["}, false},
		// '.' keeps its regexp meaning.
		{"dot matches any char", "lodashXget", []string{"lodash.get"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsIgnored(tt.pkg, tt.patterns))
		})
	}
}

func TestIsIgnored_OrderIndependent(t *testing.T) {
	patterns := []string{"@babel/*", "eslint-*", "typescript"}
	reversed := []string{"typescript", "eslint-*", "@babel/*"}

	for _, name := range []string{"@babel/core", "eslint-config-x", "typescript", "react"} {
		assert.Equal(t, IsIgnored(name, patterns), IsIgnored(name, reversed), name)
	}
}

func TestCompilePattern(t *testing.T) {
	re, err := CompilePattern("@scope/pkg-?-*")
	require.NoError(t, err)
	assert.Equal(t, `^(?:@scope/pkg-.-.*)$`, re.String())

	_, err = CompilePattern("bad[")
	assert.Error(t, err)
}
