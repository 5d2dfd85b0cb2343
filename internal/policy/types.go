package policy

import "github.com/tomoyayamashita/license-gate/internal/ecosystem"

// Mode represents the policy enforcement mode
type Mode string

const (
	ModeStrict Mode = "strict"
	ModeWarn   Mode = "warn"
)

// Valid reports whether m is a known mode
func (m Mode) Valid() bool {
	return m == ModeStrict || m == ModeWarn
}

// Decision represents the policy decision result
type Decision string

const (
	DecisionAllow   Decision = "allow"
	DecisionBlock   Decision = "block"
	DecisionIgnore  Decision = "ignore"
	DecisionUnknown Decision = "unknown"
)

// Policy is the allow/deny/ignore configuration for one check.
// Empty lists are valid: with no allow-list anything not disallowed passes.
type Policy struct {
	Allowed        []string `json:"allowed" yaml:"allowed"`
	Disallowed     []string `json:"disallowed" yaml:"disallowed"`
	IgnorePatterns []string `json:"ignores" yaml:"ignores"`
}

// Violation is a package whose license fails the policy
type Violation struct {
	Package string `json:"package"`
	License string `json:"license"`
	Reason  string `json:"reason"`
}

// Report is the outcome of checking a package list
type Report struct {
	Violations  []Violation            `json:"violations"`
	Diagnostics []ecosystem.Diagnostic `json:"diagnostics"`
	Checked     int                    `json:"checked"`
	Ignored     int                    `json:"ignored"`
	Unknown     int                    `json:"unknown"`
}

// Passed returns true if no violations were found
func (r Report) Passed() bool {
	return len(r.Violations) == 0
}
