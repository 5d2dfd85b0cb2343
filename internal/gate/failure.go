package gate

import (
	"fmt"
	"strings"

	"github.com/tomoyayamashita/license-gate/internal/policy"
)

// Location points at a source position. License failures have none.
type Location struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

// Message is a single build error
type Message struct {
	Text     string    `json:"text"`
	Location *Location `json:"location"`
}

// Failure is the payload handed back to the build tool when the check fails.
// Violations and internal errors share this shape.
type Failure struct {
	Errors []Message `json:"errors"`
}

// Error implements error
func (f *Failure) Error() string {
	texts := make([]string, len(f.Errors))
	for i, m := range f.Errors {
		texts[i] = m.Text
	}
	return strings.Join(texts, "; ")
}

// FailureFromReport returns nil when the report has no violations, otherwise
// a single error listing every offending package as "name (license)".
func FailureFromReport(report policy.Report) *Failure {
	if report.Passed() {
		return nil
	}

	entries := make([]string, len(report.Violations))
	for i, v := range report.Violations {
		entries[i] = fmt.Sprintf("%s (%s)", v.Package, v.License)
	}

	return &Failure{
		Errors: []Message{{Text: strings.Join(entries, ", ")}},
	}
}

// FailureFromError wraps an error raised while scanning or evaluating
func FailureFromError(err error) *Failure {
	if err == nil {
		return nil
	}
	return &Failure{
		Errors: []Message{{Text: "license check failed: " + err.Error()}},
	}
}
