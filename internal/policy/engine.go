package policy

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/tomoyayamashita/license-gate/internal/ecosystem"
)

// ErrInvalidPolicy is returned when a policy cannot be used for a check
var ErrInvalidPolicy = errors.New("invalid policy")

// Engine makes policy decisions
type Engine struct {
	policy   Policy
	matchers []*regexp.Regexp
}

// NewEngine validates the policy and compiles its ignore patterns.
// A blank license identifier is rejected because by containment it would
// match every license.
func NewEngine(p Policy) (*Engine, error) {
	for _, id := range p.Allowed {
		if strings.TrimSpace(id) == "" {
			return nil, fmt.Errorf("%w: blank identifier in allowed list", ErrInvalidPolicy)
		}
	}
	for _, id := range p.Disallowed {
		if strings.TrimSpace(id) == "" {
			return nil, fmt.Errorf("%w: blank identifier in disallowed list", ErrInvalidPolicy)
		}
	}

	matchers := make([]*regexp.Regexp, 0, len(p.IgnorePatterns))
	for _, pattern := range p.IgnorePatterns {
		re, err := CompilePattern(pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: ignore pattern %q: %v", ErrInvalidPolicy, pattern, err)
		}
		matchers = append(matchers, re)
	}

	return &Engine{
		policy:   p,
		matchers: matchers,
	}, nil
}

// Result represents the result of a policy decision
type Result struct {
	Decision Decision
	Reason   string
}

// ShouldBlock returns true if the decision is to block
func (r Result) ShouldBlock() bool {
	return r.Decision == DecisionBlock
}

// Evaluate classifies one license expression. The deny-list is checked first
// and always wins over the allow-list. Identifiers match by case-insensitive
// containment, so a disallowed "GPL-2.0-only" also hits "LGPL-2.0-only".
func Evaluate(license string, allowed, disallowed []string) Result {
	candidates := ParseExpression(license)
	if len(candidates) == 0 {
		candidates = []string{license}
	}

	for _, candidate := range candidates {
		if containsAny(candidate, disallowed) {
			return Result{
				Decision: DecisionBlock,
				Reason:   fmt.Sprintf("license %q is not allowed (disallowed list)", candidate),
			}
		}
	}

	if len(allowed) > 0 {
		for _, candidate := range candidates {
			if containsAny(candidate, allowed) {
				return Result{Decision: DecisionAllow}
			}
		}
		return Result{
			Decision: DecisionBlock,
			Reason:   fmt.Sprintf("none of the licenses [%s] are in the allowed list", strings.Join(candidates, ", ")),
		}
	}

	return Result{Decision: DecisionAllow}
}

func containsAny(candidate string, ids []string) bool {
	lower := strings.ToLower(candidate)
	for _, id := range ids {
		if strings.Contains(lower, strings.ToLower(id)) {
			return true
		}
	}
	return false
}

// Classify returns the decision for a single package, including ignore and
// unknown-license outcomes.
func (e *Engine) Classify(pkg ecosystem.PackageRecord) Result {
	if matchesAny(pkg.Name, e.matchers) {
		return Result{Decision: DecisionIgnore}
	}
	if pkg.HasUnknownLicense() {
		return Result{
			Decision: DecisionUnknown,
			Reason:   "license is unknown",
		}
	}
	return Evaluate(pkg.License, e.policy.Allowed, e.policy.Disallowed)
}

// Check evaluates every package in input order and collects violations.
// Unknown licenses are reported as diagnostics, never as violations.
func (e *Engine) Check(packages []ecosystem.PackageRecord) Report {
	report := Report{
		Violations:  []Violation{},
		Diagnostics: []ecosystem.Diagnostic{},
	}

	for _, pkg := range packages {
		result := e.Classify(pkg)

		switch result.Decision {
		case DecisionIgnore:
			report.Ignored++
			continue
		case DecisionUnknown:
			report.Unknown++
			report.Diagnostics = append(report.Diagnostics, ecosystem.Diagnostic{
				Kind:    ecosystem.DiagnosticUnknownLicense,
				Package: pkg.Name,
				Message: fmt.Sprintf("license of %s is unknown, skipping", pkg.Name),
			})
			continue
		}

		report.Checked++
		if result.ShouldBlock() {
			report.Violations = append(report.Violations, Violation{
				Package: pkg.Name,
				License: pkg.License,
				Reason:  result.Reason,
			})
		}
	}

	return report
}

// Check is a one-shot helper around NewEngine and Engine.Check
func Check(packages []ecosystem.PackageRecord, p Policy) (Report, error) {
	engine, err := NewEngine(p)
	if err != nil {
		return Report{}, err
	}
	return engine.Check(packages), nil
}
