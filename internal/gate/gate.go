package gate

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/tomoyayamashita/license-gate/internal/discovery"
	"github.com/tomoyayamashita/license-gate/internal/ecosystem"
	"github.com/tomoyayamashita/license-gate/internal/logger"
	"github.com/tomoyayamashita/license-gate/internal/policy"
)

// ErrInvalidMode is returned for enforcement modes other than strict and warn
var ErrInvalidMode = errors.New("invalid mode")

// Options is the policy surface exposed to the build integration.
// Missing Dependencies scans all four groups.
type Options struct {
	Allowed      []string `json:"allowed,omitempty"`
	Disallowed   []string `json:"disallowed,omitempty"`
	Ignores      []string `json:"ignores,omitempty"`
	Dependencies []string `json:"dependencies,omitempty"`
}

// Config represents hook runtime settings
type Config struct {
	Dir         string
	Mode        policy.Mode
	CI          bool
	Concurrency int
	Logger      *logger.Logger
}

// Hook runs the license check before a build
type Hook struct {
	dir     string
	mode    policy.Mode
	isCI    bool
	engine  *policy.Engine
	scanner *discovery.Scanner
	logger  *logger.Logger
}

// New validates the options and builds a Hook. Configuration errors are
// returned here, before anything is scanned.
func New(opts Options, cfg Config) (*Hook, error) {
	groups, err := ecosystem.ParseGroups(opts.Dependencies)
	if err != nil {
		return nil, err
	}

	engine, err := policy.NewEngine(policy.Policy{
		Allowed:        opts.Allowed,
		Disallowed:     opts.Disallowed,
		IgnorePatterns: opts.Ignores,
	})
	if err != nil {
		return nil, err
	}

	mode := cfg.Mode
	if mode == "" {
		mode = policy.ModeStrict
	}
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
	// CI always blocks on violations
	if cfg.CI {
		mode = policy.ModeStrict
	}

	dir := cfg.Dir
	if dir == "" {
		dir = "."
	}

	log := cfg.Logger
	if log == nil {
		log = logger.NewLogger(io.Discard, logger.LevelError)
	}

	return &Hook{
		dir:     dir,
		mode:    mode,
		isCI:    cfg.CI,
		engine:  engine,
		scanner: discovery.NewScanner(discovery.Options{Groups: groups, Concurrency: cfg.Concurrency}),
		logger:  log,
	}, nil
}

// Mode returns the effective enforcement mode
func (h *Hook) Mode() policy.Mode {
	return h.mode
}

// Classify returns the policy decision for a single package
func (h *Hook) Classify(pkg ecosystem.PackageRecord) policy.Result {
	return h.engine.Classify(pkg)
}

// Outcome is everything one run produced
type Outcome struct {
	RunID  string
	Scan   *discovery.Result
	Report policy.Report
}

// Run scans the project and checks every discovered package. Diagnostics are
// logged; violations are returned in the report.
func (h *Hook) Run(ctx context.Context) (*Outcome, error) {
	runID := uuid.New().String()

	h.logger.Info("check_start", fmt.Sprintf("Checking licenses in %s", h.dir), map[string]interface{}{
		"mode":   string(h.mode),
		"ci":     h.isCI,
		"run_id": runID,
	})

	scan, err := h.scanner.Scan(ctx, h.dir)
	if err != nil {
		return nil, err
	}
	h.logger.LogDiagnostics(scan.Diagnostics, runID)

	for _, pkg := range scan.Packages {
		h.logger.LogPackageCheck(pkg, h.engine.Classify(pkg), h.mode, h.isCI, runID)
	}

	report := h.engine.Check(scan.Packages)
	h.logger.LogDiagnostics(report.Diagnostics, runID)

	h.logger.Info("check_complete", fmt.Sprintf("Checked %d packages from %s", len(scan.Packages), scan.ManifestPath), map[string]interface{}{
		"checked":    report.Checked,
		"ignored":    report.Ignored,
		"unknown":    report.Unknown,
		"violations": len(report.Violations),
		"run_id":     runID,
	})

	return &Outcome{
		RunID:  runID,
		Scan:   scan,
		Report: report,
	}, nil
}

// BeforeBuild runs the check and returns nil on success or the failure
// payload for the build tool. In warn mode violations are logged only.
func (h *Hook) BeforeBuild(ctx context.Context) *Failure {
	outcome, err := h.Run(ctx)
	if err != nil {
		h.logger.Error("check_error", "License check failed", map[string]interface{}{
			"error": err.Error(),
		})
		return FailureFromError(err)
	}

	failure := FailureFromReport(outcome.Report)
	if failure == nil {
		return nil
	}

	if h.mode == policy.ModeWarn {
		h.logger.Warn("violations_tolerated", failure.Error(), map[string]interface{}{
			"mode":   string(h.mode),
			"run_id": outcome.RunID,
		})
		return nil
	}

	return failure
}
