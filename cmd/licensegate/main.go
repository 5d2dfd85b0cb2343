package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tomoyayamashita/license-gate/internal/config"
	"github.com/tomoyayamashita/license-gate/internal/discovery"
	"github.com/tomoyayamashita/license-gate/internal/gate"
	"github.com/tomoyayamashita/license-gate/internal/logger"
	"github.com/tomoyayamashita/license-gate/internal/policy"
)

// errCheckFailed signals that the failure payload was already printed
var errCheckFailed = errors.New("license check failed")

var (
	// Global flags
	configPath  string
	mode        string
	isCI        bool
	logLevel    string
	dir         string
	allow       []string
	deny        []string
	ignores     []string
	deps        []string
	concurrency int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "licensegate",
		Short: "License Gate - dependency license check for builds",
		Long: `License Gate reads the installed direct dependencies of a project and checks
their declared licenses against an allow-list, a deny-list and ignore patterns.
Run it before the build: it exits non-zero and prints the failure payload when
a dependency violates the policy.`,
		Example: `  licensegate
  licensegate --deny GPL-3.0-only --ignore '@types/*'
  licensegate --allow MIT --allow Apache-2.0 --deps dependencies
  licensegate list`,
		RunE:          runCheck,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: .licensegate.yaml, then ~/.licensegate/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&mode, "mode", "", "Enforcement mode: strict or warn (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&isCI, "ci", false, "Enable CI mode (always block on violations)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&dir, "dir", ".", "Directory to start the package.json lookup from")
	rootCmd.PersistentFlags().StringSliceVar(&allow, "allow", nil, "Allowed license identifier (repeatable)")
	rootCmd.PersistentFlags().StringSliceVar(&deny, "deny", nil, "Disallowed license identifier (repeatable)")
	rootCmd.PersistentFlags().StringSliceVar(&ignores, "ignore", nil, "Package name glob to skip (repeatable)")
	rootCmd.PersistentFlags().StringSliceVar(&deps, "deps", nil, "Dependency group to scan (repeatable)")
	rootCmd.PersistentFlags().IntVar(&concurrency, "concurrency", 0, "Parallel package lookups (default 16)")

	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newPrintConfigCmd())

	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errCheckFailed) {
			printFailure(gate.FailureFromError(err))
		}
		os.Exit(1)
	}
}

// loadConfig resolves the effective configuration: file, then flags
func loadConfig() (*config.Config, error) {
	projectDir := dir
	if manifest, err := discovery.FindManifest(dir); err == nil {
		projectDir = filepath.Dir(manifest)
	}

	cfg, err := config.Load(configPath, projectDir, config.DefaultYAML)
	if err != nil {
		return nil, err
	}

	cfg.Merge(allow, deny, ignores, deps)
	if mode != "" {
		cfg.Mode = policy.Mode(mode)
	}
	if concurrency != 0 {
		cfg.Concurrency = concurrency
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newHook() (*gate.Hook, error) {
	level, err := logger.ParseLevel(logLevel)
	if err != nil {
		return nil, err
	}
	log := logger.NewLogger(os.Stderr, level)

	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log.Debug("config_loaded", fmt.Sprintf("Using configuration from %s", cfg.Source), nil)

	hook, err := gate.New(gate.Options{
		Allowed:      cfg.Allowed,
		Disallowed:   cfg.Disallowed,
		Ignores:      cfg.Ignores,
		Dependencies: cfg.Dependencies,
	}, gate.Config{
		Dir:         dir,
		Mode:        cfg.Mode,
		CI:          isCI,
		Concurrency: cfg.Concurrency,
		Logger:      log,
	})
	if err != nil {
		return nil, err
	}
	return hook, nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	hook, err := newHook()
	if err != nil {
		return err
	}

	// Interrupting the build abandons outstanding lookups
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if failure := hook.BeforeBuild(ctx); failure != nil {
		printFailure(failure)
		return errCheckFailed
	}
	return nil
}

// printFailure writes the failure payload as JSON to stdout
func printFailure(failure *gate.Failure) {
	data, err := json.MarshalIndent(failure, "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stderr, failure.Error())
		return
	}
	fmt.Println(string(data))
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List direct dependencies with their licenses and decisions",
		RunE: func(cmd *cobra.Command, args []string) error {
			hook, err := newHook()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			outcome, err := hook.Run(ctx)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tVERSION\tLICENSE\tGROUP\tDECISION")
			for _, pkg := range outcome.Scan.Packages {
				result := hook.Classify(pkg)
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", pkg.Name, pkg.Version, pkg.License, pkg.Group, result.Decision)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			fmt.Printf("\n%d checked, %d ignored, %d unknown, %d violations\n",
				outcome.Report.Checked, outcome.Report.Ignored, outcome.Report.Unknown, len(outcome.Report.Violations))
			for _, v := range outcome.Report.Violations {
				fmt.Printf("  - %s: %s\n", v.Package, v.Reason)
			}
			return nil
		},
	}
}

func newPrintConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "print-config",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to encode config: %w", err)
			}

			fmt.Printf("# source: %s\n", cfg.Source)
			fmt.Printf("# ci: %v\n", isCI)
			fmt.Print(string(data))
			return nil
		},
	}
}
