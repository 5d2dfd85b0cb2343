package discovery

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/Masterminds/semver/v3"
	"golang.org/x/sync/errgroup"

	"github.com/tomoyayamashita/license-gate/internal/ecosystem"
)

// DefaultConcurrency bounds the number of parallel package lookups
const DefaultConcurrency = 16

// Options configures a Scanner
type Options struct {
	Groups      []ecosystem.DependencyGroup
	Concurrency int
}

// Scanner discovers the installed direct dependencies of a project
type Scanner struct {
	groups      []ecosystem.DependencyGroup
	concurrency int
}

// NewScanner creates a new Scanner. Empty Groups selects every group.
func NewScanner(opts Options) *Scanner {
	groups := opts.Groups
	if len(groups) == 0 {
		groups = ecosystem.AllGroups()
	}

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	return &Scanner{
		groups:      groups,
		concurrency: concurrency,
	}
}

// Result is the outcome of a scan
type Result struct {
	ManifestPath string                    `json:"manifest_path"`
	ProjectName  string                    `json:"project_name"`
	Packages     []ecosystem.PackageRecord `json:"packages"`
	Diagnostics  []ecosystem.Diagnostic    `json:"diagnostics"`
}

// dependency is one entry of a project manifest dependency group
type dependency struct {
	name     string
	declared string
	group    ecosystem.DependencyGroup
}

// Scan locates the project manifest from dir upward and resolves every
// selected direct dependency concurrently. A missing project manifest is
// fatal; a package that cannot be resolved is dropped with a diagnostic.
// Cancelling ctx abandons outstanding lookups and returns ctx.Err().
func (s *Scanner) Scan(ctx context.Context, dir string) (*Result, error) {
	manifestPath, err := FindManifest(dir)
	if err != nil {
		return nil, err
	}

	project, err := ParseManifest(manifestPath)
	if err != nil {
		return nil, err
	}

	projectDir := filepath.Dir(manifestPath)
	deps := s.collect(project)

	records := make([]*ecosystem.PackageRecord, len(deps))
	notes := make([][]ecosystem.Diagnostic, len(deps))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, dep := range deps {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			record, diags, err := resolve(projectDir, dep)
			if err != nil {
				notes[i] = []ecosystem.Diagnostic{{
					Kind:    ecosystem.DiagnosticUnresolved,
					Package: dep.name,
					Message: err.Error(),
				}}
				return nil
			}

			records[i] = record
			notes[i] = diags
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("scan aborted: %w", err)
	}

	result := &Result{
		ManifestPath: manifestPath,
		ProjectName:  project.Name,
		Packages:     make([]ecosystem.PackageRecord, 0, len(deps)),
		Diagnostics:  []ecosystem.Diagnostic{},
	}
	for i := range deps {
		if records[i] != nil {
			result.Packages = append(result.Packages, *records[i])
		}
		result.Diagnostics = append(result.Diagnostics, notes[i]...)
	}

	return result, nil
}

// collect lists the direct dependencies of the selected groups. Groups are
// visited in manifest order and names sorted; a name listed in several
// groups is kept once, under the first group.
func (s *Scanner) collect(project *PackageJSON) []dependency {
	seen := make(map[string]bool)
	var deps []dependency

	for _, group := range s.groups {
		ranges := project.Group(group)

		names := make([]string, 0, len(ranges))
		for name := range ranges {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			deps = append(deps, dependency{
				name:     name,
				declared: ranges[name],
				group:    group,
			})
		}
	}

	return deps
}

// resolve reads the installed manifest of one dependency
func resolve(projectDir string, dep dependency) (*ecosystem.PackageRecord, []ecosystem.Diagnostic, error) {
	installPath, err := ResolveInstallPath(projectDir, dep.name)
	if err != nil {
		return nil, nil, err
	}

	manifest, err := ParseInstalledManifest(filepath.Join(installPath, ManifestFile))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read manifest of %s: %w", dep.name, err)
	}

	record := &ecosystem.PackageRecord{
		PackageIdentity: ecosystem.PackageIdentity{
			Ecosystem: ecosystem.EcosystemNPM,
			Name:      dep.name,
			Version:   manifest.Version,
		},
		License:     ExtractLicense(manifest),
		InstallPath: installPath,
		Group:       dep.group,
	}

	var diags []ecosystem.Diagnostic
	if ok, checked := satisfies(dep.declared, manifest.Version); checked && !ok {
		diags = append(diags, ecosystem.Diagnostic{
			Kind:    ecosystem.DiagnosticVersionDrift,
			Package: dep.name,
			Message: fmt.Sprintf("installed version %s does not satisfy declared range %q", manifest.Version, dep.declared),
		})
	}

	return record, diags, nil
}

// satisfies checks an installed version against a declared range. checked is
// false when either side is not plain semver (tags, git URLs, workspace
// protocols, prereleases), in which case nothing can be said.
func satisfies(declared, installed string) (ok, checked bool) {
	constraint, err := semver.NewConstraint(declared)
	if err != nil {
		return false, false
	}

	version, err := semver.NewVersion(installed)
	if err != nil || version.Prerelease() != "" {
		return false, false
	}

	return constraint.Check(version), true
}
