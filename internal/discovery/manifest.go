package discovery

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tomoyayamashita/license-gate/internal/ecosystem"
)

// ManifestFile is the project and package manifest file name
const ManifestFile = "package.json"

// NodeModulesDir is the directory packages are installed into
const NodeModulesDir = "node_modules"

var (
	// ErrManifestNotFound is returned when no project manifest exists at or above the start directory
	ErrManifestNotFound = errors.New("package.json not found")

	// ErrPackageNotInstalled is returned when a dependency has no installed manifest
	ErrPackageNotInstalled = errors.New("package not installed")
)

// PackageJSON represents the structure of the project package.json
type PackageJSON struct {
	Name                 string            `json:"name"`
	Version              string            `json:"version"`
	Dependencies         map[string]string `json:"dependencies"`
	DevDependencies      map[string]string `json:"devDependencies"`
	OptionalDependencies map[string]string `json:"optionalDependencies"`
	PeerDependencies     map[string]string `json:"peerDependencies"`
}

// ParseManifest reads and parses a package.json file
func ParseManifest(path string) (*PackageJSON, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read package.json: %w", err)
	}

	var pkg PackageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return &pkg, nil
}

// InstalledManifest is the part of an installed package.json a check reads.
// Every other key is left undecoded, so a malformed dependency map inside
// a package cannot hide its license.
type InstalledManifest struct {
	Version  string          `json:"version"`
	License  json.RawMessage `json:"license"`
	Licenses json.RawMessage `json:"licenses"`
}

// ParseInstalledManifest reads the package.json of an installed dependency
func ParseInstalledManifest(path string) (*InstalledManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read package.json: %w", err)
	}

	var m InstalledManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return &m, nil
}

// Group returns the name -> version range mapping of one dependency group
func (p *PackageJSON) Group(group ecosystem.DependencyGroup) map[string]string {
	switch group {
	case ecosystem.GroupDependencies:
		return p.Dependencies
	case ecosystem.GroupDevDependencies:
		return p.DevDependencies
	case ecosystem.GroupOptionalDependencies:
		return p.OptionalDependencies
	case ecosystem.GroupPeerDependencies:
		return p.PeerDependencies
	}
	return nil
}

// FindManifest searches for package.json in dir and then in each parent directory
func FindManifest(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", dir, err)
	}

	for {
		path := filepath.Join(dir, ManifestFile)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w in %s or any parent directory", ErrManifestNotFound, dir)
		}
		dir = parent
	}
}

// ResolveInstallPath finds the installed directory of a package the way Node
// does: node_modules/<name> in projectDir, then in each parent directory.
// Scoped names ("@scope/name") map to nested directories. A name that would
// leave node_modules ("../x", absolute paths) is never installed.
func ResolveInstallPath(projectDir, name string) (string, error) {
	rel := filepath.FromSlash(name)
	if !filepath.IsLocal(rel) {
		return "", fmt.Errorf("%w: %s", ErrPackageNotInstalled, name)
	}

	dir := projectDir
	for {
		candidate := filepath.Join(dir, NodeModulesDir, rel)
		if info, err := os.Stat(filepath.Join(candidate, ManifestFile)); err == nil && !info.IsDir() {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w: %s", ErrPackageNotInstalled, name)
		}
		dir = parent
	}
}
