package ecosystem

// EcosystemID represents a package ecosystem identifier
type EcosystemID string

const (
	EcosystemNPM EcosystemID = "npm"
)

// UnknownLicense is recorded when a package declares no license at all
const UnknownLicense = "UNKNOWN"

// PackageIdentity represents a unique package identification
type PackageIdentity struct {
	Ecosystem EcosystemID `json:"ecosystem"`
	Name      string      `json:"name"`
	Version   string      `json:"version"`
}

// String returns a string representation of the package identity
func (p PackageIdentity) String() string {
	return string(p.Ecosystem) + ":" + p.Name + "@" + p.Version
}

// PackageRecord is an installed direct dependency together with its declared license.
// Records are built by discovery and only read afterwards.
type PackageRecord struct {
	PackageIdentity
	License     string          `json:"license"`
	InstallPath string          `json:"install_path"`
	Group       DependencyGroup `json:"group,omitempty"`
}

// HasUnknownLicense reports whether the package declared no license
func (r PackageRecord) HasUnknownLicense() bool {
	return r.License == UnknownLicense
}

// DiagnosticKind tells apart the notices a check can emit. It doubles as the
// log event name.
type DiagnosticKind string

const (
	// DiagnosticUnresolved marks a package that could not be read from disk
	DiagnosticUnresolved DiagnosticKind = "package_unresolved"
	// DiagnosticVersionDrift marks an installed version outside the declared range
	DiagnosticVersionDrift DiagnosticKind = "version_drift"
	// DiagnosticUnknownLicense marks a package that declares no license
	DiagnosticUnknownLicense DiagnosticKind = "license_unknown"
)

// Diagnostic is a non-fatal notice about a single package
type Diagnostic struct {
	Kind    DiagnosticKind `json:"kind"`
	Package string         `json:"package"`
	Message string         `json:"message"`
}
