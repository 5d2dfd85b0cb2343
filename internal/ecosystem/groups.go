package ecosystem

import (
	"errors"
	"fmt"
)

// DependencyGroup names a dependency section of a project manifest
type DependencyGroup string

const (
	GroupDependencies         DependencyGroup = "dependencies"
	GroupDevDependencies      DependencyGroup = "devDependencies"
	GroupOptionalDependencies DependencyGroup = "optionalDependencies"
	GroupPeerDependencies     DependencyGroup = "peerDependencies"
)

// ErrUnknownDependencyGroup is returned for group names outside the four manifest sections
var ErrUnknownDependencyGroup = errors.New("unknown dependency group")

// AllGroups returns every dependency group in manifest order
func AllGroups() []DependencyGroup {
	return []DependencyGroup{
		GroupDependencies,
		GroupDevDependencies,
		GroupOptionalDependencies,
		GroupPeerDependencies,
	}
}

// ParseGroups validates group names. An empty list selects all groups.
// Duplicates are collapsed and the manifest order is kept.
func ParseGroups(names []string) ([]DependencyGroup, error) {
	if len(names) == 0 {
		return AllGroups(), nil
	}

	selected := make(map[DependencyGroup]bool, len(names))
	for _, name := range names {
		group := DependencyGroup(name)
		if !group.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownDependencyGroup, name)
		}
		selected[group] = true
	}

	groups := make([]DependencyGroup, 0, len(selected))
	for _, group := range AllGroups() {
		if selected[group] {
			groups = append(groups, group)
		}
	}
	return groups, nil
}

// Valid reports whether g is one of the known groups
func (g DependencyGroup) Valid() bool {
	switch g {
	case GroupDependencies, GroupDevDependencies, GroupOptionalDependencies, GroupPeerDependencies:
		return true
	}
	return false
}
