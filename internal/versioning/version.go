// Package versioning bumps the semantic version declared in a document's
// frontmatter and cascades the bump to its paired translation.
package versioning

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/starford/docwarden/internal/apperr"
)

// Kind selects which version component to increment.
type Kind string

const (
	Major Kind = "major"
	Minor Kind = "minor"
	Patch Kind = "patch"
)

// ParseKind validates a bump kind name.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(s)); k {
	case Major, Minor, Patch:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q (want major, minor or patch)", apperr.ErrInvalidKind, s)
	}
}

var versionRe = regexp.MustCompile(`^(\d+)\.(\d+)\.(\d+)$`)

// Version is a MAJOR.MINOR.PATCH triple.
type Version struct {
	Major, Minor, Patch int
}

// ParseVersion parses s, which must match MAJOR.MINOR.PATCH exactly.
func ParseVersion(s string) (Version, error) {
	m := versionRe.FindStringSubmatch(s)
	if m == nil {
		return Version{}, fmt.Errorf("%w: %q", apperr.ErrInvalidVersion, s)
	}
	var parts [3]int
	for i := range parts {
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return Version{}, fmt.Errorf("%w: %q: %v", apperr.ErrInvalidVersion, s, err)
		}
		parts[i] = n
	}
	return Version{Major: parts[0], Minor: parts[1], Patch: parts[2]}, nil
}

// Bump increments one component and zeroes the ones to its right.
func (v Version) Bump(k Kind) Version {
	switch k {
	case Major:
		return Version{Major: v.Major + 1}
	case Minor:
		return Version{Major: v.Major, Minor: v.Minor + 1}
	default:
		return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch + 1}
	}
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}
