// SPDX-License-Identifier: MPL-2.0

package bootstrap

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// ErrInvalidVersion is returned when a version string cannot be parsed.
var ErrInvalidVersion = errors.New("invalid interpreter version")

// Version is an interpreter version as (major, minor, patch).
type Version struct {
	Major int
	Minor int
	Patch int
}

// ParseVersion parses "3", "3.8", "3.8.1" or the same with a leading "v".
// Missing components default to zero. Pre-release and build suffixes are rejected.
func ParseVersion(s string) (Version, error) {
	norm := strings.TrimSpace(s)
	if !strings.HasPrefix(norm, "v") {
		norm = "v" + norm
	}
	if !semver.IsValid(norm) || semver.Prerelease(norm) != "" || semver.Build(norm) != "" {
		return Version{}, fmt.Errorf("%w: %q", ErrInvalidVersion, s)
	}

	parts := strings.Split(strings.TrimPrefix(semver.Canonical(norm), "v"), ".")
	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return Version{}, fmt.Errorf("%w: %q", ErrInvalidVersion, s)
		}
		nums[i] = n
	}
	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// MustParseVersion is like ParseVersion but panics on error. Intended for tests and constants.
func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Compare returns -1, 0 or 1 as v is less than, equal to, or greater than other.
func (v Version) Compare(other Version) int {
	for _, d := range [...]int{v.Major - other.Major, v.Minor - other.Minor, v.Patch - other.Patch} {
		switch {
		case d < 0:
			return -1
		case d > 0:
			return 1
		}
	}
	return 0
}

// String returns the dotted form, e.g. "3.8.1".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Tuple returns the Python tuple literal, e.g. "(3, 8, 1)".
func (v Version) Tuple() string {
	return fmt.Sprintf("(%d, %d, %d)", v.Major, v.Minor, v.Patch)
}
