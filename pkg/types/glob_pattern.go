// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrInvalidGlobPattern is the sentinel error wrapped by InvalidGlobPatternError.
var ErrInvalidGlobPattern = errors.New("invalid glob pattern")

type (
	// GlobPattern is a shell-style wildcard matched against a file's base name.
	// Matching is case-sensitive and never crosses a path separator. Character
	// classes are negated with either "[!...]" or "[^...]".
	GlobPattern string

	// InvalidGlobPatternError is returned when a GlobPattern is empty, contains
	// a path separator, or is syntactically malformed.
	InvalidGlobPatternError struct {
		Value GlobPattern
		Err   error
	}
)

// String returns the string representation of the GlobPattern.
func (g GlobPattern) String() string { return string(g) }

// Validate returns an error if the pattern can never be matched against a base name.
func (g GlobPattern) Validate() error {
	s := string(g)
	if strings.TrimSpace(s) == "" {
		return &InvalidGlobPatternError{Value: g}
	}
	if strings.ContainsAny(s, "/") {
		return &InvalidGlobPatternError{Value: g, Err: errors.New("pattern applies to file names only")}
	}
	if !doublestar.ValidatePattern(s) {
		return &InvalidGlobPatternError{Value: g, Err: doublestar.ErrBadPattern}
	}
	return nil
}

// Match reports whether name matches the pattern. A malformed pattern never matches.
func (g GlobPattern) Match(name string) bool {
	ok, err := doublestar.Match(string(g), name)
	return err == nil && ok
}

// Error implements the error interface for InvalidGlobPatternError.
func (e *InvalidGlobPatternError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid glob pattern %q: %v", e.Value, e.Err)
	}
	return fmt.Sprintf("invalid glob pattern %q: must be non-empty", e.Value)
}

// Unwrap returns ErrInvalidGlobPattern for errors.Is() compatibility.
func (e *InvalidGlobPatternError) Unwrap() error { return ErrInvalidGlobPattern }
