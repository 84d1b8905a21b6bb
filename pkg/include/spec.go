// SPDX-License-Identifier: MPL-2.0

package include

import (
	"errors"
	"fmt"

	"github.com/pyzbuild/pyz/pkg/types"
)

// DefaultGlob is the file name filter applied to directory includes when none is given.
const DefaultGlob types.GlobPattern = "*.py"

// ErrInvalidSpec is the sentinel error wrapped by InvalidSpecError.
var ErrInvalidSpec = errors.New("invalid include specification")

type (
	// Spec is an immutable request to copy one file or a filtered directory
	// subtree into the archive. Build one with NewSpec.
	Spec struct {
		source      types.FilesystemPath
		destination types.FilesystemPath
		glob        types.GlobPattern
	}

	// SpecOption customizes a Spec during construction.
	SpecOption func(*Spec)

	// InvalidSpecError is returned by Spec.Validate and collects every field problem.
	InvalidSpecError struct {
		Source      types.FilesystemPath
		FieldErrors []error
	}
)

// NewSpec creates a Spec for source. The destination defaults to source and the
// glob defaults to DefaultGlob.
func NewSpec(source string, opts ...SpecOption) Spec {
	s := Spec{
		source:      types.FilesystemPath(source),
		destination: types.FilesystemPath(source),
		glob:        DefaultGlob,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithDestination sets the archive-relative destination. An empty value keeps the default.
func WithDestination(destination string) SpecOption {
	return func(s *Spec) {
		if destination != "" {
			s.destination = types.FilesystemPath(destination)
		}
	}
}

// WithGlob sets the file name filter for directory includes. An empty value keeps the default.
func WithGlob(glob string) SpecOption {
	return func(s *Spec) {
		if glob != "" {
			s.glob = types.GlobPattern(glob)
		}
	}
}

// Source returns the host path of the file or directory to include.
func (s Spec) Source() types.FilesystemPath { return s.source }

// Destination returns the archive-relative destination of the include.
func (s Spec) Destination() types.FilesystemPath { return s.destination }

// Glob returns the base-name filter used for directory includes.
func (s Spec) Glob() types.GlobPattern { return s.glob }

// String renders the spec in the same source[:destination[:glob]] form the CLI accepts.
func (s Spec) String() string {
	return fmt.Sprintf("%s:%s:%s", s.source, s.destination, s.glob)
}

// Validate checks the fields that can be checked without touching the filesystem.
func (s Spec) Validate() error {
	var errs []error
	if err := s.source.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := s.destination.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := s.glob.Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return &InvalidSpecError{Source: s.source, FieldErrors: errs}
	}
	return nil
}

// Error implements the error interface.
func (e *InvalidSpecError) Error() string {
	return fmt.Sprintf("invalid include %q: %v", e.Source, errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidSpec for errors.Is() compatibility.
func (e *InvalidSpecError) Unwrap() error { return ErrInvalidSpec }
