// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// ErrInvalidArchivePath is the sentinel error wrapped by InvalidArchivePathError.
var ErrInvalidArchivePath = errors.New("invalid archive path")

type (
	// ArchivePath is the name of a member inside a zip archive. It is always
	// relative, forward-slash separated, and never climbs above the archive root.
	ArchivePath string

	// InvalidArchivePathError is returned when an ArchivePath is empty, absolute,
	// or escapes the archive root.
	InvalidArchivePathError struct {
		Value  ArchivePath
		Reason string
	}
)

// NewArchivePath builds an ArchivePath from host path segments. Segments are
// joined, converted to forward slashes, and cleaned.
func NewArchivePath(elem ...string) ArchivePath {
	joined := filepath.ToSlash(filepath.Join(elem...))
	return ArchivePath(path.Clean(joined))
}

// String returns the string representation of the ArchivePath.
func (p ArchivePath) String() string { return string(p) }

// Validate returns an error if the path cannot be used as a zip member name.
func (p ArchivePath) Validate() error {
	s := string(p)
	switch {
	case strings.TrimSpace(s) == "":
		return &InvalidArchivePathError{Value: p, Reason: "must be non-empty"}
	case strings.Contains(s, `\`):
		return &InvalidArchivePathError{Value: p, Reason: "must use forward slashes"}
	case strings.HasPrefix(s, "/"):
		return &InvalidArchivePathError{Value: p, Reason: "must be relative"}
	}
	clean := path.Clean(s)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return &InvalidArchivePathError{Value: p, Reason: "escapes the archive root"}
	}
	return nil
}

// Error implements the error interface for InvalidArchivePathError.
func (e *InvalidArchivePathError) Error() string {
	return fmt.Sprintf("invalid archive path %q: %s", e.Value, e.Reason)
}

// Unwrap returns ErrInvalidArchivePath for errors.Is() compatibility.
func (e *InvalidArchivePathError) Unwrap() error { return ErrInvalidArchivePath }
