// SPDX-License-Identifier: MPL-2.0

package zipapp

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pyzbuild/pyz/pkg/bootstrap"
	"github.com/pyzbuild/pyz/pkg/include"
	"github.com/pyzbuild/pyz/pkg/launcher"
	"github.com/pyzbuild/pyz/pkg/types"

	"github.com/klauspost/compress/flate"
)

// DefaultArchiveRoot is the archive directory that holds every included file.
const DefaultArchiveRoot = "app"

var (
	// ErrInvalidRequest is the sentinel error wrapped by InvalidRequestError.
	ErrInvalidRequest = errors.New("invalid build request")
	// ErrDuplicateMember is returned when two includes map to the same archive member.
	ErrDuplicateMember = errors.New("duplicate archive member")
)

type (
	// Request is everything needed for one build. It is consumed by Builder.Build
	// and not retained.
	Request struct {
		// OutputPath is where the archive is written. Relative paths are resolved
		// against the process working directory.
		OutputPath string
		// BaseDir is the directory relative include sources are resolved against.
		// Empty means the process working directory.
		BaseDir string
		// MainModule is the main module path relative to the archive root, in OS
		// path form and without the ".py" extension (e.g. "pkg/cli").
		MainModule string
		// MainFunction is the zero-argument function to call. Empty means "main".
		MainFunction string
		// Includes lists every file or directory to copy into the archive.
		Includes []include.Spec
		// Requirement guards the interpreter version. Nil means no guard.
		Requirement *bootstrap.Requirement
		// Launcher makes the archive directly executable. Nil means a plain archive.
		Launcher *launcher.Spec
		// ArchiveRoot prefixes every included member. Empty means DefaultArchiveRoot.
		ArchiveRoot string
		// CompressionLevel is the deflate level (-2..9). Nil means flate.DefaultCompression.
		CompressionLevel *int
	}

	// InvalidRequestError is returned when a Request has invalid fields.
	// It wraps ErrInvalidRequest and collects field-level validation errors.
	InvalidRequestError struct {
		FieldErrors []error
	}
)

// Root returns the archive root with defaults applied.
func (r *Request) Root() string {
	root := strings.Trim(filepath.ToSlash(r.ArchiveRoot), "/")
	if root == "" {
		return DefaultArchiveRoot
	}
	return root
}

// Level returns the compression level with defaults applied.
func (r *Request) Level() int {
	if r.CompressionLevel == nil {
		return flate.DefaultCompression
	}
	return *r.CompressionLevel
}

// MainPath returns the archive path of the main module, archive root included.
func (r *Request) MainPath() string {
	return r.Root() + "/" + strings.TrimLeft(filepath.ToSlash(r.MainModule), "/")
}

// Validate checks every field that can be checked without touching the filesystem.
func (r *Request) Validate() error {
	var errs []error

	if err := types.FilesystemPath(r.OutputPath).Validate(); err != nil {
		errs = append(errs, fmt.Errorf("output: %w", err))
	}
	if strings.TrimSpace(r.MainModule) == "" {
		errs = append(errs, errors.New("main module must be set"))
	} else if slices.Contains(strings.Split(filepath.ToSlash(r.MainModule), "/"), "..") {
		errs = append(errs, fmt.Errorf("main module %q must stay inside the archive root", r.MainModule))
	} else if _, err := bootstrap.ModuleReference(r.MainPath()); err != nil {
		errs = append(errs, fmt.Errorf("main module: %w", err))
	}
	if err := types.ArchivePath(r.Root()).Validate(); err != nil {
		errs = append(errs, fmt.Errorf("archive root: %w", err))
	}
	if lvl := r.Level(); lvl < flate.HuffmanOnly || lvl > flate.BestCompression {
		errs = append(errs, fmt.Errorf("compression level %d out of range [%d, %d]", lvl, flate.HuffmanOnly, flate.BestCompression))
	}
	for _, spec := range r.Includes {
		if err := spec.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := r.Requirement.Validate(); err != nil {
		errs = append(errs, err)
	}
	if r.Launcher != nil {
		if err := r.Launcher.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("launcher: %w", err))
		}
		if r.Launcher.OutputPath != "" && filepath.Clean(r.Launcher.OutputPath) == filepath.Clean(r.OutputPath) {
			errs = append(errs, errors.New("launcher output must differ from the archive output"))
		}
	}

	if len(errs) > 0 {
		return &InvalidRequestError{FieldErrors: errs}
	}
	return nil
}

// Error implements the error interface.
func (e *InvalidRequestError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%v: %s", ErrInvalidRequest, strings.Join(msgs, "; "))
}

// Unwrap returns the sentinel and every field error for errors.Is/As.
func (e *InvalidRequestError) Unwrap() []error {
	return append([]error{ErrInvalidRequest}, e.FieldErrors...)
}
