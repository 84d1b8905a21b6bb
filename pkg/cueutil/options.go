// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultMaxFileSize bounds the size of a user CUE file.
const DefaultMaxFileSize int64 = 1 << 20

// ErrInvalidCUEPath is returned when a CUEPath is empty.
var ErrInvalidCUEPath = errors.New("invalid CUE path")

type (
	// CUEPath is a field path inside a CUE value in JSON-path notation,
	// such as "include[0].source".
	CUEPath string

	// Option configures ParseAndDecode.
	Option func(*options)

	options struct {
		filename    string
		maxFileSize int64
		concrete    bool
	}
)

// Validate rejects empty paths.
func (p CUEPath) Validate() error {
	if strings.TrimSpace(string(p)) == "" {
		return fmt.Errorf("%w: must be non-empty", ErrInvalidCUEPath)
	}
	return nil
}

// String returns the path text.
func (p CUEPath) String() string { return string(p) }

// WithFilename names the user file in error messages.
func WithFilename(name string) Option {
	return func(o *options) { o.filename = name }
}

// WithMaxFileSize overrides DefaultMaxFileSize.
func WithMaxFileSize(n int64) Option {
	return func(o *options) { o.maxFileSize = n }
}

// WithConcrete controls whether every field must resolve to a concrete value.
// Concrete validation is on by default.
func WithConcrete(concrete bool) Option {
	return func(o *options) { o.concrete = concrete }
}

func defaultOptions() options {
	return options{maxFileSize: DefaultMaxFileSize, concrete: true}
}
