// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue/errors"
)

// ValidationError is a single problem found in a user file.
type ValidationError struct {
	FilePath string
	Path     CUEPath
	Message  string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", e.FilePath, e.Path, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.FilePath, e.Message)
}

// FormatError rewrites a CUE error as "<file>: <json-path>: <message>" lines.
// Non-CUE errors are wrapped with the file name.
func FormatError(err error, filePath string) error {
	if err == nil {
		return nil
	}

	cueErrors := errors.Errors(err)
	if len(cueErrors) == 0 {
		return fmt.Errorf("%s: %w", filePath, err)
	}

	found := make([]*ValidationError, 0, len(cueErrors))
	for _, e := range cueErrors {
		p := formatPath(errors.Path(e))
		format, args := e.Msg()
		found = append(found, &ValidationError{
			FilePath: filePath,
			Path:     CUEPath(p),
			Message:  fmt.Sprintf(format, args...),
		})
	}

	if len(found) == 1 {
		return found[0]
	}
	lines := make([]string, len(found))
	for i, v := range found {
		if v.Path != "" {
			lines[i] = fmt.Sprintf("%s: %s", v.Path, v.Message)
		} else {
			lines[i] = v.Message
		}
	}
	return fmt.Errorf("%s: validation failed:\n  %s", filePath, strings.Join(lines, "\n  "))
}

// formatPath turns ["include", "0", "glob"] into "include[0].glob".
func formatPath(path []string) string {
	var b strings.Builder
	for i, part := range path {
		if i > 0 && isIndex(part) {
			b.WriteString("[" + part + "]")
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	return b.String()
}

func isIndex(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// CheckFileSize fails when data is larger than maxSize bytes.
func CheckFileSize(data []byte, maxSize int64, filename string) error {
	if int64(len(data)) > maxSize {
		return fmt.Errorf("%s: file size %d bytes exceeds maximum %d bytes", filename, len(data), maxSize)
	}
	return nil
}
