// SPDX-License-Identifier: MPL-2.0

// Package launcher turns a zip archive into a directly executable file by
// prefixing it with a shebang line.
//
// Zip readers locate the central directory from the end of the file, so a
// header in front of the archive does not stop the interpreter or any other
// zip tool from opening it. The archive bytes are copied as-is.
package launcher

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// DefaultShebang is the interpreter used when a Spec does not name one.
const DefaultShebang = "/usr/bin/env python"

// executableMode is applied to every launcher file.
const executableMode os.FileMode = 0o755

// Spec describes how to make an archive executable.
type Spec struct {
	// OutputPath is a second file to write the launcher to. Empty means the
	// archive itself is rewritten with the header in front.
	OutputPath string
	// Shebang is the interpreter command without the leading "#!" and without a
	// trailing newline. Empty means DefaultShebang.
	Shebang string
}

// Header returns the header line, "#!" followed by the shebang and a newline.
func Header(spec Spec) string {
	shebang := strings.TrimSpace(spec.Shebang)
	if shebang == "" {
		shebang = DefaultShebang
	}
	return "#!" + shebang + "\n"
}

// Validate rejects shebangs that would break the single-line header.
func (s Spec) Validate() error {
	if strings.ContainsAny(s.Shebang, "\r\n") {
		return fmt.Errorf("shebang %q must be a single line", s.Shebang)
	}
	if strings.HasPrefix(strings.TrimSpace(s.Shebang), "#!") {
		return fmt.Errorf("shebang %q must not include the leading #!", s.Shebang)
	}
	return nil
}

// Write produces the launcher for the archive at archivePath on fsys and
// returns its path. In single-file mode the archive is replaced by header +
// archive through a temp file in the same directory and a rename.
func Write(fsys afero.Fs, archivePath string, spec Spec) (string, error) {
	if err := spec.Validate(); err != nil {
		return "", err
	}

	if spec.OutputPath != "" {
		if err := writeLauncher(fsys, spec.OutputPath, archivePath, Header(spec)); err != nil {
			return "", err
		}
		return spec.OutputPath, nil
	}

	tmp, err := afero.TempFile(fsys, filepath.Dir(archivePath), "."+filepath.Base(archivePath)+".*")
	if err != nil {
		return "", fmt.Errorf("failed to create launcher temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if err := tmp.Close(); err != nil {
		_ = fsys.Remove(tmpPath)
		return "", fmt.Errorf("failed to close launcher temp file: %w", err)
	}

	if err := writeLauncher(fsys, tmpPath, archivePath, Header(spec)); err != nil {
		_ = fsys.Remove(tmpPath)
		return "", err
	}
	if err := fsys.Rename(tmpPath, archivePath); err != nil {
		_ = fsys.Remove(tmpPath)
		return "", fmt.Errorf("failed to replace archive with launcher: %w", err)
	}
	return archivePath, nil
}

// writeLauncher writes header followed by the bytes of archivePath into dst.
func writeLauncher(fsys afero.Fs, dst, archivePath, header string) error {
	src, err := fsys.Open(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer src.Close()

	out, err := fsys.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, executableMode)
	if err != nil {
		return fmt.Errorf("failed to create launcher: %w", err)
	}
	if _, err := io.WriteString(out, header); err != nil {
		out.Close()
		return fmt.Errorf("failed to write launcher header: %w", err)
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy archive into launcher: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close launcher: %w", err)
	}
	// OpenFile only applies the mode to new files.
	if err := fsys.Chmod(dst, executableMode); err != nil {
		return fmt.Errorf("failed to mark launcher executable: %w", err)
	}
	return nil
}
