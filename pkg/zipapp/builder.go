// SPDX-License-Identifier: MPL-2.0

package zipapp

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pyzbuild/pyz/pkg/bootstrap"
	"github.com/pyzbuild/pyz/pkg/include"
	"github.com/pyzbuild/pyz/pkg/launcher"
	"github.com/pyzbuild/pyz/pkg/types"

	"github.com/charmbracelet/log"
	"github.com/klauspost/compress/flate"
	"github.com/spf13/afero"
)

// EntryName is the archive member the interpreter runs.
const EntryName = bootstrap.EntryName

// memberModTime is stamped on every member. It is the zip epoch.
var memberModTime = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

type (
	// Builder writes zip applications.
	Builder struct {
		fs     afero.Fs
		logger *log.Logger
	}

	// OutputError is returned when the archive or launcher file cannot be created.
	OutputError struct {
		Path string
		Err  error
	}

	// BuilderOption configures a Builder.
	BuilderOption func(*Builder)

	// Result describes a finished build.
	Result struct {
		// OutputPath is the archive that was written.
		OutputPath string
		// LauncherPath is the executable file, empty when no launcher was requested.
		// Equal to OutputPath in single-file launcher mode.
		LauncherPath string
		// Members lists the archive members in write order; EntryName is last.
		Members []types.ArchivePath
		// Bootstrap is the text written to EntryName.
		Bootstrap string
	}
)

// Error implements the error interface.
func (e *OutputError) Error() string {
	return fmt.Sprintf("failed to write %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying filesystem error.
func (e *OutputError) Unwrap() error { return e.Err }

// WithFs sets the filesystem includes are read from and the archive and
// launcher are written to.
func WithFs(fsys afero.Fs) BuilderOption {
	return func(b *Builder) { b.fs = fsys }
}

// WithLogger sets the logger used for progress output.
func WithLogger(logger *log.Logger) BuilderOption {
	return func(b *Builder) { b.logger = logger }
}

// NewBuilder creates a Builder over the OS filesystem with a discarding logger.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{}
	for _, opt := range opts {
		opt(b)
	}
	if b.fs == nil {
		b.fs = afero.NewOsFs()
	}
	if b.logger == nil {
		b.logger = log.New(io.Discard)
	}
	return b
}

// Build resolves, writes and optionally launches the archive described by req.
// A partially written archive is removed on failure. Nothing is removed when
// the output could not be opened.
func (b *Builder) Build(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	resolver := include.NewResolver(b.fs, req.BaseDir, req.Root())
	entries, err := resolver.ResolveAll(req.Includes)
	if err != nil {
		return nil, err
	}
	entries = b.withoutOutput(entries, req.OutputPath)
	if err := checkDuplicates(entries); err != nil {
		return nil, err
	}

	main, err := bootstrap.Generate(bootstrap.Options{
		MainPath:    req.MainPath(),
		Function:    req.MainFunction,
		Requirement: req.Requirement,
	})
	if err != nil {
		return nil, err
	}

	members, err := b.writeArchive(ctx, req, entries, main)
	if err != nil {
		return nil, err
	}

	result := &Result{OutputPath: req.OutputPath, Members: members, Bootstrap: main}
	b.logger.Info("archive written", "output", req.OutputPath, "members", len(members))

	if req.Launcher != nil {
		launcherPath, err := launcher.Write(b.fs, req.OutputPath, *req.Launcher)
		if err != nil {
			target := req.Launcher.OutputPath
			if target == "" {
				target = req.OutputPath
			}
			return nil, &OutputError{Path: target, Err: err}
		}
		result.LauncherPath = launcherPath
		b.logger.Info("launcher written", "path", launcherPath, "header", launcher.Header(*req.Launcher))
	}

	return result, nil
}

func (b *Builder) writeArchive(ctx context.Context, req Request, entries []include.Entry, main string) (members []types.ArchivePath, err error) {
	out, err := b.fs.OpenFile(req.OutputPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, &OutputError{Path: req.OutputPath, Err: err}
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close archive: %w", closeErr)
		}
		if err != nil {
			_ = b.fs.Remove(req.OutputPath)
		}
	}()

	level := req.Level()
	zw := zip.NewWriter(out)
	zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, level)
	})
	defer func() {
		if closeErr := zw.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to finalize archive: %w", closeErr)
		}
	}()

	members = make([]types.ArchivePath, 0, len(entries)+1)
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := b.addFile(zw, entry); err != nil {
			return nil, err
		}
		members = append(members, entry.ArchivePath)
		b.logger.Debug("added member", "member", entry.ArchivePath, "source", entry.Source)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	w, err := zw.CreateHeader(memberHeader(EntryName, 0o644))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", EntryName, err)
	}
	if _, err := io.WriteString(w, main); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", EntryName, err)
	}
	members = append(members, EntryName)
	b.logger.Debug("added member", "member", EntryName)

	return members, nil
}

func (b *Builder) addFile(zw *zip.Writer, entry include.Entry) error {
	src, err := b.fs.Open(string(entry.Source))
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", entry.Source, err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", entry.Source, err)
	}

	w, err := zw.CreateHeader(memberHeader(string(entry.ArchivePath), info.Mode().Perm()))
	if err != nil {
		return fmt.Errorf("failed to create archive member %s: %w", entry.ArchivePath, err)
	}
	if _, err := io.Copy(w, src); err != nil {
		return fmt.Errorf("failed to write archive member %s: %w", entry.ArchivePath, err)
	}
	return nil
}

func memberHeader(name string, perm os.FileMode) *zip.FileHeader {
	header := &zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: memberModTime,
	}
	header.SetMode(perm)
	return header
}

// withoutOutput drops the output archive itself when an include walks over it.
func (b *Builder) withoutOutput(entries []include.Entry, output string) []include.Entry {
	outAbs, err := filepath.Abs(output)
	if err != nil {
		return entries
	}
	kept := entries[:0]
	for _, e := range entries {
		if srcAbs, err := filepath.Abs(string(e.Source)); err == nil && srcAbs == outAbs {
			b.logger.Debug("skipping output archive found in include", "path", e.Source)
			continue
		}
		kept = append(kept, e)
	}
	return kept
}

func checkDuplicates(entries []include.Entry) error {
	seen := make(map[types.ArchivePath]types.FilesystemPath, len(entries))
	var errs []error
	for _, e := range entries {
		if prev, ok := seen[e.ArchivePath]; ok {
			errs = append(errs, fmt.Errorf("%w: %s from %s and %s", ErrDuplicateMember, e.ArchivePath, prev, e.Source))
			continue
		}
		seen[e.ArchivePath] = e.Source
	}
	return errors.Join(errs...)
}
