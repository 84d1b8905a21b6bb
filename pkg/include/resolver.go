// SPDX-License-Identifier: MPL-2.0

package include

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pyzbuild/pyz/pkg/types"

	"github.com/spf13/afero"
)

// ErrDirectoryRemap is the sentinel error wrapped by MappingError.
var ErrDirectoryRemap = errors.New("source is a directory and cannot be mapped")

type (
	// Entry is one concrete file to copy into the archive.
	Entry struct {
		// Source is the host path of the file, already joined with the base directory.
		Source types.FilesystemPath
		// ArchivePath is the member name, rooted at the archive root.
		ArchivePath types.ArchivePath
	}

	// MappingError is returned when a directory include asks for a destination
	// different from its source.
	MappingError struct {
		Source      types.FilesystemPath
		Destination types.FilesystemPath
	}

	// Resolver expands Specs against a base directory on a filesystem.
	Resolver struct {
		fs      afero.Fs
		baseDir string
		root    string
	}
)

// NewResolver creates a Resolver. Relative sources are resolved against baseDir
// and archive paths are prefixed with root. A nil fs selects the OS filesystem.
func NewResolver(fsys afero.Fs, baseDir, root string) *Resolver {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &Resolver{fs: fsys, baseDir: baseDir, root: root}
}

// Error implements the error interface.
func (e *MappingError) Error() string {
	return fmt.Sprintf("include %q -> %q: %v", e.Source, e.Destination, ErrDirectoryRemap)
}

// Unwrap returns ErrDirectoryRemap for errors.Is() compatibility.
func (e *MappingError) Unwrap() error { return ErrDirectoryRemap }

// Resolve expands spec into archive entries sorted by archive path.
func (r *Resolver) Resolve(spec Spec) ([]Entry, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	hostPath := r.hostPath(spec.Source())
	info, err := r.fs.Stat(hostPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat include source: %w", err)
	}

	if !info.IsDir() {
		entry, err := r.entry(hostPath, string(spec.Destination()))
		if err != nil {
			return nil, err
		}
		return []Entry{entry}, nil
	}

	if filepath.Clean(string(spec.Source())) != filepath.Clean(string(spec.Destination())) {
		return nil, &MappingError{Source: spec.Source(), Destination: spec.Destination()}
	}

	var entries []Entry
	err = afero.Walk(r.fs, hostPath, func(path string, fi os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if fi.IsDir() || !spec.Glob().Match(fi.Name()) {
			return nil
		}

		rel, err := filepath.Rel(hostPath, path)
		if err != nil {
			return fmt.Errorf("failed to get relative path: %w", err)
		}

		entry, err := r.entry(path, filepath.Join(string(spec.Source()), rel))
		if err != nil {
			return err
		}
		entries = append(entries, entry)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk include directory %s: %w", spec.Source(), err)
	}

	sortEntries(entries)
	return entries, nil
}

// ResolveAll resolves every spec in order and stops at the first failure.
// Entries keep the order of their specs; within one spec they are sorted.
func (r *Resolver) ResolveAll(specs []Spec) ([]Entry, error) {
	var all []Entry
	for _, spec := range specs {
		entries, err := r.Resolve(spec)
		if err != nil {
			return nil, err
		}
		all = append(all, entries...)
	}
	return all, nil
}

func (r *Resolver) hostPath(p types.FilesystemPath) string {
	if filepath.IsAbs(string(p)) || r.baseDir == "" {
		return filepath.Clean(string(p))
	}
	return filepath.Join(r.baseDir, string(p))
}

// entry builds an Entry and rejects destinations that climb out of the archive root.
func (r *Resolver) entry(hostPath, destination string) (Entry, error) {
	archivePath := types.NewArchivePath(r.root, destination)
	if err := archivePath.Validate(); err != nil {
		return Entry{}, err
	}
	if r.root != "" && r.root != "." && !strings.HasPrefix(string(archivePath), strings.Trim(r.root, "/")+"/") {
		return Entry{}, &types.InvalidArchivePathError{Value: archivePath, Reason: "escapes the archive root"}
	}
	return Entry{Source: types.FilesystemPath(hostPath), ArchivePath: archivePath}, nil
}

func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].ArchivePath < entries[j].ArchivePath
	})
}

// IsNotExist reports whether err was caused by a missing include source.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
