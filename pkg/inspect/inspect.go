// SPDX-License-Identifier: MPL-2.0

// Package inspect reads back built archives: the launcher header, the member
// list and the bootstrap script.
package inspect

import (
	"archive/zip"
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pyzbuild/pyz/pkg/bootstrap"

	"github.com/ddddddO/gtree"
)

// ErrNoBootstrap is returned by Archive.Bootstrap when the archive has no __main__.py.
var ErrNoBootstrap = errors.New("archive has no " + bootstrap.EntryName)

type (
	// Archive is an opened zip application.
	Archive struct {
		Path string
		// Shebang is the launcher interpreter without "#!", empty for plain archives.
		Shebang string
		Members []Member

		bootstrap *string
	}

	// Member is one file in the archive.
	Member struct {
		Name           string
		Size           uint64
		CompressedSize uint64
		Method         uint16
	}
)

// Open reads the archive at path. Launcher-prefixed archives are accepted.
func Open(path string) (*Archive, error) {
	shebang, err := readShebang(path)
	if err != nil {
		return nil, err
	}

	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", path, err)
	}
	defer zr.Close()

	a := &Archive{Path: path, Shebang: shebang, Members: make([]Member, 0, len(zr.File))}
	for _, f := range zr.File {
		a.Members = append(a.Members, Member{
			Name:           f.Name,
			Size:           f.UncompressedSize64,
			CompressedSize: f.CompressedSize64,
			Method:         f.Method,
		})
		if f.Name != bootstrap.EntryName {
			continue
		}
		text, err := readMember(f)
		if err != nil {
			return nil, err
		}
		a.bootstrap = &text
	}
	return a, nil
}

// Bootstrap returns the text of __main__.py.
func (a *Archive) Bootstrap() (string, error) {
	if a.bootstrap == nil {
		return "", fmt.Errorf("%s: %w", a.Path, ErrNoBootstrap)
	}
	return *a.bootstrap, nil
}

// Names returns the member names in archive order.
func (a *Archive) Names() []string {
	names := make([]string, len(a.Members))
	for i, m := range a.Members {
		names[i] = m.Name
	}
	return names
}

// MethodName names a zip compression method.
func (m Member) MethodName() string {
	switch m.Method {
	case zip.Store:
		return "store"
	case zip.Deflate:
		return "deflate"
	default:
		return fmt.Sprintf("method(%d)", m.Method)
	}
}

// Tree writes names as a directory tree under a root labelled rootName.
func Tree(w io.Writer, rootName string, names []string) error {
	root := gtree.NewRoot(rootName)
	for _, name := range names {
		node := root
		for _, part := range strings.Split(strings.Trim(name, "/"), "/") {
			if part == "" {
				continue
			}
			node = node.Add(part)
		}
	}
	if err := gtree.OutputFromRoot(w, root); err != nil {
		return fmt.Errorf("failed to render tree: %w", err)
	}
	return nil
}

func readShebang(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open archive %s: %w", path, err)
	}
	defer f.Close()

	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	if !strings.HasPrefix(line, "#!") || !strings.HasSuffix(line, "\n") {
		return "", nil
	}
	return strings.TrimSpace(strings.TrimPrefix(line, "#!")), nil
}

func readMember(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", f.Name, err)
	}
	defer rc.Close()

	b, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", f.Name, err)
	}
	return string(b), nil
}
