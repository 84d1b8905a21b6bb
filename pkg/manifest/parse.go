// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pyzbuild/pyz/pkg/cueutil"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Manifest file names, in lookup order.
const (
	CUEFileName  = "pyz.cue"
	YAMLFileName = "pyz.yaml"
	YMLFileName  = "pyz.yml"
)

// ErrNotFound is returned by Find when a directory holds no manifest.
var ErrNotFound = errors.New("no pyz manifest found")

//go:embed pyz_schema.cue
var manifestSchema []byte

// FileNames lists the names Find looks for.
func FileNames() []string {
	return []string{CUEFileName, YAMLFileName, YMLFileName}
}

// Find returns the path of the manifest in dir.
func Find(fsys afero.Fs, dir string) (string, error) {
	for _, name := range FileNames() {
		p := filepath.Join(dir, name)
		info, err := fsys.Stat(p)
		if err == nil && !info.IsDir() {
			return p, nil
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("failed to check %s: %w", p, err)
		}
	}
	return "", fmt.Errorf("%w in %s (looked for %s)", ErrNotFound, dir, strings.Join(FileNames(), ", "))
}

// Load reads and validates the manifest at path. The format follows the extension.
func Load(fsys afero.Fs, path string) (*Manifest, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest at %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data, path)
	default:
		return ParseCUE(data, path)
	}
}

// ParseCUE parses and validates CUE manifest content.
func ParseCUE(data []byte, path string) (*Manifest, error) {
	result, err := cueutil.ParseAndDecode[Manifest](manifestSchema, data, "#Manifest", cueutil.WithFilename(path))
	if err != nil {
		return nil, err
	}
	return finish(result.Value, path)
}

// ParseYAML parses and validates YAML manifest content. Unknown keys are rejected.
func ParseYAML(data []byte, path string) (*Manifest, error) {
	if err := cueutil.CheckFileSize(data, cueutil.DefaultMaxFileSize, path); err != nil {
		return nil, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s: manifest is empty", path)
		}
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return finish(&m, path)
}

func finish(m *Manifest, path string) (*Manifest, error) {
	m.Path = path
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}
