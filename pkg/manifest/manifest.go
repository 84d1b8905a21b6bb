// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"fmt"
	"path/filepath"

	"github.com/pyzbuild/pyz/pkg/bootstrap"
	"github.com/pyzbuild/pyz/pkg/include"
	"github.com/pyzbuild/pyz/pkg/launcher"
	"github.com/pyzbuild/pyz/pkg/zipapp"
)

type (
	// Manifest is a decoded pyz.cue or pyz.yaml file.
	Manifest struct {
		Output           string    `json:"output" yaml:"output" validate:"required"`
		Main             string    `json:"main" yaml:"main" validate:"required"`
		Function         string    `json:"function,omitempty" yaml:"function,omitempty" validate:"omitempty,pyident"`
		ArchiveRoot      string    `json:"archive_root,omitempty" yaml:"archive_root,omitempty" validate:"omitempty,archivepath"`
		CompressionLevel *int      `json:"compression_level,omitempty" yaml:"compression_level,omitempty" validate:"omitempty,gte=-2,lte=9"`
		Include          []Include `json:"include" yaml:"include" validate:"required,min=1,dive"`
		Python           *Python   `json:"python,omitempty" yaml:"python,omitempty"`
		Launcher         *Launcher `json:"launcher,omitempty" yaml:"launcher,omitempty"`

		// Path is the file the manifest was read from. Not part of the file format.
		Path string `json:"-" yaml:"-"`
	}

	// Include is one include entry: a source with optional destination and glob.
	Include struct {
		Source      string `json:"source" yaml:"source" validate:"required"`
		Destination string `json:"destination,omitempty" yaml:"destination,omitempty"`
		Glob        string `json:"glob,omitempty" yaml:"glob,omitempty" validate:"omitempty,glob"`
	}

	// Python is the supported interpreter range.
	Python struct {
		Minimum string `json:"minimum,omitempty" yaml:"minimum,omitempty" validate:"omitempty,pyversion"`
		Maximum string `json:"maximum,omitempty" yaml:"maximum,omitempty" validate:"omitempty,pyversion"`
		// ExclusiveMaximum defaults to true when omitted.
		ExclusiveMaximum *bool `json:"exclusive_maximum,omitempty" yaml:"exclusive_maximum,omitempty"`
	}

	// Launcher asks for a shebang-prefixed executable.
	Launcher struct {
		Output  string `json:"output,omitempty" yaml:"output,omitempty"`
		Shebang string `json:"shebang,omitempty" yaml:"shebang,omitempty" validate:"omitempty,excludesall=\r\n"`
	}
)

// Specs converts the include entries.
func (m *Manifest) Specs() []include.Spec {
	specs := make([]include.Spec, 0, len(m.Include))
	for _, inc := range m.Include {
		specs = append(specs, include.NewSpec(inc.Source,
			include.WithDestination(inc.Destination),
			include.WithGlob(inc.Glob)))
	}
	return specs
}

// Requirement converts the python block. It returns nil when no bound is set.
func (p *Python) Requirement() (*bootstrap.Requirement, error) {
	if p == nil || (p.Minimum == "" && p.Maximum == "") {
		return nil, nil
	}
	var minimum, maximum *bootstrap.Version
	if p.Minimum != "" {
		v, err := bootstrap.ParseVersion(p.Minimum)
		if err != nil {
			return nil, fmt.Errorf("python.minimum: %w", err)
		}
		minimum = &v
	}
	if p.Maximum != "" {
		v, err := bootstrap.ParseVersion(p.Maximum)
		if err != nil {
			return nil, fmt.Errorf("python.maximum: %w", err)
		}
		maximum = &v
	}
	req := bootstrap.NewRequirement(minimum, maximum)
	if p.ExclusiveMaximum != nil {
		req.ExclusiveMaximum = *p.ExclusiveMaximum
	}
	return req, nil
}

// Request builds a zipapp.Request with every path resolved against baseDir,
// normally the directory holding the manifest.
func (m *Manifest) Request(baseDir string) (zipapp.Request, error) {
	req, err := m.Python.Requirement()
	if err != nil {
		return zipapp.Request{}, err
	}

	out := zipapp.Request{
		OutputPath:       resolve(baseDir, m.Output),
		BaseDir:          baseDir,
		MainModule:       filepath.FromSlash(m.Main),
		MainFunction:     m.Function,
		Includes:         m.Specs(),
		Requirement:      req,
		ArchiveRoot:      m.ArchiveRoot,
		CompressionLevel: m.CompressionLevel,
	}
	if m.Launcher != nil {
		out.Launcher = &launcher.Spec{Shebang: m.Launcher.Shebang}
		if m.Launcher.Output != "" {
			out.Launcher.OutputPath = resolve(baseDir, m.Launcher.Output)
		}
	}
	return out, nil
}

// Dir returns the directory of the file the manifest was read from.
func (m *Manifest) Dir() string {
	if m.Path == "" {
		return ""
	}
	return filepath.Dir(m.Path)
}

func resolve(baseDir, p string) string {
	p = filepath.FromSlash(p)
	if baseDir == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(baseDir, p)
}
