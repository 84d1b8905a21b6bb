// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Starter returns a manifest that packages every module under src and runs
// src/main.py's main function.
func Starter(name string) *Manifest {
	exclusive := true
	return &Manifest{
		Output:   name + ".pyz",
		Main:     "src/main",
		Function: "main",
		Include:  []Include{{Source: "src"}},
		Python:   &Python{Minimum: "3.8", ExclusiveMaximum: &exclusive},
		Launcher: &Launcher{Output: name},
	}
}

// GenerateCUE renders m as pyz.cue text.
func GenerateCUE(m *Manifest) string {
	var sb strings.Builder

	sb.WriteString("// pyz build manifest\n\n")
	fmt.Fprintf(&sb, "output: %q\n", m.Output)
	fmt.Fprintf(&sb, "main:   %q\n", m.Main)
	if m.Function != "" {
		fmt.Fprintf(&sb, "function: %q\n", m.Function)
	}
	if m.ArchiveRoot != "" {
		fmt.Fprintf(&sb, "archive_root: %q\n", m.ArchiveRoot)
	}
	if m.CompressionLevel != nil {
		fmt.Fprintf(&sb, "compression_level: %d\n", *m.CompressionLevel)
	}

	sb.WriteString("\ninclude: [\n")
	for _, inc := range m.Include {
		fmt.Fprintf(&sb, "\t{source: %q", inc.Source)
		if inc.Destination != "" {
			fmt.Fprintf(&sb, ", destination: %q", inc.Destination)
		}
		if inc.Glob != "" {
			fmt.Fprintf(&sb, ", glob: %q", inc.Glob)
		}
		sb.WriteString("},\n")
	}
	sb.WriteString("]\n")

	if p := m.Python; p != nil {
		sb.WriteString("\npython: {\n")
		if p.Minimum != "" {
			fmt.Fprintf(&sb, "\tminimum: %q\n", p.Minimum)
		}
		if p.Maximum != "" {
			fmt.Fprintf(&sb, "\tmaximum: %q\n", p.Maximum)
		}
		if p.ExclusiveMaximum != nil {
			fmt.Fprintf(&sb, "\texclusive_maximum: %t\n", *p.ExclusiveMaximum)
		}
		sb.WriteString("}\n")
	}

	if l := m.Launcher; l != nil {
		sb.WriteString("\nlauncher: {\n")
		if l.Output != "" {
			fmt.Fprintf(&sb, "\toutput: %q\n", l.Output)
		}
		if l.Shebang != "" {
			fmt.Fprintf(&sb, "\tshebang: %q\n", l.Shebang)
		}
		sb.WriteString("}\n")
	}

	return sb.String()
}

// GenerateYAML renders m as pyz.yaml text.
func GenerateYAML(m *Manifest) (string, error) {
	out, err := yaml.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("failed to encode manifest: %w", err)
	}
	return string(out), nil
}
