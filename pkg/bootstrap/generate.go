// SPDX-License-Identifier: MPL-2.0

package bootstrap

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"text/template"

	"github.com/lithammer/dedent"
)

const (
	// EntryName is the archive member the interpreter runs when the archive is executed.
	EntryName = "__main__.py"
	// DefaultFunction is the main function name used when none is configured.
	DefaultFunction = "main"
)

var (
	// ErrInvalidIdentifier is returned when a module segment or function name is not a Python identifier.
	ErrInvalidIdentifier = errors.New("not a valid Python identifier")
	// ErrEmptyModule is returned when the main module path has no segments.
	ErrEmptyModule = errors.New("main module path is empty")

	identifierRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

	mainTemplate = template.Must(template.New(EntryName).Parse(strings.TrimLeft(dedent.Dedent(`
		{{- if .Guard -}}
		import sys
		v = tuple(sys.version_info[:3])
		if {{ .Guard }}:
		    # Print error message
		    sys.stderr.write("Python {0}.{1}.{2} is not supported.\n".format(*v))
		    sys.stderr.write("Supported versions: {{ .Range }}\n")
		    sys.exit(1)

		{{ end -}}
		# Run main
		from {{ .Module }} import {{ .Function }}
		{{ .Function }}()
	`), "\n")))
)

// IsIdentifier reports whether s is a valid Python identifier (ASCII only).
func IsIdentifier(s string) bool {
	return identifierRegex.MatchString(s)
}

// Options describes the bootstrap to generate.
type Options struct {
	// MainPath is the archive-relative path of the main module without extension,
	// including the archive root (e.g. "app/pkg/mod"). OS separators are accepted.
	MainPath string
	// Function is the zero-argument function to call. Empty means DefaultFunction.
	Function string
	// Requirement guards the interpreter version. Nil or unbounded means no guard.
	Requirement *Requirement
}

type templateData struct {
	Guard    string
	Range    string
	Module   string
	Function string
}

// ModuleReference converts an archive path such as "app/pkg/mod" into the dotted
// module reference "app.pkg.mod". Empty and "." segments are dropped; ".." is
// not an identifier and is rejected like any other invalid segment.
func ModuleReference(mainPath string) (string, error) {
	normalized := strings.ReplaceAll(mainPath, string(os.PathSeparator), "/")
	var segments []string
	for _, seg := range strings.Split(normalized, "/") {
		if seg == "" || seg == "." {
			continue
		}
		if !identifierRegex.MatchString(seg) {
			return "", fmt.Errorf("module segment %q of %q: %w", seg, mainPath, ErrInvalidIdentifier)
		}
		segments = append(segments, seg)
	}
	if len(segments) == 0 {
		return "", fmt.Errorf("%w: %q", ErrEmptyModule, mainPath)
	}
	return strings.Join(segments, "."), nil
}

// Generate renders the bootstrap script text.
func Generate(opts Options) (string, error) {
	module, err := ModuleReference(opts.MainPath)
	if err != nil {
		return "", err
	}

	fn := opts.Function
	if fn == "" {
		fn = DefaultFunction
	}
	if !identifierRegex.MatchString(fn) {
		return "", fmt.Errorf("main function %q: %w", fn, ErrInvalidIdentifier)
	}

	if err := opts.Requirement.Validate(); err != nil {
		return "", err
	}

	data := templateData{Module: module, Function: fn}
	if guard, ok := GuardExpression(opts.Requirement); ok {
		data.Guard = guard
		data.Range = opts.Requirement.String()
	}

	var sb strings.Builder
	if err := mainTemplate.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", EntryName, err)
	}
	return sb.String(), nil
}
