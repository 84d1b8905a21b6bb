// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/pyzbuild/pyz/pkg/manifest"
	"github.com/pyzbuild/pyz/pkg/types"
)

type initOptions struct {
	force  bool
	format string
	dir    string
}

func newInitCommand(app *App) *cobra.Command {
	opts := &initOptions{}

	initCmd := &cobra.Command{
		Use:   "init [name]",
		Short: "Create a starter build manifest",
		Long: `Create a starter pyz.cue (or pyz.yaml) that packages the modules under src/
and calls src/main.py's main function. The name sets the archive and
launcher file names and defaults to "app".`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := "app"
			if len(args) == 1 {
				name = args[0]
			}
			return runInit(app, name, opts)
		},
	}

	initCmd.Flags().BoolVarP(&opts.force, "force", "f", false, "overwrite an existing manifest")
	initCmd.Flags().StringVar(&opts.format, "format", "cue", "manifest format (cue, yaml)")
	initCmd.Flags().StringVarP(&opts.dir, "dir", "C", ".", "directory to write the manifest to")

	return initCmd
}

func runInit(app *App, name string, opts *initOptions) error {
	m := manifest.Starter(name)

	var (
		filename string
		content  string
	)
	switch opts.format {
	case "cue":
		filename = manifest.CUEFileName
		content = manifest.GenerateCUE(m)
	case "yaml":
		filename = manifest.YAMLFileName
		text, err := manifest.GenerateYAML(m)
		if err != nil {
			return err
		}
		content = text
	default:
		return &ExitError{Code: types.ExitUsage, Err: fmt.Errorf("unknown format %q: expected cue or yaml", opts.format)}
	}

	path := filepath.Join(opts.dir, filename)
	if exists, err := afero.Exists(app.Fs, path); err != nil {
		return fmt.Errorf("failed to check %s: %w", path, err)
	} else if exists && !opts.force {
		return &ExitError{Code: types.ExitUsage, Err: fmt.Errorf("file '%s' already exists. Use --force to overwrite", path)}
	}

	if err := afero.WriteFile(app.Fs, path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	fmt.Fprintf(app.stdout, "%s Created %s\n", SuccessStyle.Render("✓"), path)
	fmt.Fprintln(app.stdout)
	fmt.Fprintln(app.stdout, SubtitleStyle.Render("Next steps:"))
	fmt.Fprintln(app.stdout, "  1. Put your modules under src/ with a main() in src/main.py")
	fmt.Fprintln(app.stdout, "  2. Run 'pyz build' to produce "+m.Output)
	fmt.Fprintln(app.stdout, "  3. Run './"+name+"' to start the application")
	return nil
}
