// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pyzbuild/pyz/internal/issue"
	"github.com/pyzbuild/pyz/pkg/inspect"
	"github.com/pyzbuild/pyz/pkg/types"
)

type inspectOptions struct {
	tree      bool
	bootstrap bool
}

func newInspectCommand(app *App) *cobra.Command {
	opts := &inspectOptions{}

	inspectCmd := &cobra.Command{
		Use:   "inspect <archive>",
		Short: "Show the contents of a zip application",
		Long: `Show the members of a zip application with their sizes and compression.

Launcher-prefixed archives are accepted; the shebang line is reported.`,
		Example: `  pyz inspect app.pyz
  pyz inspect app.pyz --tree
  pyz inspect ./tool --bootstrap`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(app.stdout, args[0], opts)
		},
	}

	inspectCmd.Flags().BoolVar(&opts.tree, "tree", false, "show members as a directory tree")
	inspectCmd.Flags().BoolVar(&opts.bootstrap, "bootstrap", false, "print the generated __main__.py")

	return inspectCmd
}

func runInspect(w io.Writer, path string, opts *inspectOptions) error {
	archive, err := inspect.Open(path)
	if err != nil {
		return &ExitError{
			Code: types.ExitFailure,
			Err: issue.NewErrorContext().
				WithOperation("inspect archive").
				WithResource(path).
				WithSuggestion("Check that the file is a zip application built by pyz").
				Wrap(err).
				BuildError(),
		}
	}

	if opts.bootstrap {
		text, err := archive.Bootstrap()
		if err != nil {
			return err
		}
		fmt.Fprint(w, text)
		return nil
	}

	fmt.Fprintln(w, TitleStyle.Render(archive.Path))
	if archive.Shebang != "" {
		fmt.Fprintf(w, "%s #!%s\n", keyStyle.Render("launcher:"), archive.Shebang)
	}
	fmt.Fprintln(w)

	if opts.tree {
		return inspect.Tree(w, filepath.Base(archive.Path), archive.Names())
	}

	width := 0
	for _, m := range archive.Members {
		width = max(width, len(m.Name))
	}
	var total, compressed uint64
	for _, m := range archive.Members {
		fmt.Fprintf(w, "%-*s %10d %10d  %s\n", width, m.Name, m.Size, m.CompressedSize, m.MethodName())
		total += m.Size
		compressed += m.CompressedSize
	}
	fmt.Fprintln(w, SubtitleStyle.Render(fmt.Sprintf("%d members, %d bytes (%d compressed)", len(archive.Members), total, compressed)))
	return nil
}
