// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pyzbuild/pyz/internal/issue"
	"github.com/pyzbuild/pyz/pkg/bootstrap"
	"github.com/pyzbuild/pyz/pkg/manifest"
	"github.com/pyzbuild/pyz/pkg/types"
)

func newCheckCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "check <version> [manifest]",
		Short: "Check a Python version against the manifest's supported range",
		Long: `Check whether an interpreter version satisfies the manifest's python range,
using the same comparison the generated __main__.py performs.

Exits 0 when the version is supported and 1 when it is not.`,
		Example: `  pyz check 3.12
  pyz check 2.7 deploy/pyz.yaml`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := bootstrap.ParseVersion(args[0])
			if err != nil {
				return &ExitError{Code: types.ExitUsage, Err: err}
			}

			path := ""
			if len(args) == 2 {
				path = args[1]
			} else if path, err = manifest.Find(app.Fs, "."); err != nil {
				return &ExitError{
					Code: types.ExitUsage,
					Err: issue.NewErrorContext().
						WithOperation("find build manifest").
						WithResource(".").
						WithIssue(issue.ManifestNotFoundId).
						Wrap(err).
						BuildError(),
				}
			}

			m, err := manifest.Load(app.Fs, path)
			if err != nil {
				return manifestError(err, path)
			}
			req, err := m.Python.Requirement()
			if err != nil {
				return manifestError(err, path)
			}
			if !req.IsBounded() {
				fmt.Fprintf(app.stdout, "%s %s is supported, %s sets no python range\n", SuccessStyle.Render("✓"), v, path)
				return nil
			}

			if !req.Admits(v) {
				fmt.Fprintf(app.stdout, "%s %s is outside %s\n", ErrorStyle.Render("✗"), v, req)
				return &ExitError{Code: types.ExitFailure}
			}
			fmt.Fprintf(app.stdout, "%s %s satisfies %s\n", SuccessStyle.Render("✓"), v, req)
			return nil
		},
	}
}
