// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/pyzbuild/pyz/internal/config"
	"github.com/pyzbuild/pyz/internal/issue"
	"github.com/pyzbuild/pyz/pkg/types"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the pyz command tree bound to app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pyz",
		Short: "Build executable Python zip applications",
		Long: TitleStyle.Render("pyz") + SubtitleStyle.Render(" - Build executable Python zip applications") + `

pyz packages Python sources into a single zip archive with a generated
__main__.py that checks the interpreter version and calls your entry point.
The archive can be prefixed with a shebang line to run it directly.

Builds are described by a pyz.cue or pyz.yaml manifest, or by flags alone.

` + SubtitleStyle.Render("Examples:") + `
  pyz init                              Create a starter pyz.cue
  pyz build                             Build from ./pyz.cue
  pyz build -o app.pyz -m src/main -I src
  pyz inspect app.pyz --tree            Show the archive layout
  pyz check 3.12                        Check a Python version against the manifest`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&app.flags.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&app.flags.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/pyz/config.cue)")

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ExitError{Code: types.ExitUsage, Err: err}
	})
	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)

	rootCmd.AddCommand(newBuildCommand(app))
	rootCmd.AddCommand(newInspectCommand(app))
	rootCmd.AddCommand(newCheckCommand(app))
	rootCmd.AddCommand(newInitCommand(app))
	rootCmd.AddCommand(newConfigCommand(app))

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI with the process arguments and exits with its status.
// It is called by main.main().
func Execute() {
	os.Exit(int(Run(context.Background(), NewApp(Dependencies{}), os.Args[1:])))
}

// Run executes the command tree with args and returns the process exit code.
func Run(ctx context.Context, app *App, args []string) types.ExitCode {
	rootCmd := NewRootCommand(app)
	rootCmd.SetArgs(args)

	err := fang.Execute(
		ctx,
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(func(w io.Writer, _ fang.Styles, err error) {
			renderError(ctx, app, w, err)
		}),
	)
	return exitCode(err)
}

// exitCode maps a command error to the process status.
func exitCode(err error) types.ExitCode {
	if err == nil {
		return types.ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return types.ExitFailure
}

// renderError prints err and, when it is linked to an issue catalog page, the
// rendered page. An ExitError without a cause prints nothing.
func renderError(ctx context.Context, app *App, w io.Writer, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		return
	}

	fmt.Fprintln(w, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, app.flags.verbose))

	var ae *issue.ActionableError
	if !errors.As(err, &ae) || ae.Issue == 0 {
		return
	}
	page := issue.Get(ae.Issue)
	if page == nil {
		return
	}

	scheme := config.ColorSchemeAuto
	if cfg, cfgErr := app.Config.Load(ctx, app.loadOptions()); cfgErr == nil {
		scheme = cfg.UI.ColorScheme
	}
	rendered, renderErr := page.Render(app.glamourStyle(scheme))
	if renderErr != nil {
		app.logger().Warn("failed to render issue catalog entry", "issue", ae.Issue, "error", renderErr)
		return
	}
	fmt.Fprint(w, rendered)
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
