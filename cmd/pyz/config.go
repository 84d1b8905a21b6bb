// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pyzbuild/pyz/internal/config"
	"github.com/pyzbuild/pyz/pkg/types"
)

// newConfigCommand creates the `pyz config` command tree.
// Subcommands that read configuration use the App's config.Provider.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage pyz configuration",
		Long: `Manage pyz configuration.

Configuration is stored in:
  - Linux: ~/.config/pyz/config.cue
  - macOS: ~/Library/Application Support/pyz/config.cue
  - Windows: %APPDATA%\pyz\config.cue

A config.cue in the working directory is used when the user file is absent.
PYZ_* environment variables override file values (e.g. PYZ_ARCHIVE_ROOT).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.Context(), app)
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.Init(app.loadOptions(), force)
			if errors.Is(err, config.ErrConfigExists) {
				return &ExitError{Code: types.ExitUsage, Err: fmt.Errorf("%w. Use --force to overwrite", err)}
			}
			if err != nil {
				return fmt.Errorf("failed to create config: %w", err)
			}
			fmt.Fprintf(app.stdout, "%s Created default configuration at %s\n", SuccessStyle.Render("✓"), path)
			return nil
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing configuration file")
	cfgCmd.AddCommand(initCmd)

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigPath(app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output raw configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.Config.Load(cmd.Context(), app.loadOptions())
			if err != nil {
				return err
			}
			fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	})

	return cfgCmd
}

func showConfig(ctx context.Context, app *App) error {
	cfg, err := app.Config.Load(ctx, app.loadOptions())
	if err != nil {
		return err
	}
	source, err := app.Config.Source(ctx, app.loadOptions())
	if err != nil {
		return err
	}

	w := app.stdout
	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)

	if source != "" {
		printValue(w, "Config file", source)
	} else {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(w)

	printValue(w, "archive_root", cfg.ArchiveRoot)
	printValue(w, "compression_level", fmt.Sprint(cfg.CompressionLevel))
	printValue(w, "shebang", cfg.Shebang)
	if cfg.Manifest != "" {
		printValue(w, "manifest", cfg.Manifest)
	} else {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("manifest"), SubtitleStyle.Render("(search project directory)"))
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("ui"))
	fmt.Fprintf(w, "  verbose: %s\n", SuccessStyle.Render(fmt.Sprint(cfg.UI.Verbose)))
	fmt.Fprintf(w, "  color_scheme: %s\n", SuccessStyle.Render(cfg.UI.ColorScheme.String()))

	return nil
}

func showConfigPath(app *App) error {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	path, exists, err := config.FilePath(app.loadOptions())
	if err != nil {
		return err
	}

	fmt.Fprintf(app.stdout, "Config directory: %s\n", cfgDir)
	if exists {
		fmt.Fprintf(app.stdout, "Config file: %s\n", path)
	} else {
		fmt.Fprintf(app.stdout, "Config file: %s %s\n", path, SubtitleStyle.Render("(not created)"))
	}
	return nil
}

func printValue(w io.Writer, key, value string) {
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render(key), SuccessStyle.Render(value))
}
