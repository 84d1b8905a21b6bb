// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/pyzbuild/pyz/internal/config"
	"github.com/pyzbuild/pyz/internal/issue"
	"github.com/pyzbuild/pyz/internal/watch"
	"github.com/pyzbuild/pyz/pkg/bootstrap"
	"github.com/pyzbuild/pyz/pkg/include"
	"github.com/pyzbuild/pyz/pkg/launcher"
	"github.com/pyzbuild/pyz/pkg/manifest"
	"github.com/pyzbuild/pyz/pkg/types"
	"github.com/pyzbuild/pyz/pkg/zipapp"
)

// buildOptions holds the build flags. changed reports whether a flag was set
// on the command line; unset flags never override the manifest.
type buildOptions struct {
	manifest       string
	output         string
	main           string
	function       string
	includes       []string
	dir            string
	root           string
	pythonMin      string
	pythonMax      string
	inclusiveMax   bool
	launcher       bool
	launcherOutput string
	shebang        string
	level          int
	watch          bool

	changed func(name string) bool
}

func newBuildCommand(app *App) *cobra.Command {
	opts := &buildOptions{}

	buildCmd := &cobra.Command{
		Use:   "build [manifest]",
		Short: "Build a zip application",
		Long: `Build a zip application from a manifest, from flags, or from both.

Without a manifest argument pyz looks for pyz.cue, pyz.yaml or pyz.yml in the
project directory (--dir, default "."). Flags override manifest values;
--include adds to the manifest's include list. When no manifest exists, the
flags alone describe the build.

Include specifications use the form source[:destination[:glob]].`,
		Example: `  pyz build
  pyz build deploy/pyz.yaml --launcher
  pyz build -o hello.pyz -m hello -I hello.py
  pyz build -o tool.pyz -m tool/cli -I tool --python-min 3.9 --launcher-output tool`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.manifest = args[0]
			}
			opts.changed = cmd.Flags().Changed
			return runBuild(cmd, app, opts)
		},
	}

	flags := buildCmd.Flags()
	flags.StringVarP(&opts.output, "output", "o", "", "archive to write")
	flags.StringVarP(&opts.main, "main", "m", "", "main module path relative to the archive root (e.g. pkg/cli)")
	flags.StringVar(&opts.function, "function", "", "function to call in the main module (default \"main\")")
	flags.StringArrayVarP(&opts.includes, "include", "I", nil, "include source[:destination[:glob]] (repeatable)")
	flags.StringVarP(&opts.dir, "dir", "C", "", "project directory include sources are resolved against")
	flags.StringVar(&opts.root, "root", "", "archive root directory for included files")
	flags.StringVar(&opts.pythonMin, "python-min", "", "lowest supported Python version")
	flags.StringVar(&opts.pythonMax, "python-max", "", "highest supported Python version")
	flags.BoolVar(&opts.inclusiveMax, "inclusive-max", false, "admit --python-max itself")
	flags.BoolVar(&opts.launcher, "launcher", false, "prefix the archive with a shebang line")
	flags.StringVar(&opts.launcherOutput, "launcher-output", "", "write the launcher to a separate file")
	flags.StringVar(&opts.shebang, "shebang", "", "launcher interpreter (implies --launcher)")
	flags.IntVar(&opts.level, "level", 0, "deflate compression level, -2 (huffman only) to 9")
	flags.BoolVarP(&opts.watch, "watch", "w", false, "rebuild whenever an include source or the manifest changes")

	return buildCmd
}

func runBuild(cmd *cobra.Command, app *App, opts *buildOptions) error {
	ctx := cmd.Context()
	cfg, err := app.loadConfig(ctx)
	if err != nil {
		return err
	}
	logger := app.logger()

	req, source, err := opts.request(app.Fs, cfg)
	if err != nil {
		return err
	}
	if source != "" {
		logger.Debug("using manifest", "path", source)
	} else {
		logger.Debug("building from flags")
	}

	builder := zipapp.NewBuilder(zipapp.WithFs(app.Fs), zipapp.WithLogger(logger))
	res, err := builder.Build(ctx, req)
	if opts.watch {
		return watchBuild(ctx, app, opts, cfg, builder, req, source, res, err)
	}
	if err != nil {
		return classifyBuildError(err)
	}

	printBuildSummary(app.stdout, res, app.flags.verbose)
	return nil
}

// request assembles the build request: manifest first, then configuration
// defaults for anything left unset, then flag overrides. The second result is
// the manifest path, empty for flag-only builds.
func (o *buildOptions) request(fsys afero.Fs, cfg *config.Config) (zipapp.Request, string, error) {
	manifestPath, err := o.manifestPath(fsys, cfg)
	if err != nil {
		return zipapp.Request{}, "", err
	}

	req := zipapp.Request{BaseDir: o.dir}
	if manifestPath != "" {
		m, err := manifest.Load(fsys, manifestPath)
		if err != nil {
			return zipapp.Request{}, "", manifestError(err, manifestPath)
		}
		req, err = m.Request(m.Dir())
		if err != nil {
			return zipapp.Request{}, "", manifestError(err, manifestPath)
		}
	}

	if err := o.apply(&req); err != nil {
		return zipapp.Request{}, "", &ExitError{Code: types.ExitUsage, Err: err}
	}
	applyConfigDefaults(&req, cfg)
	return req, manifestPath, nil
}

// manifestPath picks the manifest: the argument, the configured default, or
// the first manifest file in the project directory. It returns "" when none
// exists and the flags describe a build on their own.
func (o *buildOptions) manifestPath(fsys afero.Fs, cfg *config.Config) (string, error) {
	if o.manifest != "" {
		return o.manifest, nil
	}
	if cfg.Manifest != "" {
		if filepath.IsAbs(cfg.Manifest) || o.dir == "" {
			return cfg.Manifest, nil
		}
		return filepath.Join(o.dir, cfg.Manifest), nil
	}

	dir := o.dir
	if dir == "" {
		dir = "."
	}
	p, err := manifest.Find(fsys, dir)
	if err == nil {
		return p, nil
	}
	if errors.Is(err, manifest.ErrNotFound) && o.isSet("main") {
		return "", nil
	}
	ctx := issue.NewErrorContext().
		WithOperation("find build manifest").
		WithResource(dir).
		Wrap(err)
	if errors.Is(err, manifest.ErrNotFound) {
		ctx.WithIssue(issue.ManifestNotFoundId).
			WithSuggestion("Run 'pyz init' to create a pyz.cue").
			WithSuggestion("Pass --main, --output and --include to build without a manifest")
	}
	return "", &ExitError{Code: types.ExitUsage, Err: ctx.BuildError()}
}

// apply copies every flag set on the command line into req.
func (o *buildOptions) apply(req *zipapp.Request) error {
	if o.isSet("output") {
		req.OutputPath = o.output
	}
	if o.isSet("main") {
		req.MainModule = filepath.FromSlash(strings.TrimSuffix(o.main, ".py"))
	}
	if o.isSet("function") {
		req.MainFunction = o.function
	}
	if o.isSet("root") {
		req.ArchiveRoot = o.root
	}
	if o.isSet("level") {
		level := o.level
		req.CompressionLevel = &level
	}
	if o.isSet("dir") && req.BaseDir == "" {
		req.BaseDir = o.dir
	}

	for _, raw := range o.includes {
		spec, err := include.ParseSpec(raw)
		if err != nil {
			return err
		}
		req.Includes = append(req.Includes, spec)
	}

	if err := o.applyRequirement(req); err != nil {
		return err
	}
	o.applyLauncher(req)
	return nil
}

func (o *buildOptions) applyRequirement(req *zipapp.Request) error {
	if !o.isSet("python-min") && !o.isSet("python-max") && !o.isSet("inclusive-max") {
		return nil
	}

	r := bootstrap.NewRequirement(nil, nil)
	if req.Requirement != nil {
		copied := *req.Requirement
		r = &copied
	}
	if o.isSet("python-min") {
		v, err := bootstrap.ParseVersion(o.pythonMin)
		if err != nil {
			return fmt.Errorf("--python-min: %w", err)
		}
		r.Minimum = &v
	}
	if o.isSet("python-max") {
		v, err := bootstrap.ParseVersion(o.pythonMax)
		if err != nil {
			return fmt.Errorf("--python-max: %w", err)
		}
		r.Maximum = &v
	}
	if o.isSet("inclusive-max") {
		r.ExclusiveMaximum = !o.inclusiveMax
	}
	req.Requirement = r
	return nil
}

func (o *buildOptions) applyLauncher(req *zipapp.Request) {
	if o.isSet("launcher") && !o.launcher {
		req.Launcher = nil
		return
	}
	if (o.launcher || o.isSet("launcher-output") || o.isSet("shebang")) && req.Launcher == nil {
		req.Launcher = &launcher.Spec{}
	}
	if req.Launcher == nil {
		return
	}
	if o.isSet("launcher-output") {
		req.Launcher.OutputPath = o.launcherOutput
	}
	if o.isSet("shebang") {
		req.Launcher.Shebang = o.shebang
	}
}

func (o *buildOptions) isSet(name string) bool {
	return o.changed != nil && o.changed(name)
}

// applyConfigDefaults fills values neither the manifest nor the flags set.
func applyConfigDefaults(req *zipapp.Request, cfg *config.Config) {
	if req.ArchiveRoot == "" {
		req.ArchiveRoot = cfg.ArchiveRoot
	}
	if req.CompressionLevel == nil {
		level := cfg.CompressionLevel
		req.CompressionLevel = &level
	}
	if req.Launcher != nil && req.Launcher.Shebang == "" {
		req.Launcher.Shebang = cfg.Shebang
	}
}

func manifestError(err error, path string) error {
	ctx := issue.NewErrorContext().
		WithOperation("load build manifest").
		WithResource(path).
		Wrap(err)
	if errors.Is(err, os.ErrNotExist) {
		ctx.WithIssue(issue.ManifestNotFoundId)
	} else {
		ctx.WithIssue(issue.ManifestParseErrorId)
	}
	return &ExitError{Code: types.ExitUsage, Err: ctx.BuildError()}
}

// classifyBuildError links build failures to issue catalog pages and exit codes.
func classifyBuildError(err error) error {
	ctx := issue.NewErrorContext().WithOperation("build archive").Wrap(err)
	code := types.ExitFailure

	var outErr *zipapp.OutputError
	switch {
	case errors.Is(err, bootstrap.ErrEmptyRange):
		ctx.WithIssue(issue.InvalidVersionRangeId)
		code = types.ExitUsage
	case errors.Is(err, include.ErrDirectoryRemap):
		ctx.WithIssue(issue.DirectoryRemapId)
		code = types.ExitUsage
	case errors.As(err, &outErr):
		ctx.WithIssue(issue.OutputNotWritableId).WithResource(outErr.Path)
	case include.IsNotExist(err):
		ctx.WithIssue(issue.SourceNotFoundId)
	case errors.Is(err, zipapp.ErrInvalidRequest),
		errors.Is(err, zipapp.ErrDuplicateMember),
		errors.Is(err, include.ErrInvalidSpec),
		errors.Is(err, types.ErrInvalidArchivePath):
		code = types.ExitUsage
	}
	return &ExitError{Code: code, Err: ctx.BuildError()}
}

// watchBuild reports the first build, then rebuilds on every change to an
// include source or the manifest until ctx is cancelled. Failed rebuilds are
// reported and watching continues.
func watchBuild(ctx context.Context, app *App, opts *buildOptions, cfg *config.Config, builder *zipapp.Builder,
	req zipapp.Request, source string, res *zipapp.Result, buildErr error,
) error {
	report := func(res *zipapp.Result, err error) {
		if err != nil {
			renderError(ctx, app, app.stderr, classifyBuildError(err))
			return
		}
		printBuildSummary(app.stdout, res, app.flags.verbose)
	}
	report(res, buildErr)

	paths, skip := watchTargets(req, source)
	w, err := watch.New(watch.Config{
		Paths:  paths,
		Skip:   skip,
		Logger: app.logger(),
		OnChange: func(ctx context.Context, changed []string) error {
			fmt.Fprintf(app.stdout, "%s %d change(s), rebuilding\n", PathStyle.Render("→"), len(changed))
			next, _, err := opts.request(app.Fs, cfg)
			if err != nil {
				renderError(ctx, app, app.stderr, err)
				return nil
			}
			report(builder.Build(ctx, next))
			return nil
		},
	})
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	fmt.Fprintf(app.stdout, "%s Watching %d path(s) for changes (Ctrl+C to stop)\n", PathStyle.Render("→"), len(paths))
	return w.Run(ctx)
}

// watchTargets lists the host paths a build reads and the outputs it writes.
func watchTargets(req zipapp.Request, manifestPath string) (paths, skip []string) {
	for _, spec := range req.Includes {
		p := string(spec.Source())
		if !filepath.IsAbs(p) && req.BaseDir != "" {
			p = filepath.Join(req.BaseDir, p)
		}
		paths = append(paths, p)
	}
	if manifestPath != "" {
		paths = append(paths, manifestPath)
	}

	skip = append(skip, req.OutputPath)
	if req.Launcher != nil && req.Launcher.OutputPath != "" {
		skip = append(skip, req.Launcher.OutputPath)
	}
	return paths, skip
}

func printBuildSummary(w io.Writer, res *zipapp.Result, verbose bool) {
	fmt.Fprintf(w, "%s Built %s %s\n",
		SuccessStyle.Render("✓"),
		PathStyle.Render(res.OutputPath),
		SubtitleStyle.Render(fmt.Sprintf("(%d members)", len(res.Members))))
	if res.LauncherPath != "" {
		fmt.Fprintf(w, "  %s %s\n", keyStyle.Render("launcher:"), PathStyle.Render(res.LauncherPath))
	}
	if !verbose {
		return
	}
	for _, m := range res.Members {
		fmt.Fprintf(w, "  %s\n", m)
	}
}
