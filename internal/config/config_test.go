// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/pyzbuild/pyz/internal/issue"
	"github.com/pyzbuild/pyz/internal/testutil"
	"github.com/pyzbuild/pyz/pkg/types"
)

// isolated returns LoadOptions that cannot see the user's real configuration.
func isolated(t *testing.T) (LoadOptions, string) {
	t.Helper()
	dir := t.TempDir()
	cfgDir := filepath.Join(dir, "cfg")
	return LoadOptions{
		ConfigDirPath: types.FilesystemPath(cfgDir),
		BaseDir:       types.FilesystemPath(filepath.Join(dir, "work")),
	}, cfgDir
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	opts, _ := isolated(t)
	p := NewProvider()
	cfg, err := p.Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if *cfg != *DefaultConfig() {
		t.Errorf("Load() = %+v, want defaults %+v", cfg, DefaultConfig())
	}
	src, err := p.Source(context.Background(), opts)
	if err != nil || src != "" {
		t.Errorf("Source() = %q, %v, want empty", src, err)
	}
}

func TestLoad_UserConfigDir(t *testing.T) {
	t.Parallel()

	opts, cfgDir := isolated(t)
	path := filepath.Join(cfgDir, "config.cue")
	testutil.MustWriteFile(t, path, `
archive_root: "lib"
compression_level: 9
ui: verbose: true
`)

	p := NewProvider()
	cfg, err := p.Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ArchiveRoot != "lib" || cfg.CompressionLevel != 9 || !cfg.UI.Verbose {
		t.Errorf("Load() = %+v", cfg)
	}
	if cfg.Shebang != DefaultConfig().Shebang || cfg.UI.ColorScheme != ColorSchemeAuto {
		t.Errorf("unset fields should keep defaults: %+v", cfg)
	}
	if src, _ := p.Source(context.Background(), opts); src != path {
		t.Errorf("Source() = %q, want %q", src, path)
	}
}

func TestLoad_LocalFallback(t *testing.T) {
	t.Parallel()

	opts, _ := isolated(t)
	local := filepath.Join(string(opts.BaseDir), "config.cue")
	testutil.MustWriteFile(t, local, `shebang: "/usr/bin/python3"`)

	cfg, err := NewProvider().Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Shebang != "/usr/bin/python3" {
		t.Errorf("Shebang = %q", cfg.Shebang)
	}
}

func TestLoad_ExplicitFile(t *testing.T) {
	t.Parallel()

	opts, _ := isolated(t)
	explicit := filepath.Join(t.TempDir(), "custom.cue")
	testutil.MustWriteFile(t, explicit, `manifest: "build.cue"`)
	opts.ConfigFilePath = types.FilesystemPath(explicit)

	cfg, err := NewProvider().Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Manifest != "build.cue" {
		t.Errorf("Manifest = %q", cfg.Manifest)
	}

	opts.ConfigFilePath = types.FilesystemPath(filepath.Join(t.TempDir(), "missing.cue"))
	_, err = NewProvider().Load(context.Background(), opts)
	var ae *issue.ActionableError
	if !errors.As(err, &ae) || ae.Issue != issue.ConfigLoadFailedId {
		t.Fatalf("Load(missing) = %v, want ConfigLoadFailed actionable error", err)
	}
}

func TestLoad_SchemaErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "level out of range", content: `compression_level: 12`, want: "compression_level"},
		{name: "unknown field", content: `container_engine: "docker"`, want: "container_engine"},
		{name: "bad color scheme", content: `ui: color_scheme: "neon"`, want: "ui.color_scheme"},
		{name: "shebang marker", content: `shebang: "#!/bin/python"`, want: "shebang"},
		{name: "syntax", content: `archive_root: `, want: "config.cue"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			opts, cfgDir := isolated(t)
			testutil.MustWriteFile(t, filepath.Join(cfgDir, "config.cue"), tt.content)

			_, err := NewProvider().Load(context.Background(), opts)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	opts, cfgDir := isolated(t)
	testutil.MustWriteFile(t, filepath.Join(cfgDir, "config.cue"), `compression_level: 9`)
	t.Setenv("PYZ_COMPRESSION_LEVEL", "1")
	t.Setenv("PYZ_UI_VERBOSE", "true")

	cfg, err := NewProvider().Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.CompressionLevel != 1 || !cfg.UI.Verbose {
		t.Errorf("env overrides not applied: %+v", cfg)
	}

	t.Setenv("PYZ_COMPRESSION_LEVEL", "42")
	if _, err := NewProvider().Load(context.Background(), opts); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Load() with bad env = %v, want ErrInvalidConfig", err)
	}
}

func TestLoad_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	opts, _ := isolated(t)
	if _, err := NewProvider().Load(ctx, opts); !errors.Is(err, context.Canceled) {
		t.Errorf("Load() = %v, want context.Canceled", err)
	}
}

func TestGenerateCUE_RoundTrip(t *testing.T) {
	t.Parallel()

	opts, cfgDir := isolated(t)
	want := DefaultConfig()
	want.ArchiveRoot = "src"
	want.CompressionLevel = 0
	want.Manifest = "pyz.yaml"
	want.UI = UIConfig{Verbose: true, ColorScheme: ColorSchemeDark}

	if err := Save(filepath.Join(cfgDir, "config.cue"), want); err != nil {
		t.Fatal(err)
	}
	got, err := NewProvider().Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if *got != *want {
		t.Errorf("round trip = %+v, want %+v", got, want)
	}
}

func TestInit(t *testing.T) {
	t.Parallel()

	opts, cfgDir := isolated(t)
	path, err := Init(opts, false)
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if path != filepath.Join(cfgDir, "config.cue") {
		t.Errorf("Init() path = %q", path)
	}
	if _, err := Init(opts, false); !errors.Is(err, ErrConfigExists) {
		t.Errorf("second Init() = %v, want ErrConfigExists", err)
	}
	if _, err := Init(opts, true); err != nil {
		t.Errorf("forced Init() = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != GenerateCUE(DefaultConfig()) {
		t.Errorf("written config = %q", data)
	}
}

func TestConfigDir(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG lookup is Linux-only")
	}

	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	dir, err := ConfigDir()
	if err != nil || dir != filepath.Join("/xdg", "pyz") {
		t.Errorf("ConfigDir() = %q, %v", dir, err)
	}

	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Cleanup(testutil.SetHomeDir(t, home))
	dir, err = ConfigDir()
	if err != nil || dir != filepath.Join(home, ".config", "pyz") {
		t.Errorf("ConfigDir() = %q, %v", dir, err)
	}
}

func TestLoadOptions_Validate(t *testing.T) {
	t.Parallel()

	if err := (LoadOptions{}).Validate(); err != nil {
		t.Errorf("empty options: %v", err)
	}
	err := LoadOptions{ConfigFilePath: "  ", BaseDir: "\t"}.Validate()
	if !errors.Is(err, ErrInvalidLoadOptions) {
		t.Fatalf("Validate() = %v, want ErrInvalidLoadOptions", err)
	}
	var loadErr *InvalidLoadOptionsError
	if !errors.As(err, &loadErr) || len(loadErr.FieldErrors) != 2 {
		t.Errorf("Validate() = %#v, want 2 field errors", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("defaults invalid: %v", err)
	}
	bad := DefaultConfig()
	bad.ArchiveRoot = "../x"
	bad.UI.ColorScheme = "neon"
	err := bad.Validate()
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("Validate() = %v, want ErrInvalidConfig", err)
	}
	var cfgErr *InvalidConfigError
	if !errors.As(err, &cfgErr) || len(cfgErr.FieldErrors) != 2 {
		t.Errorf("Validate() = %v, want 2 field errors", err)
	}
	if !errors.Is(ColorScheme("neon").Validate(), ErrInvalidColorScheme) {
		t.Error("ColorScheme.Validate() should wrap ErrInvalidColorScheme")
	}
}
