// SPDX-License-Identifier: MPL-2.0

package inspect

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/pyzbuild/pyz/internal/testutil"
	"github.com/pyzbuild/pyz/pkg/include"
	"github.com/pyzbuild/pyz/pkg/launcher"
	"github.com/pyzbuild/pyz/pkg/zipapp"
)

func buildArchive(t *testing.T, l *launcher.Spec) string {
	t.Helper()
	dir := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(dir, "src", "tool", "__init__.py"), "")
	testutil.MustWriteFile(t, filepath.Join(dir, "src", "tool", "cli.py"), "def main():\n    pass\n")
	out := filepath.Join(dir, "tool.pyz")

	_, err := zipapp.NewBuilder().Build(context.Background(), zipapp.Request{
		OutputPath: out,
		BaseDir:    filepath.Join(dir, "src"),
		MainModule: filepath.Join("tool", "cli"),
		Includes:   []include.Spec{include.NewSpec("tool")},
		Launcher:   l,
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return out
}

func TestOpen(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		launcher    *launcher.Spec
		wantShebang string
	}{
		{name: "plain", launcher: nil, wantShebang: ""},
		{name: "single-file launcher", launcher: &launcher.Spec{Shebang: "/usr/bin/python3"}, wantShebang: "/usr/bin/python3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			a, err := Open(buildArchive(t, tt.launcher))
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			if a.Shebang != tt.wantShebang {
				t.Errorf("Shebang = %q, want %q", a.Shebang, tt.wantShebang)
			}
			wantNames := []string{"app/tool/__init__.py", "app/tool/cli.py", "__main__.py"}
			if !reflect.DeepEqual(a.Names(), wantNames) {
				t.Errorf("Names() = %v, want %v", a.Names(), wantNames)
			}
			for _, m := range a.Members {
				if m.MethodName() != "deflate" {
					t.Errorf("%s method = %s, want deflate", m.Name, m.MethodName())
				}
			}
			text, err := a.Bootstrap()
			if err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(text, "from app.tool.cli import main") {
				t.Errorf("Bootstrap() = %q", text)
			}
		})
	}
}

func TestOpen_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if _, err := Open(filepath.Join(dir, "missing.pyz")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Open(missing) = %v, want not-exist", err)
	}

	notZip := filepath.Join(dir, "plain.txt")
	testutil.MustWriteFile(t, notZip, "#!/bin/sh\necho hi\n")
	if _, err := Open(notZip); err == nil {
		t.Error("Open(non-zip) succeeded")
	}

	empty := &Archive{Path: "x.pyz"}
	if _, err := empty.Bootstrap(); !errors.Is(err, ErrNoBootstrap) {
		t.Errorf("Bootstrap() = %v, want ErrNoBootstrap", err)
	}
}

func TestTree(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	names := []string{"app/pkg/__init__.py", "app/pkg/mod.py", "app/main.py", "__main__.py"}
	if err := Tree(&buf, "tool.pyz", names); err != nil {
		t.Fatalf("Tree() error = %v", err)
	}

	out := buf.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if lines[0] != "tool.pyz" {
		t.Errorf("first line = %q, want root name", lines[0])
	}
	// app, pkg, __init__.py, mod.py, main.py, __main__.py under the root.
	if len(lines) != 7 {
		t.Errorf("tree has %d lines, want 7:\n%s", len(lines), out)
	}
	if strings.Count(out, "app") != 1 {
		t.Errorf("directory nodes should be shared:\n%s", out)
	}
	for _, want := range []string{"pkg", "__init__.py", "mod.py", "main.py", "__main__.py"} {
		if !strings.Contains(out, want) {
			t.Errorf("tree missing %q:\n%s", want, out)
		}
	}
}
