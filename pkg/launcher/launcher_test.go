// SPDX-License-Identifier: MPL-2.0

package launcher

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/spf13/afero"
)

// writeArchive creates a minimal zip with one member and returns its path.
func writeArchive(t *testing.T, dir string) string {
	t.Helper()
	p := filepath.Join(dir, "app.pyz")
	f, err := os.Create(p)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	w, err := zw.Create("__main__.py")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte("print('hi')\n")); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestHeader(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		spec Spec
		want string
	}{
		{name: "default", spec: Spec{}, want: "#!/usr/bin/env python\n"},
		{name: "custom", spec: Spec{Shebang: "/usr/bin/python3"}, want: "#!/usr/bin/python3\n"},
		{name: "trimmed", spec: Spec{Shebang: "  /opt/py  "}, want: "#!/opt/py\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Header(tt.spec); got != tt.want {
				t.Errorf("Header() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSpec_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		shebang string
		wantErr bool
	}{
		{name: "empty", shebang: "", wantErr: false},
		{name: "env", shebang: "/usr/bin/env python3", wantErr: false},
		{name: "newline", shebang: "/usr/bin/python\nrm -rf /", wantErr: true},
		{name: "carriage return", shebang: "/usr/bin/python\r", wantErr: true},
		{name: "leading marker", shebang: "#!/usr/bin/python", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := Spec{Shebang: tt.shebang}.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestWrite_TwoFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	archive := writeArchive(t, dir)
	original, err := os.ReadFile(archive)
	if err != nil {
		t.Fatal(err)
	}
	exe := filepath.Join(dir, "app")

	got, err := Write(afero.NewOsFs(), archive, Spec{OutputPath: exe})
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if got != exe {
		t.Errorf("Write() = %q, want %q", got, exe)
	}

	data, err := os.ReadFile(exe)
	if err != nil {
		t.Fatal(err)
	}
	want := append([]byte("#!/usr/bin/env python\n"), original...)
	if !bytes.Equal(data, want) {
		t.Error("launcher bytes are not header + archive")
	}

	untouched, err := os.ReadFile(archive)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(untouched, original) {
		t.Error("two-file mode modified the archive")
	}

	if runtime.GOOS != "windows" {
		info, err := os.Stat(exe)
		if err != nil {
			t.Fatal(err)
		}
		if info.Mode().Perm() != 0o755 {
			t.Errorf("mode = %v, want 0755", info.Mode().Perm())
		}
	}
}

func TestWrite_SingleFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	archive := writeArchive(t, dir)
	original, err := os.ReadFile(archive)
	if err != nil {
		t.Fatal(err)
	}

	got, err := Write(afero.NewOsFs(), archive, Spec{Shebang: "/usr/bin/python3"})
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if got != archive {
		t.Errorf("Write() = %q, want %q", got, archive)
	}

	data, err := os.ReadFile(archive)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("#!/usr/bin/python3\n")) {
		t.Errorf("archive does not start with the header: %q", data[:20])
	}
	if !bytes.Equal(data[len("#!/usr/bin/python3\n"):], original) {
		t.Error("archive bytes changed after the header")
	}

	zr, err := zip.OpenReader(archive)
	if err != nil {
		t.Fatalf("prefixed archive no longer opens as zip: %v", err)
	}
	defer zr.Close()
	if len(zr.File) != 1 || zr.File[0].Name != "__main__.py" {
		t.Errorf("members = %v", zr.File)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("temporary files left behind: %v", entries)
	}
}

func TestWrite_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	if _, err := Write(afero.NewOsFs(), filepath.Join(dir, "missing.pyz"), Spec{OutputPath: filepath.Join(dir, "app")}); err == nil {
		t.Error("Write() with missing archive succeeded")
	}
	if _, err := Write(afero.NewOsFs(), writeArchive(t, dir), Spec{Shebang: "a\nb"}); err == nil {
		t.Error("Write() with multi-line shebang succeeded")
	}
}

func TestWrite_InMemory(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	archive := []byte("PK\x05\x06not really a zip")
	if err := afero.WriteFile(fsys, "/dist/app.pyz", archive, 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		spec Spec
		want string
	}{
		{"two file", Spec{OutputPath: "/dist/app"}, "/dist/app"},
		{"single file", Spec{}, "/dist/app.pyz"},
	}

	for _, tt := range tests {
		// Cases share fsys and run in order; the single-file case rewrites the archive last.
		got, err := Write(fsys, "/dist/app.pyz", tt.spec)
		if err != nil {
			t.Fatalf("%s: Write() error = %v", tt.name, err)
		}
		if got != tt.want {
			t.Errorf("%s: Write() = %q, want %q", tt.name, got, tt.want)
		}
		data, err := afero.ReadFile(fsys, got)
		if err != nil {
			t.Fatal(err)
		}
		if want := append([]byte("#!/usr/bin/env python\n"), archive...); !bytes.Equal(data, want) {
			t.Errorf("%s: launcher = %q, want %q", tt.name, data, want)
		}
		info, err := fsys.Stat(got)
		if err != nil {
			t.Fatal(err)
		}
		if info.Mode().Perm() != 0o755 {
			t.Errorf("%s: mode = %v, want 0755", tt.name, info.Mode().Perm())
		}
	}

	entries, err := afero.ReadDir(fsys, "/dist")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Errorf("entries in /dist = %d, want archive and launcher only", len(entries))
	}
}
