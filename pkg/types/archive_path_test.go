// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestNewArchivePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		elem []string
		want ArchivePath
	}{
		{"root and file", []string{"app", "main.py"}, "app/main.py"},
		{"nested host path", []string{"app", filepath.Join("pkg", "sub", "mod.py")}, "app/pkg/sub/mod.py"},
		{"redundant separators", []string{"app", "./pkg//mod.py"}, "app/pkg/mod.py"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := NewArchivePath(tt.elem...); got != tt.want {
				t.Errorf("NewArchivePath(%v) = %q, want %q", tt.elem, got, tt.want)
			}
		})
	}
}

func TestArchivePath_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		path    ArchivePath
		wantErr bool
	}{
		{"simple member", "app/main.py", false},
		{"entry member", "__main__.py", false},
		{"empty", "", true},
		{"absolute", "/app/main.py", true},
		{"backslash", `app\main.py`, true},
		{"escapes root", "../main.py", true},
		{"escapes after clean", "app/../../main.py", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.path.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("ArchivePath(%q).Validate() error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidArchivePath) {
				t.Errorf("error should wrap ErrInvalidArchivePath, got: %v", err)
			}
		})
	}
}
