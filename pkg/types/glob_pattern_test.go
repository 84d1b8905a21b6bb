// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"testing"
)

func TestGlobPattern_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		glob    GlobPattern
		wantErr bool
	}{
		{"python sources", "*.py", false},
		{"character class", "[a-c]*.txt", false},
		{"negated class", "[!_]*.py", false},
		{"single char", "?.cfg", false},
		{"empty", "", true},
		{"path separator", "pkg/*.py", true},
		{"unterminated class", "[a-", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.glob.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("GlobPattern(%q).Validate() error = %v, wantErr %v", tt.glob, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidGlobPattern) {
				t.Errorf("error should wrap ErrInvalidGlobPattern, got: %v", err)
			}
		})
	}
}

func TestGlobPattern_Match(t *testing.T) {
	t.Parallel()

	tests := []struct {
		glob GlobPattern
		name string
		want bool
	}{
		{"*.py", "main.py", true},
		{"*.py", "main.pyc", false},
		{"*.py", "MAIN.PY", false},
		{"*.py", ".hidden.py", true},
		{"data_?.json", "data_1.json", true},
		{"[", "anything", false},
		{"[!_]*.py", "mod.py", true},
		{"[!_]*.py", "_private.py", false},
		{"[!_]*.py", "!x.py", true},
		{"[^_]*.py", "_private.py", false},
		{"[^_]*.py", "mod.py", true},
	}

	for _, tt := range tests {
		if got := tt.glob.Match(tt.name); got != tt.want {
			t.Errorf("GlobPattern(%q).Match(%q) = %v, want %v", tt.glob, tt.name, got, tt.want)
		}
	}
}
