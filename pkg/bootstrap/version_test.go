// SPDX-License-Identifier: MPL-2.0

package bootstrap

import (
	"errors"
	"testing"
)

func TestParseVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Version
		wantErr bool
	}{
		{in: "3", want: Version{3, 0, 0}},
		{in: "3.8", want: Version{3, 8, 0}},
		{in: "3.8.1", want: Version{3, 8, 1}},
		{in: "v2.7.18", want: Version{2, 7, 18}},
		{in: " 3.10 ", want: Version{3, 10, 0}},
		{in: "", wantErr: true},
		{in: "three", wantErr: true},
		{in: "3.8.1.2", wantErr: true},
		{in: "3.13.0-rc1", wantErr: true},
		{in: "3.12+build", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseVersion(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidVersion) {
					t.Errorf("ParseVersion(%q) error = %v, want ErrInvalidVersion", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseVersion(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseVersion(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestVersion_CompareAndFormat(t *testing.T) {
	t.Parallel()

	a := MustParseVersion("3.9.1")
	b := MustParseVersion("3.10")

	if a.Compare(b) != -1 || b.Compare(a) != 1 || a.Compare(a) != 0 {
		t.Errorf("Compare() ordering wrong for %s and %s", a, b)
	}
	if got := a.String(); got != "3.9.1" {
		t.Errorf("String() = %q, want %q", got, "3.9.1")
	}
	if got := b.Tuple(); got != "(3, 10, 0)" {
		t.Errorf("Tuple() = %q, want %q", got, "(3, 10, 0)")
	}
}
