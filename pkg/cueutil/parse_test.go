// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"strings"
	"testing"

	"cuelang.org/go/cue"
)

const testSchema = `
#Target: {
	name:  string & =~"^[a-z]+$"
	level?: int & >=0 & <=9
	tags?: [...string]
}
`

type target struct {
	Name  string   `json:"name"`
	Level int      `json:"level"`
	Tags  []string `json:"tags,omitempty"`
}

func TestParseAndDecode(t *testing.T) {
	t.Parallel()

	res, err := ParseAndDecode[target]([]byte(testSchema), []byte(`name: "app", tags: ["x"]`), "#Target", WithFilename("t.cue"))
	if err != nil {
		t.Fatalf("ParseAndDecode() error = %v", err)
	}
	if res.Value.Name != "app" || res.Value.Level != 0 || len(res.Value.Tags) != 1 {
		t.Errorf("decoded = %+v", res.Value)
	}
	if name, err := res.Unified.LookupPath(cue.ParsePath("name")).String(); err != nil || name != "app" {
		t.Errorf("Unified.name = %q, %v", name, err)
	}
}

func TestParseAndDecode_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    string
		defPath string
		opts    []Option
		want    string
	}{
		{name: "constraint", data: `name: "app", level: 12`, defPath: "#Target", want: "t.cue: level"},
		{name: "pattern", data: `name: "App"`, defPath: "#Target", want: "t.cue: name"},
		{name: "closed", data: `name: "app", extra: 1`, defPath: "#Target", want: "t.cue"},
		{name: "incomplete", data: `level: 1`, defPath: "#Target", want: "t.cue"},
		{name: "syntax", data: `name: `, defPath: "#Target", want: "t.cue"},
		{name: "missing definition", data: `name: "a"`, defPath: "#Nope", want: "internal error"},
		{name: "too large", data: `name: "app"`, defPath: "#Target", opts: []Option{WithMaxFileSize(4)}, want: "exceeds maximum"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			opts := append([]Option{WithFilename("t.cue")}, tt.opts...)
			_, err := ParseAndDecode[target]([]byte(testSchema), []byte(tt.data), tt.defPath, opts...)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestParseAndDecode_ValidationErrorType(t *testing.T) {
	t.Parallel()

	_, err := ParseAndDecode[target]([]byte(testSchema), []byte(`name: "app", level: 12`), "#Target", WithFilename("t.cue"))
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error %T is not a *ValidationError", err)
	}
	if verr.Path != "level" {
		t.Errorf("Path = %q, want %q", verr.Path, "level")
	}
}
