// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestActionableError_Error(t *testing.T) {
	t.Parallel()

	cause := errors.New("permission denied")
	tests := []struct {
		name string
		err  *ActionableError
		want string
	}{
		{name: "operation only", err: &ActionableError{Operation: "build archive"}, want: "failed to build archive"},
		{name: "with resource", err: &ActionableError{Operation: "load manifest", Resource: "pyz.cue"}, want: "failed to load manifest: pyz.cue"},
		{name: "with cause", err: &ActionableError{Operation: "write launcher", Resource: "dist/app", Cause: cause}, want: "failed to write launcher: dist/app: permission denied"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestActionableError_Unwrap(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("sentinel")
	err := NewErrorContext().WithOperation("build archive").Wrap(fmt.Errorf("wrapped: %w", sentinel)).BuildError()
	if !errors.Is(err, sentinel) {
		t.Errorf("errors.Is() through ActionableError failed: %v", err)
	}
}

func TestActionableError_Format(t *testing.T) {
	t.Parallel()

	inner := errors.New("no such file")
	err := NewErrorContext().
		WithOperation("resolve include").
		WithResource("src").
		WithSuggestion("Check the path").
		WithSuggestion("Use --dir").
		Wrap(fmt.Errorf("stat src: %w", inner)).
		Build()

	short := err.Format(false)
	if !strings.Contains(short, "\n  • Check the path") || !strings.Contains(short, "\n  • Use --dir") {
		t.Errorf("Format(false) missing suggestions:\n%s", short)
	}
	if strings.Contains(short, "Error chain") {
		t.Errorf("Format(false) should not include the chain:\n%s", short)
	}

	long := err.Format(true)
	if !strings.Contains(long, "1. stat src: no such file") || !strings.Contains(long, "2. no such file") {
		t.Errorf("Format(true) missing chain:\n%s", long)
	}
}

func TestErrorContext_Build(t *testing.T) {
	t.Parallel()

	if NewErrorContext().WithResource("x").Build() != nil {
		t.Error("Build() without operation should be nil")
	}
	if NewErrorContext().BuildError() != nil {
		t.Error("BuildError() without operation should be nil")
	}

	ae := NewErrorContext().WithOperation("load configuration").WithIssue(ConfigLoadFailedId).Build()
	if ae.Issue != ConfigLoadFailedId {
		t.Errorf("Issue = %d, want %d", ae.Issue, ConfigLoadFailedId)
	}
}

func TestWrapWithContext(t *testing.T) {
	t.Parallel()

	if WrapWithContext(nil, "op", "res") != nil {
		t.Error("WrapWithContext(nil) should be nil")
	}
	err := WrapWithContext(errors.New("boom"), "inspect archive", "app.pyz")
	if got, want := err.Error(), "failed to inspect archive: app.pyz: boom"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	var ae *ActionableError
	if !errors.As(err, &ae) {
		t.Errorf("WrapWithContext() returned %T", err)
	}
}
