// SPDX-License-Identifier: MPL-2.0

//go:build windows

package watch

import (
	"fmt"
	"syscall"
	"testing"
)

func TestIsFatal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "too many open files", err: syscall.Errno(4), want: true},
		{name: "invalid handle", err: syscall.Errno(6), want: true},
		{name: "out of memory", err: syscall.Errno(8), want: true},
		{name: "wrapped invalid handle", err: fmt.Errorf("fsnotify: %w", syscall.Errno(6)), want: true},
		{name: "access denied", err: syscall.Errno(5), want: false},
		{name: "file not found", err: syscall.Errno(2), want: false},
		{name: "plain error", err: fmt.Errorf("queue overflow"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := isFatal(tt.err); got != tt.want {
				t.Errorf("isFatal(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
