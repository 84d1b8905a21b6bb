// SPDX-License-Identifier: MPL-2.0

package include

import (
	"fmt"
	"strings"
)

// ParseSpec parses the compact "source[:destination[:glob]]" form used on the
// command line. Empty fields fall back to their defaults, so "src::*.txt" keeps
// the destination equal to the source.
func ParseSpec(s string) (Spec, error) {
	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return Spec{}, fmt.Errorf("include %q: expected source[:destination[:glob]]", s)
	}

	var opts []SpecOption
	if len(parts) > 1 {
		opts = append(opts, WithDestination(parts[1]))
	}
	if len(parts) > 2 {
		opts = append(opts, WithGlob(parts[2]))
	}

	spec := NewSpec(parts[0], opts...)
	if err := spec.Validate(); err != nil {
		return Spec{}, err
	}
	return spec, nil
}
