// SPDX-License-Identifier: MPL-2.0

package bootstrap

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyRange is returned when a Requirement admits no version at all.
var ErrEmptyRange = errors.New("supported version range is empty")

// Requirement is the range of interpreter versions an application supports.
// A nil bound means the range is open on that side.
type Requirement struct {
	Minimum          *Version
	Maximum          *Version
	ExclusiveMaximum bool
}

// NewRequirement creates a Requirement with an exclusive maximum.
// Either bound may be nil.
func NewRequirement(minimum, maximum *Version) *Requirement {
	return &Requirement{Minimum: minimum, Maximum: maximum, ExclusiveMaximum: true}
}

// IsBounded reports whether at least one bound is set.
func (r *Requirement) IsBounded() bool {
	return r != nil && (r.Minimum != nil || r.Maximum != nil)
}

// Validate rejects ranges no interpreter could satisfy.
func (r *Requirement) Validate() error {
	if r == nil || r.Minimum == nil || r.Maximum == nil {
		return nil
	}
	c := r.Minimum.Compare(*r.Maximum)
	if c > 0 || (c == 0 && r.ExclusiveMaximum) {
		return fmt.Errorf("%w: %s", ErrEmptyRange, r.String())
	}
	return nil
}

// Admits reports whether v lies inside the range. A nil Requirement admits everything.
func (r *Requirement) Admits(v Version) bool {
	if r == nil {
		return true
	}
	if r.Minimum != nil && v.Compare(*r.Minimum) < 0 {
		return false
	}
	if r.Maximum != nil {
		c := v.Compare(*r.Maximum)
		if c > 0 || (c == 0 && r.ExclusiveMaximum) {
			return false
		}
	}
	return true
}

// String renders the range the way the bootstrap reports it, e.g.
// "2.7.0 <= version < 3.0.0".
func (r *Requirement) String() string {
	if r == nil {
		return "version"
	}
	var sb strings.Builder
	if r.Minimum != nil {
		sb.WriteString(r.Minimum.String())
		sb.WriteString(" <= ")
	}
	sb.WriteString("version")
	if r.Maximum != nil {
		if r.ExclusiveMaximum {
			sb.WriteString(" < ")
		} else {
			sb.WriteString(" <= ")
		}
		sb.WriteString(r.Maximum.String())
	}
	return sb.String()
}

// GuardExpression returns the Python boolean expression that is true when the
// running version v is NOT supported. The second result is false when the
// requirement has no bound, in which case no guard must be emitted.
//
// An exclusive maximum rejects v >= maximum; an inclusive one rejects v > maximum.
func GuardExpression(r *Requirement) (string, bool) {
	if !r.IsBounded() {
		return "", false
	}
	var checks []string
	if r.Minimum != nil {
		checks = append(checks, fmt.Sprintf("(v < %s)", r.Minimum.Tuple()))
	}
	if r.Maximum != nil {
		op := ">"
		if r.ExclusiveMaximum {
			op = ">="
		}
		checks = append(checks, fmt.Sprintf("(v %s %s)", op, r.Maximum.Tuple()))
	}
	return strings.Join(checks, " or "), true
}
