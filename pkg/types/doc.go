// SPDX-License-Identifier: MPL-2.0

// Package types holds small validated value types shared by the pyz packages.
//
// Every type follows the same shape: a named primitive, a sentinel error, and an
// Invalid*Error carrying the offending value that unwraps to the sentinel.
package types
