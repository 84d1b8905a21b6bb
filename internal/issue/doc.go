// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable errors and the catalog of known problems.
//
// An ActionableError says what pyz was doing, on which file, and what the user
// can try next. Known problems additionally have a Markdown page in the catalog
// that the CLI renders with glamour.
package issue
