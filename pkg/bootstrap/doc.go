// SPDX-License-Identifier: MPL-2.0

// Package bootstrap renders the __main__.py entry member of a Python zip application.
//
// The generated script optionally guards the running interpreter version against a
// Requirement and then imports and calls the application's main function. The guard
// expression is built by GuardExpression, a pure function that can be tested without
// assembling an archive.
package bootstrap
