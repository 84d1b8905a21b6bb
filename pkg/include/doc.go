// SPDX-License-Identifier: MPL-2.0

// Package include expands include specifications into concrete archive entries.
//
// A Spec names either a single file, which may be written to any destination
// inside the archive, or a directory subtree, which is copied verbatim with its
// relative layout preserved. Directory subtrees are filtered by a shell-style
// glob applied to each file's base name ("*.py" unless overridden).
//
// Relative source paths are resolved against the Resolver's base directory, never
// against the process working directory, so several resolvers can run side by
// side in one process.
package include
