// SPDX-License-Identifier: MPL-2.0

// Package manifest reads build manifests.
//
// A manifest describes one zip application: where to write it, which module
// and function to run, the include list, the supported interpreter range and an
// optional launcher. It lives next to the project as pyz.cue, validated against
// an embedded CUE schema, or as pyz.yaml / pyz.yml. Paths inside a manifest are
// relative to the directory that holds it.
package manifest
