// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for pyz.
//
// This package implements the Cobra command hierarchy for the pyz CLI: the
// root command, archive building, inspection, interpreter range checks,
// manifest scaffolding and configuration management. Handlers delegate to
// the pkg/ libraries through an App and never call os.Exit themselves.
package cmd
