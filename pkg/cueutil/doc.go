// SPDX-License-Identifier: MPL-2.0

// Package cueutil compiles user CUE files against an embedded schema and
// decodes the result into Go structs.
//
// Both the build manifest (pyz.cue) and the tool configuration (config.cue)
// go through the same steps: compile the schema, compile the user file, unify
// the file with one schema definition, validate, and decode.
//
//	//go:embed pyz_schema.cue
//	var schema []byte
//
//	res, err := cueutil.ParseAndDecode[Manifest](schema, data, "#Manifest",
//	    cueutil.WithFilename("pyz.cue"))
//	if err != nil {
//	    return nil, err // names the offending field, e.g. pyz.cue: include[1].glob: ...
//	}
//	return res.Value, nil
package cueutil
