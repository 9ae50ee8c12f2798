// Package schemas embeds the JSON Schemas of the documents the CLI reads.
package schemas

import _ "embed"

// Resume is the JSON Schema of the YAML resume record.
//
//go:embed resume.schema.json
var Resume []byte
