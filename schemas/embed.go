// Package schemas holds the JSON Schemas for pipeline artifacts.
package schemas

import _ "embed"

// JobFieldsFile is the file name of the JobFields schema
const JobFieldsFile = "job_fields.schema.json"

//go:embed job_fields.schema.json
var jobFields string

// JobFields returns the JobFields JSON Schema document.
func JobFields() string {
	return jobFields
}
