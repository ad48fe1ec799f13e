package state

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"github.com/docimp/docimp/internal/core"
)

// workflowStateSchema is the JSON Schema for the current on-disk workflow
// state document. Save rejects anything that does not conform before any
// I/O happens; Load re-checks after migration so a broken transform or a
// hand-edited file is caught before it reaches callers.
const workflowStateSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "docimp workflow state",
  "type": "object",
  "required": [
    "schema_version",
    "migration_log",
    "last_analyze",
    "last_audit",
    "last_plan",
    "last_improve"
  ],
  "additionalProperties": false,
  "properties": {
    "schema_version": {
      "type": "string",
      "enum": ["1.0"]
    },
    "migration_log": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["from", "to", "timestamp"],
        "properties": {
          "from": {"type": "string"},
          "to": {"type": "string"},
          "timestamp": {"type": "string"}
        }
      }
    },
    "last_analyze": {"$ref": "#/definitions/commandState"},
    "last_audit": {"$ref": "#/definitions/commandState"},
    "last_plan": {"$ref": "#/definitions/commandState"},
    "last_improve": {"$ref": "#/definitions/commandState"}
  },
  "definitions": {
    "commandState": {
      "oneOf": [
        {"type": "null"},
        {
          "type": "object",
          "required": ["timestamp", "item_count"],
          "properties": {
            "timestamp": {"type": "string"},
            "item_count": {"type": "integer", "minimum": 0},
            "file_checksums": {
              "type": "object",
              "additionalProperties": {"type": "string"}
            }
          }
        }
      ]
    }
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(workflowStateSchema)

// validateDocument checks a raw state document against the current schema.
func validateDocument(doc map[string]any) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return core.ErrValidation(core.CodeInvalidStateSchema,
			"validating workflow state").WithCause(err)
	}
	if result.Valid() {
		return nil
	}
	detail := ""
	for _, desc := range result.Errors() {
		if detail != "" {
			detail += "; "
		}
		detail += desc.String()
	}
	return core.ErrValidation(core.CodeInvalidStateSchema,
		fmt.Sprintf("workflow state does not match schema %s: %s",
			core.CurrentSchemaVersion, detail)).
		WithSuggestion("run `docimp reset --force` and re-run `docimp analyze` to rebuild state")
}
