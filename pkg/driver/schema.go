package driver

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const manifestSchemaURL = "schema://pyg/manifest.json"

const manifestSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["version"],
  "properties": {
    "name": {"type": "string", "minLength": 1},
    "version": {"type": "string", "minLength": 1},
    "description": {"type": "string"},
    "main": {"type": "string"},
    "license": {"type": "string"},
    "dependencies": {
      "oneOf": [
        {"type": "array", "items": {"type": "string", "minLength": 1}},
        {
          "type": "object",
          "additionalProperties": {
            "oneOf": [
              {"type": "string"},
              {"$ref": "#/$defs/dependency"}
            ]
          }
        }
      ]
    }
  },
  "$defs": {
    "dependency": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "version": {"type": "string"},
        "git": {"type": "string", "minLength": 1},
        "rev": {"type": "string"},
        "tag": {"type": "string"},
        "branch": {"type": "string"}
      }
    }
  }
}`

var (
	manifestSchemaOnce sync.Once
	manifestSchema     *jsonschema.Schema
	manifestSchemaErr  error
)

func compiledManifestSchema() (*jsonschema.Schema, error) {
	manifestSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource(manifestSchemaURL, strings.NewReader(manifestSchemaJSON)); err != nil {
			manifestSchemaErr = err
			return
		}
		manifestSchema, manifestSchemaErr = compiler.Compile(manifestSchemaURL)
	})
	return manifestSchema, manifestSchemaErr
}

// validateManifestDocument checks a decoded manifest against the schema and
// returns one issue per failing leaf.
func validateManifestDocument(doc any) ([]string, error) {
	schema, err := compiledManifestSchema()
	if err != nil {
		return nil, fmt.Errorf("manifest: compile schema: %w", err)
	}
	normalized, err := normalizeJSON(doc)
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(normalized); err != nil {
		ve, ok := err.(*jsonschema.ValidationError)
		if !ok {
			return nil, err
		}
		var issues []string
		collectSchemaIssues(ve, &issues)
		return issues, nil
	}
	return nil, nil
}

func collectSchemaIssues(ve *jsonschema.ValidationError, out *[]string) {
	if len(ve.Causes) == 0 {
		location := ve.InstanceLocation
		if location == "" {
			location = "/"
		}
		*out = append(*out, fmt.Sprintf("%s: %s", location, ve.Message))
		return
	}
	for _, cause := range ve.Causes {
		collectSchemaIssues(cause, out)
	}
}

// normalizeJSON round-trips YAML-decoded data through encoding/json so the
// validator sees the same shapes it would for a JSON document.
func normalizeJSON(doc any) (any, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("manifest: normalise document: %w", err)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("manifest: normalise document: %w", err)
	}
	return out, nil
}
