package catalog

import (
	"encoding/json"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cuejson "cuelang.org/go/encoding/json"
	"cuelang.org/go/encoding/jsonschema"
)

// BundleState is a parsed ad bundle: a catalog identity plus ads grouped
// by category.
type BundleState struct {
	CatalogID  string              `json:"catalogId"`
	Categories map[string][]AdInfo `json:"categories"`
}

// ParseBundle validates raw bundle JSON against the given JSON schema and
// decodes it. The schema comes from the host (LoadJsonSchema); an empty
// schema skips validation and only decodes.
func ParseBundle(raw, schema string) (BundleState, error) {
	if schema != "" {
		if err := validateAgainstSchema(raw, schema); err != nil {
			return BundleState{}, fmt.Errorf("bundle does not match schema: %w", err)
		}
	}

	var state BundleState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return BundleState{}, fmt.Errorf("parse bundle: %w", err)
	}

	return state, nil
}

// validateAgainstSchema checks JSON data against a JSON-schema document
// by extracting the schema into CUE and unifying it with the data.
func validateAgainstSchema(raw, schema string) error {
	ctx := cuecontext.New()

	schemaValue := ctx.CompileString(schema)
	if err := schemaValue.Err(); err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}

	file, err := jsonschema.Extract(schemaValue, &jsonschema.Config{})
	if err != nil {
		return fmt.Errorf("extract schema: %w", err)
	}

	constraint := ctx.BuildFile(file)
	if err := constraint.Err(); err != nil {
		return fmt.Errorf("build schema: %w", err)
	}

	expr, err := cuejson.Extract("bundle.json", []byte(raw))
	if err != nil {
		return fmt.Errorf("parse data: %w", err)
	}

	data := ctx.BuildExpr(expr)
	if err := data.Err(); err != nil {
		return fmt.Errorf("build data: %w", err)
	}

	if err := constraint.Unify(data).Validate(cue.Concrete(true)); err != nil {
		return err
	}

	return nil
}

// DefaultBundleSchema is the JSON schema for bundle payloads, served by
// reference hosts under the bundle schema name.
const DefaultBundleSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["catalogId", "categories"],
	"properties": {
		"catalogId": {"type": "string"},
		"categories": {
			"type": "object",
			"additionalProperties": {
				"type": "array",
				"items": {
					"type": "object",
					"required": ["uuid", "creativeSetId", "advertiser", "notificationText", "notificationUrl"],
					"properties": {
						"uuid": {"type": "string"},
						"creativeSetId": {"type": "string"},
						"advertiser": {"type": "string"},
						"notificationText": {"type": "string"},
						"notificationUrl": {"type": "string"},
						"category": {"type": "string"},
						"region": {"type": "string"}
					}
				}
			}
		}
	}
}`
