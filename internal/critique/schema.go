package critique

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// Schema returns the JSON Schema of the parsed critique document.
func Schema() *jsonschema.Schema {
	r := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	s := r.Reflect(&Data{})
	s.Title = "CritiqueData"
	s.Description = "Structured decomposition of a chapter critique"
	return s
}

// SchemaJSON is Schema rendered as indented JSON.
func SchemaJSON() ([]byte, error) {
	return json.MarshalIndent(Schema(), "", "  ")
}
