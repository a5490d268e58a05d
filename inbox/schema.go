package inbox

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// ThreadSchema returns the JSON Schema of a thread file as ParseThread accepts it.
// Extra properties are allowed since exporters add fields over time.
func ThreadSchema() (map[string]any, error) {
	return generateSchema[ConversationRecord]()
}

func generateSchema[T any]() (map[string]any, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  true,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	var v T
	return schemaToMap(reflector.Reflect(v))
}

func schemaToMap(schema *jsonschema.Schema) (map[string]any, error) {
	b, err := schema.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}
