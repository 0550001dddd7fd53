package tool

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/kaptinlin/jsonrepair"
)

// DecodeJSON unmarshals data into v and retries once through jsonrepair when
// the payload is syntactically broken.
func DecodeJSON(data []byte, v any) error {
	err := json.Unmarshal(data, v)
	if err == nil {
		return nil
	}
	var syntaxErr *json.SyntaxError
	if !errors.As(err, &syntaxErr) {
		return err
	}
	fixed, repairErr := jsonrepair.JSONRepair(string(data))
	if repairErr != nil {
		return err
	}
	return json.Unmarshal([]byte(fixed), v)
}

// normalizeArgs turns whatever the extractor produced into an argument
// object that satisfies schema, or EmptyArgs when it cannot.
func normalizeArgs(args json.RawMessage, schema *jsonschema.Schema, resolved *jsonschema.Resolved) (json.RawMessage, error) {
	if len(bytes.TrimSpace(args)) == 0 {
		return emptyArgs(), errEmptyArgs
	}

	var instance map[string]any
	if err := DecodeJSON(args, &instance); err != nil || instance == nil {
		return emptyArgs(), errNotAnObject
	}

	for key := range instance {
		if _, ok := schema.Properties[key]; !ok {
			delete(instance, key)
		}
	}

	if err := resolved.Validate(instance); err != nil {
		return emptyArgs(), err
	}

	out, err := json.Marshal(instance)
	if err != nil {
		return emptyArgs(), err
	}
	return out, nil
}

var (
	errEmptyArgs   = errors.New("arguments are empty")
	errNotAnObject = errors.New("arguments are not a JSON object")
)

func emptyArgs() json.RawMessage {
	return json.RawMessage(`{}`)
}
