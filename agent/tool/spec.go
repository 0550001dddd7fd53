package tool

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cloudwego/eino/schema"
	"github.com/google/jsonschema-go/jsonschema"
)

// Handler executes a tool with already validated arguments.
type Handler func(ctx context.Context, args json.RawMessage) (string, error)

type Spec struct {
	Name        string
	Description string
	InputSchema *jsonschema.Schema
	Handler     Handler
}

// NewStub builds a Spec whose input schema is derived from T. Arguments that
// cannot be decoded into T fall back to T's zero value, so fn always runs.
func NewStub[T any](name, description string, fn func(ctx context.Context, in T) string) (Spec, error) {
	inputSchema, err := jsonschema.For[T](&jsonschema.ForOptions{})
	if err != nil {
		return Spec{}, fmt.Errorf("%w: %s: %v", ErrInvalidSchema, name, err)
	}
	return Spec{
		Name:        name,
		Description: description,
		InputSchema: inputSchema,
		Handler: func(ctx context.Context, args json.RawMessage) (string, error) {
			var in T
			if err := DecodeJSON(args, &in); err != nil {
				var zero T
				in = zero
			}
			return fn(ctx, in), nil
		},
	}, nil
}

func MustStub[T any](name, description string, fn func(ctx context.Context, in T) string) Spec {
	spec, err := NewStub(name, description, fn)
	if err != nil {
		panic(err)
	}
	return spec
}

// ToolInfo describes the spec in the shape chat models expect for tool binding.
func (s Spec) ToolInfo() *schema.ToolInfo {
	required := make(map[string]bool)
	if s.InputSchema != nil {
		for _, name := range s.InputSchema.Required {
			required[name] = true
		}
	}

	params := make(map[string]*schema.ParameterInfo)
	if s.InputSchema != nil {
		for name, prop := range s.InputSchema.Properties {
			params[name] = &schema.ParameterInfo{
				Type:     dataType(prop),
				Desc:     prop.Description,
				Required: required[name],
			}
		}
	}

	return &schema.ToolInfo{
		Name:        s.Name,
		Desc:        s.Description,
		ParamsOneOf: schema.NewParamsOneOfByParams(params),
	}
}

func dataType(prop *jsonschema.Schema) schema.DataType {
	if prop == nil {
		return schema.String
	}
	switch prop.Type {
	case "number":
		return schema.Number
	case "integer":
		return schema.Integer
	case "boolean":
		return schema.Boolean
	case "object":
		return schema.Object
	case "array":
		return schema.Array
	default:
		return schema.String
	}
}
