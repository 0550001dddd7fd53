package contract

import (
	"context"
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"
)

type Router interface {
	Route(text string) RouteDecision
}

type ToolInvoker interface {
	Invoke(ctx context.Context, name string, args json.RawMessage) (string, error)
	Schema(name string) (*jsonschema.Schema, bool)
}

// Extractor builds the argument record for a tool call from the user text.
// Implementations that talk to a model wrap transport failures in ErrModelInvoke.
type Extractor interface {
	Extract(ctx context.Context, req ExtractRequest) (json.RawMessage, error)
}
