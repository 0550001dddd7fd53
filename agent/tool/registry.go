package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/Chative-Flavia-Agent/agent/contract"
)

type entry struct {
	spec     Spec
	resolved *jsonschema.Resolved
}

// Registry is a fixed set of tools. It is built once and only read afterwards,
// so it is safe for concurrent use without locking.
type Registry struct {
	tools map[string]entry
	order []string
}

var _ contractx.ToolInvoker = (*Registry)(nil)

func NewRegistry(specs ...Spec) (*Registry, error) {
	r := &Registry{
		tools: make(map[string]entry, len(specs)),
		order: make([]string, 0, len(specs)),
	}
	for _, spec := range specs {
		if err := r.add(spec); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func MustNewRegistry(specs ...Spec) *Registry {
	r, err := NewRegistry(specs...)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Registry) add(spec Spec) error {
	name := strings.TrimSpace(spec.Name)
	if name == "" {
		return ErrEmptyName
	}
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, name)
	}
	if spec.Handler == nil {
		return fmt.Errorf("%w: %s", ErrNilHandler, name)
	}
	if spec.InputSchema == nil || spec.InputSchema.Type != "object" {
		return fmt.Errorf("%w: %s must take an object", ErrInvalidSchema, name)
	}
	resolved, err := spec.InputSchema.Resolve(&jsonschema.ResolveOptions{})
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidSchema, name, err)
	}

	spec.Name = name
	r.tools[name] = entry{spec: spec, resolved: resolved}
	r.order = append(r.order, name)
	return nil
}

// Invoke runs the named tool. Arguments that do not satisfy the tool's input
// schema are replaced with an empty object before the handler sees them.
func (r *Registry) Invoke(ctx context.Context, name string, args json.RawMessage) (string, error) {
	e, ok := r.tools[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	normalized, err := normalizeArgs(args, e.spec.InputSchema, e.resolved)
	if err != nil {
		log.Debug().
			Err(err).
			Str("tool", name).
			RawJSON("args", safeRaw(args)).
			Msg("tool arguments rejected, using empty arguments")
	}

	return e.spec.Handler(ctx, normalized)
}

func (r *Registry) Schema(name string) (*jsonschema.Schema, bool) {
	e, ok := r.tools[name]
	if !ok {
		return nil, false
	}
	return e.spec.InputSchema, true
}

func (r *Registry) Spec(name string) (Spec, bool) {
	e, ok := r.tools[name]
	return e.spec, ok
}

// Names lists tools in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

func (r *Registry) Specs() []Spec {
	specs := make([]Spec, 0, len(r.order))
	for _, name := range r.order {
		specs = append(specs, r.tools[name].spec)
	}
	return specs
}

func safeRaw(args json.RawMessage) []byte {
	if json.Valid(args) {
		return args
	}
	quoted, _ := json.Marshal(string(args))
	return quoted
}
