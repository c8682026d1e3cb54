package tool

import (
	"context"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// Handler is the function signature for tool execution.
type Handler func(ctx context.Context, args map[string]interface{}) (string, error)

// Definition describes a callable tool: its wire schema plus the handler the
// dispatcher invokes.
type Definition struct {
	Name        string
	Description string
	Parameters  map[string]interface{}
	Handler     Handler
}

// Schema is the provider-agnostic description of a tool, sent to the model.
type Schema struct {
	Name        string
	Description string
	Parameters  map[string]interface{}
}

var emptyParameters = map[string]interface{}{
	"type":       "object",
	"properties": map[string]interface{}{},
}

// Registry stores tool definitions keyed by name. It is immutable after
// construction: every tool must be supplied to NewRegistry up front.
type Registry struct {
	defs       map[string]Definition
	validators map[string]*gojsonschema.Schema
	order      []string
}

// NewRegistry builds a registry from the given definitions. Parameter
// schemas are compiled eagerly so malformed tools fail at construction, not
// mid-run.
func NewRegistry(defs ...Definition) (*Registry, error) {
	r := &Registry{
		defs:       make(map[string]Definition, len(defs)),
		validators: make(map[string]*gojsonschema.Schema, len(defs)),
		order:      make([]string, 0, len(defs)),
	}

	for _, def := range defs {
		if def.Name == "" {
			return nil, fmt.Errorf("tool name cannot be empty")
		}
		if def.Handler == nil {
			return nil, fmt.Errorf("tool %q has no handler", def.Name)
		}
		if _, exists := r.defs[def.Name]; exists {
			return nil, fmt.Errorf("duplicate tool name: %s", def.Name)
		}

		if def.Parameters == nil {
			def.Parameters = emptyParameters
		}

		validator, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(def.Parameters))
		if err != nil {
			return nil, fmt.Errorf("failed to compile schema for tool %q: %w", def.Name, err)
		}

		r.defs[def.Name] = def
		r.validators[def.Name] = validator
		r.order = append(r.order, def.Name)
	}

	return r, nil
}

// Get returns the definition for a tool name.
func (r *Registry) Get(name string) (Definition, bool) {
	def, ok := r.defs[name]
	return def, ok
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.defs)
}

// Schemas returns every tool schema in registration order.
func (r *Registry) Schemas() []Schema {
	if r == nil {
		return nil
	}
	schemas := make([]Schema, 0, len(r.order))
	for _, name := range r.order {
		def := r.defs[name]
		schemas = append(schemas, Schema{
			Name:        def.Name,
			Description: def.Description,
			Parameters:  def.Parameters,
		})
	}
	return schemas
}

// Invoke validates args against the tool's parameter schema and runs its
// handler.
func (r *Registry) Invoke(ctx context.Context, name string, args map[string]interface{}) (string, error) {
	def, ok := r.defs[name]
	if !ok {
		return "", fmt.Errorf("unknown tool: %s", name)
	}

	if args == nil {
		args = map[string]interface{}{}
	}

	result, err := r.validators[name].Validate(gojsonschema.NewGoLoader(args))
	if err != nil {
		return "", fmt.Errorf("failed to validate arguments for %q: %w", name, err)
	}
	if !result.Valid() {
		first := result.Errors()[0]
		return "", fmt.Errorf("invalid arguments for %q: %s", name, first.String())
	}

	return def.Handler(ctx, args)
}
