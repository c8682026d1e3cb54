package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/xeipuuv/gojsonschema"
)

// Contract pairs a named JSON schema with its compiled validator. The agent
// exposes a contract to the model as a synthetic tool and validates the
// model's arguments against it; the memory store uses one to validate
// records on write.
type Contract struct {
	Name        string
	Description string
	Definition  map[string]interface{}

	compiled *gojsonschema.Schema
}

var structReflector = jsonschema.Reflector{
	AllowAdditionalProperties: true,
	DoNotReference:            true,
}

// New builds a contract from a raw JSON schema definition.
func New(name, description string, definition map[string]interface{}) (*Contract, error) {
	if name == "" {
		return nil, errors.New("contract name cannot be empty")
	}
	if definition == nil {
		return nil, errors.New("contract definition cannot be nil")
	}

	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(definition))
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema %q: %w", name, err)
	}

	if description == "" {
		description = fmt.Sprintf("Structured output: %s", name)
	}

	return &Contract{
		Name:        name,
		Description: description,
		Definition:  definition,
		compiled:    compiled,
	}, nil
}

// FromStruct derives a contract from a Go struct type. The contract name is
// the struct type name and field descriptions come from jsonschema tags.
func FromStruct[T any]() (*Contract, error) {
	var zero T
	typ := reflect.TypeOf(zero)
	if typ == nil || typ.Kind() != reflect.Struct {
		return nil, errors.New("contract source must be a struct type")
	}

	reflected := structReflector.Reflect(zero)

	raw, err := json.Marshal(reflected)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize reflected schema: %w", err)
	}

	definition := map[string]interface{}{}
	if err := json.Unmarshal(raw, &definition); err != nil {
		return nil, fmt.Errorf("failed to decode reflected schema: %w", err)
	}
	delete(definition, "$schema")
	delete(definition, "$id")

	description, _ := definition["description"].(string)

	return New(typ.Name(), description, definition)
}

// Validate checks a candidate record against the contract. The returned
// error aggregates every schema violation.
func (c *Contract) Validate(record map[string]interface{}) error {
	result, err := c.compiled.Validate(gojsonschema.NewGoLoader(record))
	if err != nil {
		return fmt.Errorf("schema validation for %q: %w", c.Name, err)
	}
	if result.Valid() {
		return nil
	}

	violations := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		violations = append(violations, desc.String())
	}
	return fmt.Errorf("record does not satisfy schema %q: %s", c.Name, strings.Join(violations, "; "))
}

// JSON returns the schema definition serialized for embedding in prompts.
func (c *Contract) JSON() string {
	raw, err := json.Marshal(c.Definition)
	if err != nil {
		return "{}"
	}
	return string(raw)
}
