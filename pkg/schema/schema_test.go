package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type userContext struct {
	Name        string `json:"name" jsonschema_description:"The user's name."`
	Language    string `json:"language,omitempty" jsonschema_description:"Preferred language code."`
	Preferences string `json:"preferences,omitempty"`
}

func TestNew(t *testing.T) {
	t.Run("should compile a valid definition", func(t *testing.T) {
		c, err := New("Weather", "Weather report", map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"city": map[string]interface{}{"type": "string"},
			},
			"required": []string{"city"},
		})
		require.NoError(t, err)
		assert.Equal(t, "Weather", c.Name)
		assert.Equal(t, "Weather report", c.Description)
	})

	t.Run("should reject empty name", func(t *testing.T) {
		_, err := New("", "", map[string]interface{}{"type": "object"})
		assert.Error(t, err)
	})

	t.Run("should reject nil definition", func(t *testing.T) {
		_, err := New("Thing", "", nil)
		assert.Error(t, err)
	})

	t.Run("should default the description", func(t *testing.T) {
		c, err := New("Thing", "", map[string]interface{}{"type": "object"})
		require.NoError(t, err)
		assert.Contains(t, c.Description, "Thing")
	})
}

func TestFromStruct(t *testing.T) {
	t.Run("should name the contract after the struct type", func(t *testing.T) {
		c, err := FromStruct[userContext]()
		require.NoError(t, err)
		assert.Equal(t, "userContext", c.Name)
	})

	t.Run("should derive object properties from fields", func(t *testing.T) {
		c, err := FromStruct[userContext]()
		require.NoError(t, err)

		props, ok := c.Definition["properties"].(map[string]interface{})
		require.True(t, ok)
		assert.Contains(t, props, "name")
		assert.Contains(t, props, "language")
	})

	t.Run("should reject non-struct types", func(t *testing.T) {
		_, err := FromStruct[string]()
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	contract, err := FromStruct[userContext]()
	require.NoError(t, err)

	t.Run("should accept a conforming record", func(t *testing.T) {
		err := contract.Validate(map[string]interface{}{
			"name":     "Alice",
			"language": "fr",
		})
		assert.NoError(t, err)
	})

	t.Run("should reject a record missing required fields", func(t *testing.T) {
		err := contract.Validate(map[string]interface{}{
			"language": "fr",
		})
		assert.Error(t, err)
	})

	t.Run("should reject a record with wrong field types", func(t *testing.T) {
		err := contract.Validate(map[string]interface{}{
			"name": 42,
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "userContext")
	})
}

func TestJSON(t *testing.T) {
	contract, err := FromStruct[userContext]()
	require.NoError(t, err)

	out := contract.JSON()
	assert.Contains(t, out, `"properties"`)
	assert.Contains(t, out, `"name"`)
}
