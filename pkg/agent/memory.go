package agent

import (
	"context"

	"github.com/anara-ai/anara/pkg/schema"
)

// MemoryStore is the persistent scoped-record collaborator. The runner
// loads a record into the system prompt before the loop and writes an
// updated record after it; validation of records on write is the store's
// responsibility. Implementations may be shared across concurrent runs.
type MemoryStore interface {
	// Get returns the record stored under id, reporting whether one
	// exists.
	Get(ctx context.Context, id string) (map[string]interface{}, bool, error)
	// Put stores a record under id, replacing any previous one.
	Put(ctx context.Context, id string, record map[string]interface{}) error
	// Contract describes the record shape. The runner forces the
	// memory-update call to this contract's synthetic tool.
	Contract() *schema.Contract
	// UpdatePrompt is the instruction guiding the memory-update call.
	UpdatePrompt() string
}
