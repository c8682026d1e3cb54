// Package memory persists schema-validated agent records in SQLite.
//
// Invariants:
// - Records are scoped by (id, agent_id, schema_name); writes replace whole records.
// - Every write is validated against the store's contract before it lands.
// - Read and write latencies are recorded as metrics.
//
// Usage:
//
//	store, _ := memory.New(memory.Config{Path: "/data/anara.db", AgentID: "concierge", Contract: contract})
//	defer store.Close()
//	record, found, _ := store.Get(ctx, "user-1")
//	_ = record
//	_ = found
package memory
