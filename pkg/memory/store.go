package memory

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/anara-ai/anara/internal/observability"
	"github.com/anara-ai/anara/pkg/schema"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

const defaultUpdatePrompt = "Update the stored record with everything learned about the user in this conversation. Keep existing values unless the conversation contradicts them."

// Record is one stored memory row with its bookkeeping columns.
type Record struct {
	ID        string                 `json:"id"`
	Data      map[string]interface{} `json:"data"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// Store persists schema-validated records in SQLite, scoped by agent and
// contract. It satisfies the runner's MemoryStore interface; a Store may be
// shared across concurrent runs.
type Store struct {
	db           *sql.DB
	agentID      string
	contract     *schema.Contract
	updatePrompt string
	logger       zerolog.Logger
}

// Config holds memory store configuration.
type Config struct {
	// Path is the SQLite database file.
	Path string
	// AgentID namespaces records so multiple agents can share one file.
	AgentID string
	// Contract describes and validates the record shape.
	Contract *schema.Contract
	// UpdatePrompt overrides the default memory-update instruction.
	UpdatePrompt string
	// Logger receives store logs.
	Logger zerolog.Logger
}

// New creates a memory store, opening the database and creating the table
// if needed.
func New(cfg Config) (*Store, error) {
	observability.EnsureRegistered()

	if cfg.Path == "" {
		return nil, errors.New("database path is required")
	}
	if cfg.AgentID == "" {
		return nil, errors.New("agent id is required")
	}
	if cfg.Contract == nil {
		return nil, errors.New("record contract is required")
	}

	db, err := sql.Open("sqlite3", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	s := &Store{
		db:           db,
		agentID:      cfg.AgentID,
		contract:     cfg.Contract,
		updatePrompt: cfg.UpdatePrompt,
		logger:       cfg.Logger,
	}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	s.logger.Info().
		Str("path", cfg.Path).
		Str("agent_id", cfg.AgentID).
		Str("schema", cfg.Contract.Name).
		Msg("Memory store initialized")
	return s, nil
}

func (s *Store) initSchema() error {
	ddl := `
		CREATE TABLE IF NOT EXISTS memory (
			id TEXT NOT NULL,
			agent_id TEXT NOT NULL,
			schema_name TEXT NOT NULL,
			data TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (id, agent_id, schema_name)
		);
	`
	_, err := s.db.Exec(ddl)
	return err
}

// Get returns the record stored under id, reporting whether one exists.
func (s *Store) Get(ctx context.Context, id string) (map[string]interface{}, bool, error) {
	start := time.Now()

	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM memory WHERE id = ? AND agent_id = ? AND schema_name = ?`,
		id, s.agentID, s.contract.Name,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read memory record: %w", err)
	}

	var record map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return nil, false, fmt.Errorf("failed to decode memory record %q: %w", id, err)
	}

	observability.RecordMemoryRead(time.Since(start))
	return record, true, nil
}

// Put validates record against the contract and upserts it under id.
func (s *Store) Put(ctx context.Context, id string, record map[string]interface{}) error {
	if id == "" {
		return errors.New("memory id cannot be empty")
	}
	if err := s.contract.Validate(record); err != nil {
		return fmt.Errorf("record rejected by contract %q: %w", s.contract.Name, err)
	}

	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode memory record: %w", err)
	}

	start := time.Now()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO memory (id, agent_id, schema_name, data, created_at, updated_at)
		 VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		 ON CONFLICT (id, agent_id, schema_name)
		 DO UPDATE SET data = excluded.data, updated_at = CURRENT_TIMESTAMP`,
		id, s.agentID, s.contract.Name, string(raw),
	)
	if err != nil {
		return fmt.Errorf("failed to write memory record: %w", err)
	}

	observability.RecordMemoryWrite(time.Since(start))
	s.logger.Debug().Str("memory_id", id).Msg("Memory record written")
	return nil
}

// Delete removes the record stored under id. Deleting a missing record is
// not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM memory WHERE id = ? AND agent_id = ? AND schema_name = ?`,
		id, s.agentID, s.contract.Name,
	)
	if err != nil {
		return fmt.Errorf("failed to delete memory record: %w", err)
	}
	return nil
}

// List returns every record in this store's scope, oldest first.
func (s *Store) List(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, data, created_at, updated_at FROM memory
		 WHERE agent_id = ? AND schema_name = ?
		 ORDER BY created_at`,
		s.agentID, s.contract.Name,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list memory records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var record Record
		var raw string
		if err := rows.Scan(&record.ID, &raw, &record.CreatedAt, &record.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan memory record: %w", err)
		}
		if err := json.Unmarshal([]byte(raw), &record.Data); err != nil {
			return nil, fmt.Errorf("failed to decode memory record %q: %w", record.ID, err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// Contract returns the record contract.
func (s *Store) Contract() *schema.Contract {
	return s.contract
}

// UpdatePrompt returns the memory-update instruction.
func (s *Store) UpdatePrompt() string {
	if s.updatePrompt != "" {
		return s.updatePrompt
	}
	return defaultUpdatePrompt
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
