package repositories

import (
	"database/sql"
	"delivery-delay-service/internal/domain"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// activeModel is the slot holding the parameters the server loads.
const activeModel = "delay"

// InitSchema creates the model and elaboration cache tables. The statements
// are valid for both SQLite and Postgres.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createModelParamsQuery := `
	CREATE TABLE IF NOT EXISTS model_params (
		slot TEXT PRIMARY KEY,
		params_id TEXT NOT NULL,
		trained_at TEXT NOT NULL,
		params TEXT NOT NULL
	);
	`

	createElaborationCacheQuery := `
	CREATE TABLE IF NOT EXISTS elaboration_cache (
		cache_key TEXT PRIMARY KEY,
		model TEXT NOT NULL,
		body TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_elaboration_cache_model
	ON elaboration_cache(model);
	`

	statements := []string{
		createModelParamsQuery,
		createElaborationCacheQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

// ReadParamsFile decodes and validates a JSON parameter file, e.g. one
// written by cmd/train, for import into a database store.
func ReadParamsFile(path string) (*domain.ModelParams, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read params: read %q: %w", path, err)
	}
	return decodeParams(bytes)
}

func decodeParams(data []byte) (*domain.ModelParams, error) {
	var params domain.ModelParams
	if err := json.Unmarshal(data, &params); err != nil {
		return nil, fmt.Errorf("decode params: parse json: %w", err)
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("decode params: %w", err)
	}
	return &params, nil
}

func encodeParams(params *domain.ModelParams) ([]byte, error) {
	if params == nil {
		return nil, errors.New("encode params: params are nil")
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("encode params: %w", err)
	}
	data, err := json.MarshalIndent(params, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode params: %w", err)
	}
	return data, nil
}
