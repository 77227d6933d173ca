// Package perf reads the performance_results table that offline evaluation
// runs produce. The core treats it as read-only; routing quality degrades
// gracefully when it is absent.
package perf

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/automenta/mcr/internal/logging"
)

// Row is one evaluation result for a strategy under a model and input type.
type Row struct {
	StrategyHash string
	LLMModelID   string
	InputType    string
	Metrics      map[string]interface{}
	LatencyMS    int64
	Cost         map[string]interface{}
}

// MetricTrue reports whether a named metric is set (boolean true or a
// non-zero number; evaluation runs have written both shapes).
func (r Row) MetricTrue(name string) bool {
	v, ok := r.Metrics[name]
	if !ok {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	default:
		return false
	}
}

// TokenCount extracts the total token count from the cost document,
// accepting the field spellings seen in the wild.
func (r Row) TokenCount() int64 {
	for _, key := range []string{"tokenCount", "totalTokens", "total_tokens"} {
		if v, ok := r.Cost[key]; ok {
			if f, ok := v.(float64); ok {
				return int64(f)
			}
		}
	}
	return 0
}

// DB is a read-only handle on the performance database.
type DB struct {
	db *sql.DB
}

// Open opens the SQLite database at path.
func Open(path string) (*DB, error) {
	if path == "" {
		return nil, fmt.Errorf("performance db path must not be empty")
	}
	db, err := sql.Open("sqlite3", path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open performance db: %w", err)
	}
	return &DB{db: db}, nil
}

// OpenWritable opens the database read-write. Only evaluation tooling and
// tests need this.
func OpenWritable(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open performance db: %w", err)
	}
	return &DB{db: db}, nil
}

// Close releases the underlying handle.
func (d *DB) Close() error {
	return d.db.Close()
}

// ResultsFor returns all rows for the given model and input type. Rows with
// an empty or NULL llm_model_id apply to every model.
func (d *DB) ResultsFor(ctx context.Context, modelID, inputType string) ([]Row, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT strategy_hash, COALESCE(llm_model_id, ''), input_type, metrics, latency_ms, cost
		 FROM performance_results
		 WHERE (llm_model_id = ? OR llm_model_id IS NULL OR llm_model_id = '')
		   AND input_type = ?`,
		modelID, inputType,
	)
	if err != nil {
		return nil, fmt.Errorf("query performance_results: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		var metricsJSON, costJSON string
		if err := rows.Scan(&r.StrategyHash, &r.LLMModelID, &r.InputType,
			&metricsJSON, &r.LatencyMS, &costJSON); err != nil {
			return nil, fmt.Errorf("scan performance row: %w", err)
		}
		if err := json.Unmarshal([]byte(metricsJSON), &r.Metrics); err != nil {
			logging.Get(logging.CategoryPerf).Warn("Skipping row with bad metrics JSON for %s: %v", r.StrategyHash, err)
			continue
		}
		if costJSON != "" {
			if err := json.Unmarshal([]byte(costJSON), &r.Cost); err != nil {
				logging.Get(logging.CategoryPerf).Warn("Bad cost JSON for %s: %v", r.StrategyHash, err)
				r.Cost = nil
			}
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate performance rows: %w", err)
	}
	logging.Get(logging.CategoryPerf).Debug("ResultsFor(%s, %s): %d rows", modelID, inputType, len(out))
	return out, nil
}

// InsertResult records one evaluation outcome. Used by evaluation tooling
// and tests, never by the serving path.
func (d *DB) InsertResult(ctx context.Context, r Row) error {
	metricsJSON, err := json.Marshal(r.Metrics)
	if err != nil {
		return fmt.Errorf("encode metrics: %w", err)
	}
	costJSON, err := json.Marshal(r.Cost)
	if err != nil {
		return fmt.Errorf("encode cost: %w", err)
	}
	_, err = d.db.ExecContext(ctx,
		`INSERT INTO performance_results (strategy_hash, llm_model_id, input_type, metrics, latency_ms, cost)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.StrategyHash, r.LLMModelID, r.InputType, string(metricsJSON), r.LatencyMS, string(costJSON),
	)
	return err
}

// EnsureSchema creates the performance_results table if missing.
func (d *DB) EnsureSchema(ctx context.Context) error {
	_, err := d.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS performance_results (
			strategy_hash TEXT NOT NULL,
			llm_model_id  TEXT,
			input_type    TEXT NOT NULL,
			metrics       TEXT NOT NULL,
			latency_ms    INTEGER NOT NULL DEFAULT 0,
			cost          TEXT
		)`)
	return err
}
