package settings

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"attendance-notifier/internal/common/errors"
	"attendance-notifier/internal/common/logger"
)

// PostgresStore reads settings rows from a key/value table. The value column
// is JSONB in production; rows written by older versions of the admin UI may
// hold plain strings, which surface as Raw values.
type PostgresStore struct {
	db     *sql.DB
	table  string
	logger logger.Logger
}

func NewPostgresStore(db *sql.DB, table string, log logger.Logger) *PostgresStore {
	if table == "" {
		table = "settings"
	}
	return &PostgresStore{
		db:     db,
		table:  table,
		logger: log.WithFields(map[string]interface{}{"component": "settings-store"}),
	}
}

func (s *PostgresStore) Get(ctx context.Context, key string) (Value, bool, error) {
	query := fmt.Sprintf(`SELECT value FROM %s WHERE key = $1`, s.table)

	var stored string
	err := s.db.QueryRowContext(ctx, query, key).Scan(&stored)
	if err == sql.ErrNoRows {
		return Value{}, false, nil
	}
	if err != nil {
		return Value{}, false, errors.NewSettingsLookupFailedError(key, err)
	}

	return normalize(stored), true, nil
}

// normalize decides the union arm for a stored string: JSON objects become
// Structured, JSON string literals are unquoted to Raw, anything else stays Raw.
func normalize(stored string) Value {
	var m map[string]interface{}
	if err := json.Unmarshal([]byte(stored), &m); err == nil {
		return Structured(m)
	}
	var s string
	if err := json.Unmarshal([]byte(stored), &s); err == nil {
		return Raw(s)
	}
	return Raw(stored)
}
