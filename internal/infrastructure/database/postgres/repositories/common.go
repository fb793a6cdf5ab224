// Package repositories holds the PostgreSQL implementations of the
// application's persistence ports.
package repositories

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/turtacn/Resonance-Intelligence/pkg/errors"
)

// queryExecutor is satisfied by both *sql.DB and *sql.Tx.
type queryExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// scanner is one result row.
type scanner interface {
	Scan(dest ...any) error
}

// Tag and skipped-source lists are stored as JSONB arrays. A nil list is
// written as [] so the column never holds SQL NULL.

func encodeList(v []string) ([]byte, error) {
	if v == nil {
		v = []string{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode list column")
	}
	return b, nil
}

func decodeList(b []byte, dst *[]string) error {
	if len(b) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode list column")
	}
	return nil
}

//Personal.AI order the ending
