package repositories

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/Resonance-Intelligence/internal/domain/analysis"
	"github.com/turtacn/Resonance-Intelligence/internal/infrastructure/database/postgres"
	"github.com/turtacn/Resonance-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Resonance-Intelligence/pkg/errors"
)

const defaultListLimit = 20

const analysisColumns = `id, key, version, candidate, opponent, base, location, age, gender,
	tags, skipped_sources, row_count, column_count, created_at`

// AnalysisRepository indexes analysis metadata. One row per artifact key; a
// rebuild of the same key replaces it.
type AnalysisRepository struct {
	conn     *postgres.Connection
	log      logging.Logger
	executor queryExecutor
	now      func() time.Time
}

func NewAnalysisRepository(conn *postgres.Connection, log logging.Logger) *AnalysisRepository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &AnalysisRepository{
		conn:     conn,
		log:      log.Named("analysis-repo"),
		executor: conn.DB(),
		now:      time.Now,
	}
}

func (r *AnalysisRepository) Save(ctx context.Context, meta *analysis.Metadata) error {
	if meta == nil || meta.Key == "" {
		return errors.New(errors.ErrCodeValidation, "analysis metadata requires a key")
	}
	if meta.ID == "" {
		meta.ID = uuid.NewString()
	}
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = r.now().UTC()
	}
	tags, err := encodeList(meta.Tags)
	if err != nil {
		return err
	}
	skipped, err := encodeList(meta.Skipped)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO analyses (
			id, key, version, candidate, opponent, base, location, age, gender,
			tags, skipped_sources, row_count, column_count, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (key) DO UPDATE SET
			version = EXCLUDED.version, candidate = EXCLUDED.candidate, opponent = EXCLUDED.opponent,
			base = EXCLUDED.base, location = EXCLUDED.location, age = EXCLUDED.age, gender = EXCLUDED.gender,
			tags = EXCLUDED.tags, skipped_sources = EXCLUDED.skipped_sources,
			row_count = EXCLUDED.row_count, column_count = EXCLUDED.column_count,
			created_at = EXCLUDED.created_at
		RETURNING id
	`
	err = r.executor.QueryRowContext(ctx, query,
		meta.ID, meta.Key, meta.Version, meta.Candidate, meta.Opponent, meta.Base, meta.Location,
		meta.Age, meta.Gender, tags, skipped, meta.Rows, meta.Columns, meta.CreatedAt,
	).Scan(&meta.ID)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to save analysis metadata")
	}
	r.log.Debug("analysis metadata saved", logging.AnalysisKey(meta.Key), logging.String("id", meta.ID))
	return nil
}

func (r *AnalysisRepository) FindByKey(ctx context.Context, key string) (*analysis.Metadata, error) {
	query := `SELECT ` + analysisColumns + ` FROM analyses WHERE key = $1`
	return scanAnalysis(r.executor.QueryRowContext(ctx, query, key), key)
}

// Latest returns the most recently built analysis.
func (r *AnalysisRepository) Latest(ctx context.Context) (*analysis.Metadata, error) {
	query := `SELECT ` + analysisColumns + ` FROM analyses ORDER BY created_at DESC LIMIT 1`
	return scanAnalysis(r.executor.QueryRowContext(ctx, query), "")
}

// List returns up to limit analyses, newest first.
func (r *AnalysisRepository) List(ctx context.Context, limit int) ([]*analysis.Metadata, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	query := `SELECT ` + analysisColumns + ` FROM analyses ORDER BY created_at DESC LIMIT $1`
	rows, err := r.executor.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list analyses")
	}
	defer rows.Close()

	var out []*analysis.Metadata
	for rows.Next() {
		m, err := scanAnalysis(rows, "")
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate analyses")
	}
	return out, nil
}

func scanAnalysis(row scanner, key string) (*analysis.Metadata, error) {
	var (
		m             analysis.Metadata
		tags, skipped []byte
	)
	err := row.Scan(&m.ID, &m.Key, &m.Version, &m.Candidate, &m.Opponent, &m.Base, &m.Location,
		&m.Age, &m.Gender, &tags, &skipped, &m.Rows, &m.Columns, &m.CreatedAt)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			if key == "" {
				return nil, errors.New(errors.ErrCodeAnalysisNotFound, "No candidate analysis found. Please run an analysis first.")
			}
			return nil, errors.New(errors.ErrCodeAnalysisNotFound, fmt.Sprintf("analysis %q not found", key))
		}
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to read analysis metadata")
	}
	if err := decodeList(tags, &m.Tags); err != nil {
		return nil, err
	}
	if err := decodeList(skipped, &m.Skipped); err != nil {
		return nil, err
	}
	return &m, nil
}

//Personal.AI order the ending
