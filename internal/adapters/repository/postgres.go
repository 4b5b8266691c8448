package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okian/hourlyprobe/internal/domain/model"
)

const defaultMaxConns = 2

// PostgresReader selects rows of one table by request window.
type PostgresReader struct {
	db   Querier
	pool *pgxpool.Pool
}

// Open connects a pool to dsn. Close must be called when done.
func Open(ctx context.Context, dsn string, opts ...Option) (*PostgresReader, error) {
	o := &openOptions{maxConns: defaultMaxConns}
	for _, opt := range opts {
		opt(o)
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	cfg.MaxConns = o.maxConns

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	r := NewPostgresReader(pool)
	r.pool = pool
	return r, nil
}

// NewPostgresReader wraps an existing querier. The caller keeps ownership:
// Close is a no-op for readers built this way.
func NewPostgresReader(db Querier) *PostgresReader {
	return &PostgresReader{db: db}
}

// Close releases the pool when the reader opened it.
func (r *PostgresReader) Close() {
	if r.pool != nil {
		r.pool.Close()
	}
}

// SelectRows returns the rows of table inside filter.
func (r *PostgresReader) SelectRows(ctx context.Context, table string, filter model.RowFilter) ([]model.Row, error) {
	sql, args := BuildSelect(table, filter)

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrQuery, table, err)
	}
	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrQuery, table, err)
	}

	out := make([]model.Row, 0, len(maps))
	for _, m := range maps {
		for k, v := range m {
			m[k] = normalize(v)
		}
		out = append(out, model.Row(m))
	}
	return out, nil
}

// BuildSelect renders the same filter the REST API applies as SQL.
func BuildSelect(table string, filter model.RowFilter) (string, []any) {
	var b strings.Builder
	b.WriteString("SELECT * FROM ")
	b.WriteString(pgx.Identifier(strings.Split(table, ".")).Sanitize())
	b.WriteString(` WHERE "timestamp" >= $1 AND "timestamp" <= $2`)

	args := []any{filter.Window.Start, filter.Window.End}
	if filter.Latitude != nil {
		args = append(args, *filter.Latitude)
		b.WriteString(` AND "latitude" = $` + strconv.Itoa(len(args)))
	}
	if filter.Longitude != nil {
		args = append(args, *filter.Longitude)
		b.WriteString(` AND "longitude" = $` + strconv.Itoa(len(args)))
	}
	args = append(args, filter.EffectiveLimit())
	b.WriteString(` ORDER BY "timestamp" LIMIT $` + strconv.Itoa(len(args)))
	return b.String(), args
}

// normalize turns pgx native values into the shapes JSON decoding yields.
func normalize(v any) any {
	switch t := v.(type) {
	case pgtype.Numeric:
		f, err := t.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64
	case [16]byte:
		return uuid.UUID(t).String()
	default:
		return v
	}
}
