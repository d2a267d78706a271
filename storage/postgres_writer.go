package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"sjsage522/estatecrawler/internal/crawler"
)

// PostgresWriter mirrors newly added listings into a Postgres table
type PostgresWriter struct {
	pool *pgxpool.Pool
}

// NewPostgresWriter connects to the database behind dsn
func NewPostgresWriter(ctx context.Context, dsn string) (*PostgresWriter, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect postgres: %w", err)
	}

	return &PostgresWriter{pool: pool}, nil
}

func (w *PostgresWriter) Close() {
	if w.pool != nil {
		w.pool.Close()
	}
}

// EnsureSchema creates the listings table. The unique constraint spans the
// same five columns as the dataset key.
func (w *PostgresWriter) EnsureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	sql := `
	CREATE TABLE IF NOT EXISTS listings (
		id BIGSERIAL PRIMARY KEY,
		price TEXT NOT NULL,
		area TEXT NOT NULL,
		bedrooms TEXT NOT NULL,
		bathrooms TEXT NOT NULL,
		location TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (price, area, bedrooms, bathrooms, location)
	);

	CREATE INDEX IF NOT EXISTS idx_listings_location ON listings(location);
	`

	if _, err := w.pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}

	return nil
}

// WriteBatch inserts listings, skipping rows already stored, and returns
// how many rows were inserted
func (w *PostgresWriter) WriteBatch(ctx context.Context, listings []crawler.Listing) (int64, error) {
	if len(listings) == 0 {
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	batch := &pgx.Batch{}
	insertSQL := `
	INSERT INTO listings (price, area, bedrooms, bathrooms, location)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (price, area, bedrooms, bathrooms, location) DO NOTHING;
	`

	for _, l := range listings {
		batch.Queue(insertSQL, l.Price, l.Area, l.Bedrooms, l.Bathrooms, l.Location)
	}

	results := w.pool.SendBatch(ctx, batch)
	defer results.Close()

	var inserted int64
	for i := 0; i < len(listings); i++ {
		tag, err := results.Exec()
		if err != nil {
			return inserted, fmt.Errorf("batch insert failed at row %d: %w", i, err)
		}
		inserted += tag.RowsAffected()
	}

	return inserted, nil
}

// Count returns the number of stored listings
func (w *PostgresWriter) Count(ctx context.Context) (int64, error) {
	var n int64
	err := w.pool.QueryRow(ctx, `SELECT COUNT(*) FROM listings`).Scan(&n)
	return n, err
}
