package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"AffairsRelay/internal/domain"
	"AffairsRelay/internal/ports"
)

const seenTable = "scraped_urls"

// SQLStore persists seen URLs into Postgres or SQLite.
type SQLStore struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.SeenStore = (*SQLStore)(nil)

// NewSQLStore wires a sql.DB; placeholders must match the driver
// (sq.Dollar for Postgres, sq.Question for SQLite).
func NewSQLStore(db *sql.DB, placeholder sq.PlaceholderFormat) *SQLStore {
	return &SQLStore{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(placeholder).RunWith(db),
	}
}

// Migrate creates the seen table if it is missing.
func (r *SQLStore) Migrate(ctx context.Context) error {
	if r.db == nil {
		return fmt.Errorf("sql store has no database")
	}

	query := `CREATE TABLE IF NOT EXISTS ` + seenTable + ` (
	              url        TEXT PRIMARY KEY,
	              scraped_at TIMESTAMP NOT NULL,
	              status     TEXT NOT NULL
	          )`
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("migrate seen table: %w", err)
	}
	return nil
}

// Seen reports whether the exact URL has a row.
func (r *SQLStore) Seen(ctx context.Context, url string) (bool, error) {
	var one int
	err := r.builder.
		Select("1").
		From(seenTable).
		Where(sq.Eq{"url": url}).
		Limit(1).
		QueryRowContext(ctx).
		Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query seen: %w", err)
	}
	return true, nil
}

// Save upserts processed rows for every URL.
func (r *SQLStore) Save(ctx context.Context, urls []string, scrapedAt time.Time) error {
	for _, u := range urls {
		_, err := r.builder.
			Insert(seenTable).
			Columns("url", "scraped_at", "status").
			Values(u, scrapedAt.UTC(), string(domain.StatusProcessed)).
			Suffix("ON CONFLICT (url) DO UPDATE SET scraped_at = EXCLUDED.scraped_at, status = EXCLUDED.status").
			ExecContext(ctx)
		if err != nil {
			return fmt.Errorf("upsert seen %s: %w", u, err)
		}
	}
	return nil
}

// Close releases the underlying pool.
func (r *SQLStore) Close(context.Context) error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}
