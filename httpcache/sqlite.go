package httpcache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type responseRow struct {
	bun.BaseModel `bun:"table:http_responses,alias:r"`

	URL         string    `bun:"url,pk"`
	StatusCode  int       `bun:"status_code,notnull"`
	ContentType string    `bun:"content_type"`
	Body        []byte    `bun:"body"`
	FetchedAt   time.Time `bun:"fetched_at,notnull"`
	ExpiresAt   time.Time `bun:"expires_at,notnull"`
}

// SQLiteStore keeps responses in a single SQLite file.
type SQLiteStore struct {
	db *bun.DB
}

func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	sqldb, err := sql.Open(sqliteshim.ShimName, path)
	if err != nil {
		return nil, err
	}
	sqldb.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
		if _, err := sqldb.ExecContext(ctx, pragma); err != nil {
			sqldb.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())
	if _, err := db.NewCreateTable().Model((*responseRow)(nil)).IfNotExists().Exec(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create http_responses table: %w", err)
	}
	if _, err := db.NewCreateIndex().Model((*responseRow)(nil)).
		Index("http_responses_expires_at_idx").Column("expires_at").IfNotExists().Exec(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create expires_at index: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, url string) (*Entry, error) {
	row := new(responseRow)
	if err := s.db.NewSelect().Model(row).Where("url = ?", url).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMiss
		}
		return nil, err
	}
	return &Entry{
		URL:         row.URL,
		StatusCode:  row.StatusCode,
		ContentType: row.ContentType,
		Body:        row.Body,
		FetchedAt:   row.FetchedAt,
		ExpiresAt:   row.ExpiresAt,
	}, nil
}

func (s *SQLiteStore) Set(ctx context.Context, e *Entry) error {
	row := &responseRow{
		URL:         e.URL,
		StatusCode:  e.StatusCode,
		ContentType: e.ContentType,
		Body:        e.Body,
		FetchedAt:   e.FetchedAt.UTC(),
		ExpiresAt:   e.ExpiresAt.UTC(),
	}
	_, err := s.db.NewInsert().Model(row).
		On("CONFLICT (url) DO UPDATE").
		Set("status_code = EXCLUDED.status_code").
		Set("content_type = EXCLUDED.content_type").
		Set("body = EXCLUDED.body").
		Set("fetched_at = EXCLUDED.fetched_at").
		Set("expires_at = EXCLUDED.expires_at").
		Exec(ctx)
	return err
}

func (s *SQLiteStore) Delete(ctx context.Context, url string) error {
	_, err := s.db.NewDelete().Model((*responseRow)(nil)).Where("url = ?", url).Exec(ctx)
	return err
}

func (s *SQLiteStore) Purge(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.NewDelete().Model((*responseRow)(nil)).Where("expires_at < ?", before.UTC()).Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *SQLiteStore) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.NewDelete().Model((*responseRow)(nil)).Where("1 = 1").Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Count returns the number of stored entries.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	return s.db.NewSelect().Model((*responseRow)(nil)).Count(ctx)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
