package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ashiphsayyad32/Zenimax-microservice-app/domain"
)

// pgxPool is the subset of *pgxpool.Pool used by PgStore.
type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// Connect opens a pgx pool for dsn and verifies it answers.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return pool, nil
}

// PgStore is a PostgreSQL-backed category store.
type PgStore struct {
	pool pgxPool
}

// NewPgStore creates a PgStore.
func NewPgStore(pool pgxPool) *PgStore {
	return &PgStore{pool: pool}
}

// EnsureTable creates the categories table if it doesn't exist.
func (s *PgStore) EnsureTable(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS categories (
			id         BIGSERIAL PRIMARY KEY,
			name       TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return fmt.Errorf("ensure categories table: %w", err)
	}
	return nil
}

// ListCategories returns every category ordered by id.
func (s *PgStore) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, created_at, updated_at FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	cats := []domain.Category{}
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cats = append(cats, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

// InsertCategory stores a new category and returns it with its generated id.
func (s *PgStore) InsertCategory(ctx context.Context, name string) (domain.Category, error) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	c := domain.Category{Name: name, CreatedAt: now, UpdatedAt: now}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO categories (name, created_at, updated_at) VALUES ($1, $2, $2) RETURNING id`,
		name, now).Scan(&c.ID)
	if err != nil {
		return domain.Category{}, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

// Ping reports whether the database answers.
func (s *PgStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
