// Package sqlstore persists tasks in a SQL table through database/sql.
// It runs on sqlite3 and postgres (lib/pq); both accept $n placeholders.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fluxorio/todolist/internal/task"
	"github.com/fluxorio/todolist/pkg/db"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const createTable = `CREATE TABLE IF NOT EXISTS todos (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	created_at  BIGINT NOT NULL
)`

const columns = "id, title, description, created_at"

// Store is a task.Store over a db.Pool
type Store struct {
	pool   *db.Pool
	now    func() time.Time
	schema *db.Schema
}

// New wraps pool. The table is created on first use so a database that is
// down at startup does not prevent the service from starting.
func New(pool *db.Pool) *Store {
	s := &Store{pool: pool, now: time.Now}
	s.schema = db.NewSchema(s.createTable)
	return s
}

// Open creates a pool for driver and dsn
func Open(driver, dsn string, maxConns int) (*Store, error) {
	cfg := db.DefaultPoolConfig(dsn, driver)
	if maxConns > 0 {
		cfg.MaxOpenConns = maxConns
		if cfg.MaxIdleConns > maxConns {
			cfg.MaxIdleConns = maxConns
		}
	}
	pool, err := db.NewPool(cfg)
	if err != nil {
		return nil, err
	}
	return New(pool), nil
}

// Pool returns the underlying pool
func (s *Store) Pool() *db.Pool {
	return s.pool
}

func (s *Store) ensureSchema(ctx context.Context) error {
	return s.schema.Ensure(ctx)
}

func (s *Store) createTable(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, createTable); err != nil {
		return fmt.Errorf("create todos table: %w", err)
	}
	return nil
}

func (s *Store) Create(ctx context.Context, d task.Draft) (*task.Task, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}

	t := task.New(d, s.now())
	_, err := s.pool.Exec(ctx,
		"INSERT INTO todos ("+columns+") VALUES ($1, $2, $3, $4)",
		t.ID, t.Title, t.Description, t.CreatedAt.UnixMilli())
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Store) List(ctx context.Context) ([]task.Task, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, "SELECT "+columns+" FROM todos")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]task.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// Update applies p in a single statement so concurrent updates never interleave
func (s *Store) Update(ctx context.Context, id string, p task.Patch) (*task.Task, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}

	row := s.pool.QueryRow(ctx,
		`UPDATE todos SET title = COALESCE($1, title), description = COALESCE($2, description)
		 WHERE id = $3 RETURNING `+columns,
		nullable(p.Title), nullable(p.Description), id)

	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx, "DELETE FROM todos WHERE id = $1", id)
	return err
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Close() error {
	return s.pool.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (task.Task, error) {
	var (
		t       task.Task
		created int64
	)
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &created); err != nil {
		return task.Task{}, err
	}
	t.CreatedAt = time.UnixMilli(created).UTC()
	return t, nil
}

func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
