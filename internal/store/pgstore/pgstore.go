// Package pgstore keeps each task as a JSONB document in PostgreSQL via pgx.
package pgstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fluxorio/todolist/internal/task"
	"github.com/fluxorio/todolist/pkg/db"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createTable = `CREATE TABLE IF NOT EXISTS todo_documents (
	id  TEXT PRIMARY KEY,
	doc JSONB NOT NULL
)`

// document is the stored JSON body; the id lives in its own column
type document struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Store is a task.Store backed by a pgx pool
type Store struct {
	pool   *pgxpool.Pool
	now    func() time.Time
	schema *db.Schema
}

// Open parses dsn and creates a pool. Connections are established on demand,
// so an unreachable server is reported by Ping or the first operation.
func Open(ctx context.Context, dsn string, maxConns int32) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pgx dsn: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	s := &Store{pool: pool, now: time.Now}
	s.schema = db.NewSchema(s.createTable)
	return s, nil
}

func (s *Store) ensureSchema(ctx context.Context) error {
	return s.schema.Ensure(ctx)
}

func (s *Store) createTable(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, createTable); err != nil {
		return fmt.Errorf("create todo_documents table: %w", err)
	}
	return nil
}

func (s *Store) Create(ctx context.Context, d task.Draft) (*task.Task, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}

	t := task.New(d, s.now())
	_, err := s.pool.Exec(ctx,
		"INSERT INTO todo_documents (id, doc) VALUES ($1, $2)",
		t.ID, document{Title: t.Title, Description: t.Description, CreatedAt: t.CreatedAt})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Store) List(ctx context.Context) ([]task.Task, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, "SELECT id, doc FROM todo_documents")
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

// Update merges the patch into the stored document with jsonb concatenation,
// one statement per update.
func (s *Store) Update(ctx context.Context, id string, p task.Patch) (*task.Task, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}

	row := s.pool.QueryRow(ctx,
		"UPDATE todo_documents SET doc = doc || $2::jsonb WHERE id = $1 RETURNING id, doc",
		id, p)

	t, err := scanTask(row)
	if errors.Is(err, pgx.ErrNoRows) {
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
	_, err := s.pool.Exec(ctx, "DELETE FROM todo_documents WHERE id = $1", id)
	return err
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func scanTask(row pgx.Row) (task.Task, error) {
	var (
		id  string
		doc document
	)
	if err := row.Scan(&id, &doc); err != nil {
		return task.Task{}, err
	}
	return task.Task{
		ID:          id,
		Title:       doc.Title,
		Description: doc.Description,
		CreatedAt:   doc.CreatedAt.UTC(),
	}, nil
}
