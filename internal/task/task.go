// Package task defines the todo item and the store contract.
package task

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Task is a todo item
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Draft is the payload for creating a task. Absent fields are stored empty.
type Draft struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Patch is a partial or full update. Nil fields are left unchanged.
type Patch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Apply returns t with the patch's non-nil fields applied.
// ID and CreatedAt never change.
func (p Patch) Apply(t Task) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	return t
}

// ErrNotConnected is returned when a store has no live connection
var ErrNotConnected = errors.New("store not connected")

// Store persists tasks in a single collection.
//
// Update returns (nil, nil) for an unknown id. Delete of an unknown id is not
// an error. List returns a non-nil slice in the store's natural order.
type Store interface {
	Create(ctx context.Context, d Draft) (*Task, error)
	List(ctx context.Context) ([]Task, error)
	Update(ctx context.Context, id string, p Patch) (*Task, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
	Close() error
}

// New builds a task from d with a fresh id and creation time.
// Stores call it so every driver assigns ids the same way.
func New(d Draft, now time.Time) Task {
	return Task{
		ID:          uuid.NewString(),
		Title:       d.Title,
		Description: d.Description,
		CreatedAt:   now.UTC().Truncate(time.Millisecond),
	}
}
