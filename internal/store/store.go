// Package store persists todos for the reference API server.
package store

import (
	"context"
	"errors"

	"github.com/Makepad-fr/tada-client/internal/model"
)

// ErrNotFound is returned for ids the store does not hold.
var ErrNotFound = errors.New("todo not found")

// Store is the persistence the /todos handler needs. Implementations assign
// ids and timestamps; inputs are validated by the caller.
type Store interface {
	List(ctx context.Context) ([]model.Todo, error)
	Get(ctx context.Context, id int) (model.Todo, error)
	Create(ctx context.Context, in model.Input) (model.Todo, error)
	Update(ctx context.Context, id int, in model.Input) (model.Todo, error)
	Delete(ctx context.Context, id int) error
	Close() error
}
