package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/taskman-api/internal/domain"
)

// TaskFilter scopes task reads. A zero OwnerID matches tasks of every owner.
type TaskFilter struct {
	OwnerID int64
	Query   domain.ListQuery
}

// TaskStore defines the persistence of tasks.
type TaskStore interface {
	// Create inserts task, resolving its status name to a status id, and sets
	// task.ID and task.CreatedAt. Returns ErrStatusNotFound for an unseeded
	// status.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID returns the task with id. A non-zero ownerID restricts the
	// lookup to that owner. Returns ErrTaskNotFound otherwise.
	GetByID(ctx context.Context, id, ownerID int64) (*domain.Task, error)

	// List returns one page of tasks matching filter, ordered by id.
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, error)

	// Count returns the number of tasks matching filter, ignoring its window.
	Count(ctx context.Context, filter TaskFilter) (int, error)

	// Update writes title, status and the update audit fields.
	// Returns ErrTaskNotFound or ErrStatusNotFound.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes the task with id. A non-zero ownerID restricts the
	// delete to that owner. Returns ErrTaskNotFound if nothing was removed.
	Delete(ctx context.Context, id, ownerID int64) error

	// DeleteByOwner removes every task of a user and returns how many were
	// removed.
	DeleteByOwner(ctx context.Context, userID int64) (int64, error)

	// WithTx returns a TaskStore bound to tx.
	WithTx(tx *sql.Tx) TaskStore
}
