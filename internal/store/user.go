package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/taskman-api/internal/domain"
)

// UserStore defines the persistence of users.
type UserStore interface {
	// Create inserts a user whose password has already been hashed and sets
	// user.ID and user.CreatedAt from the stored row.
	// Returns ErrEmailExists if the email is already taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID returns a user with its role name, without the password hash.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id int64) (*domain.User, error)

	// GetByEmail returns a user including the password hash.
	// Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// ExistsByEmail reports whether any user holds email.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// List returns one page of users whose name contains q.Q, ordered by id.
	List(ctx context.Context, q domain.ListQuery) ([]domain.User, error)

	// Count returns the number of users whose name contains filter.
	Count(ctx context.Context, filter string) (int, error)

	// Update writes name, email, password hash and the update audit fields.
	// An empty HashedPassword keeps the stored hash.
	// Returns ErrUserNotFound if the user does not exist and ErrEmailExists
	// if the new email is taken.
	Update(ctx context.Context, user *domain.User) error

	// Delete removes the user row only. Tasks and role assignments must be
	// removed first. Returns ErrUserNotFound if the user does not exist.
	Delete(ctx context.Context, id int64) error

	// WithTx returns a UserStore bound to tx.
	WithTx(tx *sql.Tx) UserStore
}
