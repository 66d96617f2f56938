package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/phrazzld/taskman-api/internal/domain"
	"github.com/phrazzld/taskman-api/internal/platform/logger"
	"github.com/phrazzld/taskman-api/internal/redact"
	"github.com/phrazzld/taskman-api/internal/service/auth"
	"github.com/phrazzld/taskman-api/internal/store"
)

// CreateUserInput carries the fields of a new user.
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
}

// UserService provides user administration.
type UserService interface {
	// List returns one page of users whose name contains q.Q.
	List(ctx context.Context, q domain.ListQuery) (domain.Page[domain.User], error)

	// Get returns a user by ID.
	Get(ctx context.Context, id int64) (*domain.User, error)

	// Create registers a user with role USER. createdBy is nil for signups.
	// Returns ErrUserExists when the email is taken; nothing is inserted then.
	Create(ctx context.Context, in CreateUserInput, createdBy *int64) (*domain.User, error)

	// Update applies the non-nil fields of patch.
	Update(ctx context.Context, id int64, patch domain.UserPatch, updatedBy int64) (*domain.User, error)

	// Delete removes the user's tasks, role assignments and the user itself
	// in one transaction.
	Delete(ctx context.Context, id int64) error
}

// UserServiceImpl implements UserService.
type UserServiceImpl struct {
	db        *sql.DB
	userStore store.UserStore
	roleStore store.RoleStore
	taskStore store.TaskStore
	hasher    auth.PasswordHasher
	logger    *slog.Logger
	now       func() time.Time
}

var _ UserService = (*UserServiceImpl)(nil)

// NewUserService creates a UserService. All dependencies are required.
func NewUserService(
	db *sql.DB,
	userStore store.UserStore,
	roleStore store.RoleStore,
	taskStore store.TaskStore,
	hasher auth.PasswordHasher,
	logger *slog.Logger,
) (*UserServiceImpl, error) {
	if db == nil || userStore == nil || roleStore == nil || taskStore == nil || hasher == nil {
		return nil, errors.New("user service: db, stores and hasher are required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UserServiceImpl{
		db:        db,
		userStore: userStore,
		roleStore: roleStore,
		taskStore: taskStore,
		hasher:    hasher,
		logger:    logger.With(slog.String("component", "user_service")),
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

// List implements UserService.
func (s *UserServiceImpl) List(ctx context.Context, q domain.ListQuery) (domain.Page[domain.User], error) {
	q = q.Normalize()

	users, err := s.userStore.List(ctx, q)
	if err != nil {
		return domain.Page[domain.User]{}, fmt.Errorf("failed to list users: %w", err)
	}
	total, err := s.userStore.Count(ctx, q.Q)
	if err != nil {
		return domain.Page[domain.User]{}, fmt.Errorf("failed to count users: %w", err)
	}
	return domain.NewPage(users, q, total), nil
}

// Get implements UserService.
func (s *UserServiceImpl) Get(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.userStore.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	return user, nil
}

// Create implements UserService.
func (s *UserServiceImpl) Create(ctx context.Context, in CreateUserInput, createdBy *int64) (*domain.User, error) {
	return s.CreateWithRole(ctx, in, domain.RoleUser, createdBy)
}

// CreateWithRole registers a user and assigns role in the same transaction.
// It backs the create-super command; API callers always get RoleUser.
func (s *UserServiceImpl) CreateWithRole(
	ctx context.Context,
	in CreateUserInput,
	role domain.RoleName,
	createdBy *int64,
) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := domain.NewUser(in.Name, in.Email, in.Password, createdBy)
	if err != nil {
		return nil, err
	}

	user.HashedPassword, err = s.hasher.Hash(user.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	user.Password = ""

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		users := s.userStore.WithTx(tx)

		exists, err := users.ExistsByEmail(ctx, user.Email)
		if err != nil {
			return err
		}
		if exists {
			return ErrUserExists
		}

		if err := users.Create(ctx, user); err != nil {
			if errors.Is(err, store.ErrEmailExists) {
				return ErrUserExists
			}
			return err
		}

		if err := s.roleStore.WithTx(tx).AssignRole(ctx, user.ID, role, createdBy); err != nil {
			return fmt.Errorf("failed to assign role %s: %w", role, err)
		}
		user.Role = role
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrUserExists) {
			log.Debug("attempted to create user with existing email")
			return nil, ErrUserExists
		}
		log.Error("failed to create user", slog.String("error", redact.Error(err)))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Info("user created", slog.Int64("user_id", user.ID), slog.String("role", string(role)))
	return user, nil
}

// Update implements UserService.
func (s *UserServiceImpl) Update(
	ctx context.Context,
	id int64,
	patch domain.UserPatch,
	updatedBy int64,
) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if patch.IsEmpty() {
		return nil, ErrEmptyUpdate
	}

	var newHash string
	if patch.Password != nil {
		if err := domain.ValidatePassword(*patch.Password); err != nil {
			return nil, err
		}
		hash, err := s.hasher.Hash(*patch.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to update user: %w", err)
		}
		newHash = hash
	}

	var updated *domain.User
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		users := s.userStore.WithTx(tx)

		user, err := users.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if patch.Name != nil {
			user.Name = strings.TrimSpace(*patch.Name)
		}
		if patch.Email != nil {
			email := domain.NormalizeEmail(*patch.Email)
			if email != user.Email {
				exists, err := users.ExistsByEmail(ctx, email)
				if err != nil {
					return err
				}
				if exists {
					return ErrUserExists
				}
			}
			user.Email = email
		}
		user.HashedPassword = newHash

		if user.Name == "" {
			return domain.NewValidationError("name", "is required", nil)
		}
		if err := domain.ValidateEmail(user.Email); err != nil {
			return err
		}

		now := s.now()
		user.UpdatedBy = &updatedBy
		user.UpdatedAt = &now

		if err := users.Update(ctx, user); err != nil {
			if errors.Is(err, store.ErrEmailExists) {
				return ErrUserExists
			}
			return err
		}
		user.HashedPassword = ""
		updated = user
		return nil
	})
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) && !errors.Is(err, ErrUserExists) && !errors.Is(err, domain.ErrValidation) {
			log.Error("failed to update user",
				slog.Int64("user_id", id),
				slog.String("error", redact.Error(err)))
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	log.Info("user updated", slog.Int64("user_id", id), slog.Int64("updated_by", updatedBy))
	return updated, nil
}

// Delete implements UserService.
func (s *UserServiceImpl) Delete(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var removedTasks int64
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		n, err := s.taskStore.WithTx(tx).DeleteByOwner(ctx, id)
		if err != nil {
			return err
		}
		removedTasks = n

		if err := s.roleStore.WithTx(tx).RemoveUserRoles(ctx, id); err != nil {
			return err
		}
		return s.userStore.WithTx(tx).Delete(ctx, id)
	})
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Error("failed to delete user",
				slog.Int64("user_id", id),
				slog.String("error", redact.Error(err)))
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	log.Info("user deleted", slog.Int64("user_id", id), slog.Int64("tasks_removed", removedTasks))
	return nil
}
