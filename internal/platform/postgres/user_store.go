package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/taskman-api/internal/domain"
	"github.com/phrazzld/taskman-api/internal/platform/logger"
	"github.com/phrazzld/taskman-api/internal/redact"
	"github.com/phrazzld/taskman-api/internal/store"
)

// PostgresUserStore implements store.UserStore.
type PostgresUserStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresUserStore creates a user store over db. A nil logger falls back
// to slog.Default.
func NewPostgresUserStore(db store.DBTX, logger *slog.Logger) *PostgresUserStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresUserStore{
		db:     db,
		logger: logger.With(slog.String("component", "user_store")),
	}
}

var _ store.UserStore = (*PostgresUserStore)(nil)

// WithTx implements store.UserStore.
func (s *PostgresUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return &PostgresUserStore{db: tx, logger: s.logger}
}

// Create implements store.UserStore.
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if user.HashedPassword == "" {
		return domain.NewValidationError("password", "must be hashed before storing", nil)
	}

	query := `
		INSERT INTO users (name, email, password, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := s.db.QueryRowContext(ctx, query,
		user.Name,
		user.Email,
		user.HashedPassword,
		user.CreatedBy,
		user.CreatedAt,
	).Scan(&user.ID)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Debug("email already registered")
			return store.ErrEmailExists
		}
		log.Error("failed to create user", slog.String("error", redact.Error(err)))
		return store.NewStoreError("user", "create", "insert failed", MapError(err))
	}

	log.Info("user created", slog.Int64("user_id", user.ID))
	return nil
}

const userColumns = `
		SELECT u.id, u.name, u.email, COALESCE(r.role, ''),
		       u.created_by, u.updated_by, u.created_at, u.updated_at
		FROM users u
		LEFT JOIN user_roles ur ON ur.user_id = u.id
		LEFT JOIN roles r ON r.id = ur.role_id`

func scanUser(row interface{ Scan(...any) error }) (*domain.User, error) {
	var (
		user      domain.User
		role      string
		createdBy sql.NullInt64
		updatedBy sql.NullInt64
		updatedAt sql.NullTime
	)
	if err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&role,
		&createdBy,
		&updatedBy,
		&user.CreatedAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}
	user.Role = domain.RoleName(role)
	user.CreatedBy = int64Ptr(createdBy)
	user.UpdatedBy = int64Ptr(updatedBy)
	user.UpdatedAt = timePtr(updatedAt)
	return &user, nil
}

// GetByID implements store.UserStore.
func (s *PostgresUserStore) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := scanUser(s.db.QueryRowContext(ctx, userColumns+" WHERE u.id = $1", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		log.Error("failed to get user by ID",
			slog.Int64("user_id", id),
			slog.String("error", redact.Error(err)))
		return nil, fmt.Errorf("failed to get user %d: %w", id, MapError(err))
	}
	return user, nil
}

// GetByEmail implements store.UserStore.
func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, name, email, password, created_at
		FROM users
		WHERE email = $1`

	var user domain.User
	err := s.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.HashedPassword,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		log.Error("failed to get user by email", slog.String("error", redact.Error(err)))
		return nil, fmt.Errorf("failed to get user by email: %w", MapError(err))
	}
	return &user, nil
}

// ExistsByEmail implements store.UserStore.
func (s *PostgresUserStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to check email",
			slog.String("error", redact.Error(err)))
		return false, fmt.Errorf("failed to check email: %w", MapError(err))
	}
	return exists, nil
}

func userFilter(q string) *whereBuilder {
	w := &whereBuilder{}
	if q != "" {
		w.add("u.name ILIKE ?", containsPattern(q))
	}
	return w
}

// List implements store.UserStore.
func (s *PostgresUserStore) List(ctx context.Context, q domain.ListQuery) ([]domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	w := userFilter(q.Q)
	query := userColumns + w.clause() + " ORDER BY u.id LIMIT " + w.next(q.Size) + " OFFSET " + w.next(q.Offset())

	rows, err := s.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		log.Error("failed to list users", slog.String("error", redact.Error(err)))
		return nil, fmt.Errorf("failed to list users: %w", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	users := []domain.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			log.Error("failed to scan user row", slog.String("error", redact.Error(err)))
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}
	return users, nil
}

// Count implements store.UserStore.
func (s *PostgresUserStore) Count(ctx context.Context, filter string) (int, error) {
	w := userFilter(filter)

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users u"+w.clause(), w.args...).Scan(&total); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to count users",
			slog.String("error", redact.Error(err)))
		return 0, fmt.Errorf("failed to count users: %w", MapError(err))
	}
	return total, nil
}

// Update implements store.UserStore.
func (s *PostgresUserStore) Update(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE users
		SET name = $1,
		    email = $2,
		    password = COALESCE(NULLIF($3::text, ''), password),
		    updated_by = $4,
		    updated_at = $5
		WHERE id = $6`

	result, err := s.db.ExecContext(ctx, query,
		user.Name,
		user.Email,
		user.HashedPassword,
		user.UpdatedBy,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return store.ErrEmailExists
		}
		log.Error("failed to update user",
			slog.Int64("user_id", user.ID),
			slog.String("error", redact.Error(err)))
		return store.NewStoreError("user", "update", "update failed", MapError(err))
	}

	if err := CheckRowsAffected(result, store.ErrUserNotFound); err != nil {
		return err
	}

	log.Info("user updated", slog.Int64("user_id", user.ID))
	return nil
}

// Delete implements store.UserStore.
func (s *PostgresUserStore) Delete(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete user",
			slog.Int64("user_id", id),
			slog.String("error", redact.Error(err)))
		return store.NewStoreError("user", "delete", "delete failed", MapError(err))
	}

	if err := CheckRowsAffected(result, store.ErrUserNotFound); err != nil {
		return err
	}

	log.Info("user deleted", slog.Int64("user_id", id))
	return nil
}
