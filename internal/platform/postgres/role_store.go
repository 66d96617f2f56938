package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/taskman-api/internal/domain"
	"github.com/phrazzld/taskman-api/internal/platform/logger"
	"github.com/phrazzld/taskman-api/internal/redact"
	"github.com/phrazzld/taskman-api/internal/store"
)

// PostgresRoleStore implements store.RoleStore.
type PostgresRoleStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresRoleStore creates a role store over db. A nil logger falls back
// to slog.Default.
func NewPostgresRoleStore(db store.DBTX, logger *slog.Logger) *PostgresRoleStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresRoleStore{
		db:     db,
		logger: logger.With(slog.String("component", "role_store")),
	}
}

var _ store.RoleStore = (*PostgresRoleStore)(nil)

// WithTx implements store.RoleStore.
func (s *PostgresRoleStore) WithTx(tx *sql.Tx) store.RoleStore {
	return &PostgresRoleStore{db: tx, logger: s.logger}
}

// GetUserRole implements store.RoleStore.
func (s *PostgresRoleStore) GetUserRole(ctx context.Context, userID int64) (domain.RoleName, error) {
	query := `
		SELECT r.role
		FROM user_roles ur
		JOIN roles r ON r.id = ur.role_id
		WHERE ur.user_id = $1`

	var role string
	if err := s.db.QueryRowContext(ctx, query, userID).Scan(&role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", store.ErrRoleNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get user role",
			slog.Int64("user_id", userID),
			slog.String("error", redact.Error(err)))
		return "", fmt.Errorf("failed to get role of user %d: %w", userID, MapError(err))
	}
	return domain.RoleName(role), nil
}

// GetPermissions implements store.RoleStore.
func (s *PostgresRoleStore) GetPermissions(ctx context.Context, role domain.RoleName) ([]string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT p.permission
		FROM role_permissions rp
		JOIN roles r ON r.id = rp.role_id
		JOIN permissions p ON p.id = rp.permission_id
		WHERE r.role = $1
		ORDER BY p.permission`

	rows, err := s.db.QueryContext(ctx, query, string(role))
	if err != nil {
		log.Error("failed to query permissions",
			slog.String("role", string(role)),
			slog.String("error", redact.Error(err)))
		return nil, fmt.Errorf("failed to query permissions of %s: %w", role, MapError(err))
	}
	defer func() { _ = rows.Close() }()

	permissions := []string{}
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("failed to scan permission row: %w", err)
		}
		permissions = append(permissions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating permission rows: %w", err)
	}
	return permissions, nil
}

// AssignRole implements store.RoleStore. The UNIQUE user_id constraint makes
// the upsert replace an existing assignment.
func (s *PostgresRoleStore) AssignRole(
	ctx context.Context,
	userID int64,
	role domain.RoleName,
	assignedBy *int64,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO user_roles (user_id, role_id, created_by, created_at)
		SELECT $1, r.id, $3, $4
		FROM roles r
		WHERE r.role = $2
		ON CONFLICT (user_id) DO UPDATE
		SET role_id = EXCLUDED.role_id,
		    updated_by = EXCLUDED.created_by,
		    updated_at = EXCLUDED.created_at`

	result, err := s.db.ExecContext(ctx, query, userID, string(role), assignedBy, time.Now().UTC())
	if err != nil {
		log.Error("failed to assign role",
			slog.Int64("user_id", userID),
			slog.String("role", string(role)),
			slog.String("error", redact.Error(err)))
		return store.NewStoreError("user_role", "assign", "upsert failed", MapError(err))
	}

	if err := CheckRowsAffected(result, store.ErrRoleNotFound); err != nil {
		return err
	}

	log.Debug("role assigned", slog.Int64("user_id", userID), slog.String("role", string(role)))
	return nil
}

// RemoveUserRoles implements store.RoleStore.
func (s *PostgresRoleStore) RemoveUserRoles(ctx context.Context, userID int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM user_roles WHERE user_id = $1`, userID); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to remove user roles",
			slog.Int64("user_id", userID),
			slog.String("error", redact.Error(err)))
		return store.NewStoreError("user_role", "delete", "delete failed", MapError(err))
	}
	return nil
}
