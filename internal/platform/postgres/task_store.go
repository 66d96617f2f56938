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

// PostgresTaskStore implements store.TaskStore.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a task store over db. A nil logger falls back
// to slog.Default.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

var _ store.TaskStore = (*PostgresTaskStore)(nil)

// WithTx implements store.TaskStore.
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{db: tx, logger: s.logger}
}

// Create implements store.TaskStore.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		return err
	}

	// The SELECT yields no row for an unseeded status, so nothing is inserted.
	query := `
		INSERT INTO tasks (title, user_id, status_id, created_by, created_at)
		SELECT $1, $2, ts.id, $4, $5
		FROM tasks_status ts
		WHERE ts.status = $3
		RETURNING id`

	err := s.db.QueryRowContext(ctx, query,
		task.Title,
		task.UserID,
		string(task.Status),
		task.CreatedBy,
		task.CreatedAt,
	).Scan(&task.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrStatusNotFound
		}
		log.Error("failed to create task",
			slog.Int64("user_id", task.UserID),
			slog.String("error", redact.Error(err)))
		return store.NewStoreError("task", "create", "insert failed", MapError(err))
	}

	log.Info("task created",
		slog.Int64("task_id", task.ID),
		slog.Int64("user_id", task.UserID))
	return nil
}

const taskColumns = `
		SELECT t.id, t.title, t.user_id, ts.status,
		       t.created_by, t.updated_by, t.created_at, t.updated_at
		FROM tasks t
		JOIN tasks_status ts ON ts.id = t.status_id`

func scanTask(row interface{ Scan(...any) error }) (*domain.Task, error) {
	var (
		task      domain.Task
		status    string
		createdBy sql.NullInt64
		updatedBy sql.NullInt64
		updatedAt sql.NullTime
	)
	if err := row.Scan(
		&task.ID,
		&task.Title,
		&task.UserID,
		&status,
		&createdBy,
		&updatedBy,
		&task.CreatedAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}
	task.Status = domain.TaskStatus(status)
	task.CreatedBy = int64Ptr(createdBy)
	task.UpdatedBy = int64Ptr(updatedBy)
	task.UpdatedAt = timePtr(updatedAt)
	return &task, nil
}

func taskFilter(ownerID int64, q string) *whereBuilder {
	w := &whereBuilder{}
	if ownerID != 0 {
		w.add("t.user_id = ?", ownerID)
	}
	if q != "" {
		w.add("t.title ILIKE ?", containsPattern(q))
	}
	return w
}

// GetByID implements store.TaskStore.
func (s *PostgresTaskStore) GetByID(ctx context.Context, id, ownerID int64) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	w := &whereBuilder{}
	w.add("t.id = ?", id)
	if ownerID != 0 {
		w.add("t.user_id = ?", ownerID)
	}

	task, err := scanTask(s.db.QueryRowContext(ctx, taskColumns+w.clause(), w.args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found", slog.Int64("task_id", id), slog.Int64("owner_id", ownerID))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task by ID",
			slog.Int64("task_id", id),
			slog.String("error", redact.Error(err)))
		return nil, fmt.Errorf("failed to get task %d: %w", id, MapError(err))
	}
	return task, nil
}

// List implements store.TaskStore.
func (s *PostgresTaskStore) List(ctx context.Context, filter store.TaskFilter) ([]domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	w := taskFilter(filter.OwnerID, filter.Query.Q)
	query := taskColumns + w.clause() +
		" ORDER BY t.id LIMIT " + w.next(filter.Query.Size) + " OFFSET " + w.next(filter.Query.Offset())

	rows, err := s.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		log.Error("failed to list tasks", slog.String("error", redact.Error(err)))
		return nil, fmt.Errorf("failed to list tasks: %w", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	tasks := []domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			log.Error("failed to scan task row", slog.String("error", redact.Error(err)))
			return nil, fmt.Errorf("failed to scan task row: %w", err)
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating task rows: %w", err)
	}
	return tasks, nil
}

// Count implements store.TaskStore.
func (s *PostgresTaskStore) Count(ctx context.Context, filter store.TaskFilter) (int, error) {
	w := taskFilter(filter.OwnerID, filter.Query.Q)

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tasks t"+w.clause(), w.args...).Scan(&total); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to count tasks",
			slog.String("error", redact.Error(err)))
		return 0, fmt.Errorf("failed to count tasks: %w", MapError(err))
	}
	return total, nil
}

// Update implements store.TaskStore.
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		return err
	}

	// An unseeded status resolves to NULL and trips the NOT NULL constraint.
	query := `
		UPDATE tasks
		SET title = $1,
		    status_id = (SELECT id FROM tasks_status WHERE status = $2),
		    updated_by = $3,
		    updated_at = $4
		WHERE id = $5`

	result, err := s.db.ExecContext(ctx, query,
		task.Title,
		string(task.Status),
		task.UpdatedBy,
		task.UpdatedAt,
		task.ID,
	)
	if err != nil {
		if IsNotNullViolation(err) {
			return store.ErrStatusNotFound
		}
		log.Error("failed to update task",
			slog.Int64("task_id", task.ID),
			slog.String("error", redact.Error(err)))
		return store.NewStoreError("task", "update", "update failed", MapError(err))
	}

	if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
		return err
	}

	log.Info("task updated", slog.Int64("task_id", task.ID))
	return nil
}

// Delete implements store.TaskStore.
func (s *PostgresTaskStore) Delete(ctx context.Context, id, ownerID int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	w := &whereBuilder{}
	w.add("id = ?", id)
	if ownerID != 0 {
		w.add("user_id = ?", ownerID)
	}

	result, err := s.db.ExecContext(ctx, "DELETE FROM tasks"+w.clause(), w.args...)
	if err != nil {
		log.Error("failed to delete task",
			slog.Int64("task_id", id),
			slog.String("error", redact.Error(err)))
		return store.NewStoreError("task", "delete", "delete failed", MapError(err))
	}

	if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
		return err
	}

	log.Info("task deleted", slog.Int64("task_id", id))
	return nil
}

// DeleteByOwner implements store.TaskStore.
func (s *PostgresTaskStore) DeleteByOwner(ctx context.Context, userID int64) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE user_id = $1`, userID)
	if err != nil {
		log.Error("failed to delete tasks of user",
			slog.Int64("user_id", userID),
			slog.String("error", redact.Error(err)))
		return 0, store.NewStoreError("task", "delete", "delete by owner failed", MapError(err))
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	log.Debug("deleted tasks of user", slog.Int64("user_id", userID), slog.Int64("count", removed))
	return removed, nil
}
