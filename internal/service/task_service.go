package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/phrazzld/taskman-api/internal/domain"
	"github.com/phrazzld/taskman-api/internal/platform/logger"
	"github.com/phrazzld/taskman-api/internal/redact"
	"github.com/phrazzld/taskman-api/internal/store"
)

// CreateTaskInput carries the fields of a new task. An empty Status means
// NOTSTARTED.
type CreateTaskInput struct {
	Title  string
	Status string
}

// TaskService provides task management. Callers other than SUPER only see
// and change their own tasks; a task outside the caller's scope is reported
// as not found.
type TaskService interface {
	List(ctx context.Context, p domain.Principal, q domain.ListQuery) (domain.Page[domain.Task], error)
	Get(ctx context.Context, p domain.Principal, id int64) (*domain.Task, error)
	Create(ctx context.Context, p domain.Principal, in CreateTaskInput) (*domain.Task, error)
	Update(ctx context.Context, p domain.Principal, id int64, patch domain.TaskPatch) (*domain.Task, error)
	Delete(ctx context.Context, p domain.Principal, id int64) error
}

// TaskServiceImpl implements TaskService.
type TaskServiceImpl struct {
	taskStore store.TaskStore
	logger    *slog.Logger
	now       func() time.Time
}

var _ TaskService = (*TaskServiceImpl)(nil)

// NewTaskService creates a TaskService.
func NewTaskService(taskStore store.TaskStore, logger *slog.Logger) (*TaskServiceImpl, error) {
	if taskStore == nil {
		return nil, errors.New("task service: task store is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskServiceImpl{
		taskStore: taskStore,
		logger:    logger.With(slog.String("component", "task_service")),
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

// ownerScope returns the owner filter for p. Zero matches every owner.
func ownerScope(p domain.Principal) int64 {
	if p.IsSuper() {
		return 0
	}
	return p.ID
}

func parseStatus(raw string) (domain.TaskStatus, error) {
	status := domain.TaskStatus(strings.TrimSpace(raw))
	if status != "" && !status.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownTaskStatus, raw)
	}
	return status, nil
}

// List implements TaskService.
func (s *TaskServiceImpl) List(
	ctx context.Context,
	p domain.Principal,
	q domain.ListQuery,
) (domain.Page[domain.Task], error) {
	filter := store.TaskFilter{OwnerID: ownerScope(p), Query: q.Normalize()}

	tasks, err := s.taskStore.List(ctx, filter)
	if err != nil {
		return domain.Page[domain.Task]{}, fmt.Errorf("failed to list tasks: %w", err)
	}
	total, err := s.taskStore.Count(ctx, filter)
	if err != nil {
		return domain.Page[domain.Task]{}, fmt.Errorf("failed to count tasks: %w", err)
	}
	return domain.NewPage(tasks, filter.Query, total), nil
}

// Get implements TaskService.
func (s *TaskServiceImpl) Get(ctx context.Context, p domain.Principal, id int64) (*domain.Task, error) {
	task, err := s.taskStore.GetByID(ctx, id, ownerScope(p))
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve task: %w", err)
	}
	return task, nil
}

// Create implements TaskService.
func (s *TaskServiceImpl) Create(ctx context.Context, p domain.Principal, in CreateTaskInput) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	status, err := parseStatus(in.Status)
	if err != nil {
		return nil, err
	}

	task, err := domain.NewTask(p.ID, in.Title, status)
	if err != nil {
		return nil, err
	}

	if err := s.taskStore.Create(ctx, task); err != nil {
		if errors.Is(err, store.ErrStatusNotFound) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownTaskStatus, status)
		}
		log.Error("failed to create task",
			slog.Int64("user_id", p.ID),
			slog.String("error", redact.Error(err)))
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return task, nil
}

// Update implements TaskService.
func (s *TaskServiceImpl) Update(
	ctx context.Context,
	p domain.Principal,
	id int64,
	patch domain.TaskPatch,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if patch.IsEmpty() {
		return nil, ErrEmptyUpdate
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTaskStatus, *patch.Status)
	}

	task, err := s.taskStore.GetByID(ctx, id, ownerScope(p))
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve task: %w", err)
	}

	if patch.Title != nil {
		task.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Status != nil {
		task.Status = *patch.Status
	}
	now := s.now()
	updatedBy := p.ID
	task.UpdatedBy = &updatedBy
	task.UpdatedAt = &now

	if err := task.Validate(); err != nil {
		return nil, err
	}

	if err := s.taskStore.Update(ctx, task); err != nil {
		if errors.Is(err, store.ErrStatusNotFound) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownTaskStatus, task.Status)
		}
		if !errors.Is(err, store.ErrNotFound) {
			log.Error("failed to update task",
				slog.Int64("task_id", id),
				slog.String("error", redact.Error(err)))
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return task, nil
}

// Delete implements TaskService.
func (s *TaskServiceImpl) Delete(ctx context.Context, p domain.Principal, id int64) error {
	if err := s.taskStore.Delete(ctx, id, ownerScope(p)); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			logger.FromContextOrDefault(ctx, s.logger).Error("failed to delete task",
				slog.Int64("task_id", id),
				slog.String("error", redact.Error(err)))
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}
