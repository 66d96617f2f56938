package api

import (
	"time"

	"github.com/phrazzld/taskman-api/internal/domain"
)

// LoginRequest defines the payload for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,max=72"`
}

// RefreshTokenRequest defines the payload for POST /auth/refresh.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// TokenPairResponse is returned by login and refresh.
type TokenPairResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// CreateUserRequest defines the payload for POST /users and POST /auth/signup.
type CreateUserRequest struct {
	Name     string `json:"name"     validate:"required,max=255"`
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,max=72"`
}

// UpdateUserRequest defines the payload for PUT /users/{id}. Absent fields
// are left unchanged.
type UpdateUserRequest struct {
	Name     *string `json:"name"     validate:"omitempty,max=255"`
	Email    *string `json:"email"    validate:"omitempty,email,max=255"`
	Password *string `json:"password" validate:"omitempty,max=72"`
}

// CreateTaskRequest defines the payload for POST /tasks.
type CreateTaskRequest struct {
	Title  string `json:"title"  validate:"required,max=255"`
	Status string `json:"status" validate:"omitempty"`
}

// UpdateTaskRequest defines the payload for PUT /tasks/{id}.
type UpdateTaskRequest struct {
	Title  *string `json:"title"  validate:"omitempty,max=255"`
	Status *string `json:"status"`
}

// UserResponse is the public representation of a user.
type UserResponse struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      string     `json:"role,omitempty"`
	CreatedBy *int64     `json:"created_by,omitempty"`
	UpdatedBy *int64     `json:"updated_by,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// TaskResponse is the public representation of a task.
type TaskResponse struct {
	ID        int64      `json:"id"`
	Title     string     `json:"title"`
	UserID    int64      `json:"user_id"`
	Status    string     `json:"status"`
	CreatedBy *int64     `json:"created_by,omitempty"`
	UpdatedBy *int64     `json:"updated_by,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// ListResponse is the envelope of list endpoints.
type ListResponse[T any] struct {
	Data []T             `json:"data"`
	Meta domain.PageMeta `json:"meta"`
}

func userToResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedBy: u.CreatedBy,
		UpdatedBy: u.UpdatedBy,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func taskToResponse(t *domain.Task) TaskResponse {
	return TaskResponse{
		ID:        t.ID,
		Title:     t.Title,
		UserID:    t.UserID,
		Status:    string(t.Status),
		CreatedBy: t.CreatedBy,
		UpdatedBy: t.UpdatedBy,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

// pageToResponse converts a page of domain values with fn.
func pageToResponse[T, R any](page domain.Page[T], fn func(*T) R) ListResponse[R] {
	data := make([]R, 0, len(page.Data))
	for i := range page.Data {
		data = append(data, fn(&page.Data[i]))
	}
	return ListResponse[R]{Data: data, Meta: page.Meta}
}
