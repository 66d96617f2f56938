package postgres

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/taskman-api/internal/domain"
	"github.com/phrazzld/taskman-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

var userRowColumns = []string{
	"id", "name", "email", "role", "created_by", "updated_by", "created_at", "updated_at",
}

func TestNewPostgresUserStorePanicsOnNilDB(t *testing.T) {
	assert.Panics(t, func() { NewPostgresUserStore(nil, nil) })
}

func TestPostgresUserStore_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("returns generated id", func(t *testing.T) {
		db, mock := newMock(t)
		s := NewPostgresUserStore(db, nil)

		user := &domain.User{Name: "Alice", Email: "a@x.com", HashedPassword: "hash", CreatedAt: time.Now()}
		mock.ExpectQuery("INSERT INTO users").
			WithArgs("Alice", "a@x.com", "hash", nil, sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))

		require.NoError(t, s.Create(ctx, user))
		assert.Equal(t, int64(5), user.ID)
	})

	t.Run("duplicate email", func(t *testing.T) {
		db, mock := newMock(t)
		s := NewPostgresUserStore(db, nil)

		mock.ExpectQuery("INSERT INTO users").
			WillReturnError(&pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "users_email_key"})

		err := s.Create(ctx, &domain.User{Name: "A", Email: "a@x.com", HashedPassword: "hash"})
		assert.ErrorIs(t, err, store.ErrEmailExists)
	})

	t.Run("requires hashed password", func(t *testing.T) {
		db, _ := newMock(t)
		s := NewPostgresUserStore(db, nil)

		err := s.Create(ctx, &domain.User{Name: "A", Email: "a@x.com", Password: "p1"})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestPostgresUserStore_GetByID(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("found with role", func(t *testing.T) {
		db, mock := newMock(t)
		s := NewPostgresUserStore(db, nil)

		mock.ExpectQuery(regexp.QuoteMeta("WHERE u.id = $1")).
			WithArgs(int64(2)).
			WillReturnRows(sqlmock.NewRows(userRowColumns).
				AddRow(2, "Bob", "b@x.com", "USER", 1, nil, created, nil))

		user, err := s.GetByID(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, "Bob", user.Name)
		assert.Equal(t, domain.RoleUser, user.Role)
		require.NotNil(t, user.CreatedBy)
		assert.Equal(t, int64(1), *user.CreatedBy)
		assert.Nil(t, user.UpdatedBy)
		assert.Nil(t, user.UpdatedAt)
		assert.Empty(t, user.HashedPassword)
	})

	t.Run("not found", func(t *testing.T) {
		db, mock := newMock(t)
		s := NewPostgresUserStore(db, nil)

		mock.ExpectQuery("FROM users u").WithArgs(int64(99)).
			WillReturnRows(sqlmock.NewRows(userRowColumns))

		_, err := s.GetByID(ctx, 99)
		assert.ErrorIs(t, err, store.ErrUserNotFound)
	})
}

func TestPostgresUserStore_GetByEmail(t *testing.T) {
	db, mock := newMock(t)
	s := NewPostgresUserStore(db, nil)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE email = $1")).
		WithArgs("a@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password", "created_at"}).
			AddRow(1, "A", "a@x.com", "$2a$10$hash", time.Now()))

	user, err := s.GetByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "$2a$10$hash", user.HashedPassword)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE email = $1")).
		WithArgs("none@x.com").
		WillReturnError(sql.ErrNoRows)

	_, err = s.GetByEmail(context.Background(), "none@x.com")
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func TestPostgresUserStore_ExistsByEmail(t *testing.T) {
	db, mock := newMock(t)
	s := NewPostgresUserStore(db, nil)

	mock.ExpectQuery("SELECT EXISTS").WithArgs("a@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := s.ExistsByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestPostgresUserStore_ListAndCount(t *testing.T) {
	ctx := context.Background()

	t.Run("filters by escaped name", func(t *testing.T) {
		db, mock := newMock(t)
		s := NewPostgresUserStore(db, nil)

		mock.ExpectQuery(regexp.QuoteMeta("WHERE u.name ILIKE $1 ORDER BY u.id LIMIT $2 OFFSET $3")).
			WithArgs(`%50\%%`, 10, 10).
			WillReturnRows(sqlmock.NewRows(userRowColumns).
				AddRow(11, "50% Bob", "b@x.com", "USER", nil, nil, time.Now(), nil))

		users, err := s.List(ctx, domain.ListQuery{Q: "50%", Page: 2, Size: 10})
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, int64(11), users[0].ID)

		mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM users u WHERE u.name ILIKE $1")).
			WithArgs(`%50\%%`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))

		total, err := s.Count(ctx, "50%")
		require.NoError(t, err)
		assert.Equal(t, 11, total)
	})

	t.Run("no filter returns empty slice", func(t *testing.T) {
		db, mock := newMock(t)
		s := NewPostgresUserStore(db, nil)

		mock.ExpectQuery(regexp.QuoteMeta("ORDER BY u.id LIMIT $1 OFFSET $2")).
			WithArgs(10, 0).
			WillReturnRows(sqlmock.NewRows(userRowColumns))

		users, err := s.List(ctx, domain.ListQuery{Page: 1, Size: 10})
		require.NoError(t, err)
		assert.NotNil(t, users)
		assert.Empty(t, users)
	})
}

func TestPostgresUserStore_Update(t *testing.T) {
	ctx := context.Background()
	by := int64(1)
	now := time.Now()
	user := &domain.User{ID: 4, Name: "New", Email: "new@x.com", UpdatedBy: &by, UpdatedAt: &now}

	t.Run("keeps hash when empty", func(t *testing.T) {
		db, mock := newMock(t)
		s := NewPostgresUserStore(db, nil)

		mock.ExpectExec("UPDATE users").
			WithArgs("New", "new@x.com", "", by, now, int64(4)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, s.Update(ctx, user))
	})

	t.Run("not found", func(t *testing.T) {
		db, mock := newMock(t)
		s := NewPostgresUserStore(db, nil)

		mock.ExpectExec("UPDATE users").WillReturnResult(sqlmock.NewResult(0, 0))
		assert.ErrorIs(t, s.Update(ctx, user), store.ErrUserNotFound)
	})

	t.Run("email taken", func(t *testing.T) {
		db, mock := newMock(t)
		s := NewPostgresUserStore(db, nil)

		mock.ExpectExec("UPDATE users").WillReturnError(&pgconn.PgError{Code: uniqueViolationCode})
		assert.ErrorIs(t, s.Update(ctx, user), store.ErrEmailExists)
	})
}

func TestPostgresUserStore_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("deleted", func(t *testing.T) {
		db, mock := newMock(t)
		s := NewPostgresUserStore(db, nil)

		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id = $1")).
			WithArgs(int64(4)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		assert.NoError(t, s.Delete(ctx, 4))
	})

	t.Run("not found", func(t *testing.T) {
		db, mock := newMock(t)
		s := NewPostgresUserStore(db, nil)

		mock.ExpectExec("DELETE FROM users").WillReturnResult(sqlmock.NewResult(0, 0))
		assert.ErrorIs(t, s.Delete(ctx, 4), store.ErrUserNotFound)
	})

	t.Run("still referenced", func(t *testing.T) {
		db, mock := newMock(t)
		s := NewPostgresUserStore(db, nil)

		mock.ExpectExec("DELETE FROM users").
			WillReturnError(&pgconn.PgError{Code: foreignKeyViolationCode, ConstraintName: "tasks_user_id_fkey"})
		assert.ErrorIs(t, s.Delete(ctx, 4), store.ErrInvalidEntity)
	})
}

func TestPostgresUserStore_WithTx(t *testing.T) {
	db, mock := newMock(t)
	s := NewPostgresUserStore(db, nil)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM users").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.Begin()
	require.NoError(t, err)
	require.NoError(t, s.WithTx(tx).Delete(context.Background(), 1))
	require.NoError(t, tx.Commit())
}
