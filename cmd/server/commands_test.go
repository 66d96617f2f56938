package main

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"testing"

	"github.com/phrazzld/taskman-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubBootstrap makes any subcommand that reaches the database fail fast.
func stubBootstrap(t *testing.T) *int {
	t.Helper()

	calls := 0
	orig := bootstrap
	bootstrap = func(context.Context) (*config.Config, *slog.Logger, *sql.DB, error) {
		calls++
		return nil, nil, nil, errors.New("bootstrap disabled in tests")
	}
	t.Cleanup(func() { bootstrap = orig })
	return &calls
}

func execute(args ...string) (string, error) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestMigrateCommand_Args(t *testing.T) {
	calls := stubBootstrap(t)

	_, err := execute("migrate")
	require.Error(t, err)

	_, err = execute("migrate", "sideways")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid argument")

	_, err = execute("migrate", "up", "down")
	require.Error(t, err)

	assert.Zero(t, *calls)

	_, err = execute("migrate", "status")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bootstrap disabled")
	assert.Equal(t, 1, *calls)
}

func TestCreateSuperCommand_RequiresFlags(t *testing.T) {
	calls := stubBootstrap(t)

	_, err := execute("create-super", "--name", "root")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
	assert.Zero(t, *calls)

	_, err = execute("create-super", "--name", "root", "--email", "root@example.com", "--password", "s3cret")
	require.Error(t, err)
	assert.Equal(t, 1, *calls)
}

func TestServeCommand_RejectsArgs(t *testing.T) {
	calls := stubBootstrap(t)

	_, err := execute("serve", "extra")
	require.Error(t, err)
	assert.Zero(t, *calls)
}
