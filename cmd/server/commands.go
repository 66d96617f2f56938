package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/phrazzld/taskman-api/internal/config"
	"github.com/phrazzld/taskman-api/internal/domain"
	"github.com/phrazzld/taskman-api/internal/platform/logger"
	"github.com/phrazzld/taskman-api/internal/platform/postgres"
	"github.com/phrazzld/taskman-api/internal/service"
	"github.com/phrazzld/taskman-api/internal/service/auth"
	"github.com/spf13/cobra"
)

// bootstrap is what every subcommand needs before doing real work. It is a
// variable so tests can replace the database.
var bootstrap = func(ctx context.Context) (*config.Config, *slog.Logger, *sql.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	db, err := setupAppDatabase(ctx, cfg.Database, log)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, log, db, nil
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "taskman",
		Short:         "Task management API with role-based access control",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newMigrateCmd(), newCreateSuperCmd())
	return root
}

func newServeCmd() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, log, db, err := bootstrap(ctx)
			if err != nil {
				return err
			}

			if migrate {
				if err := postgres.Migrate(ctx, db, "up", log); err != nil {
					_ = db.Close()
					return err
				}
			}

			app, err := newApplication(cfg, log, db)
			if err != nil {
				_ = db.Close()
				return err
			}
			return app.Run(ctx)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply pending migrations before serving")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate {" + strings.Join(postgres.MigrationCommands, "|") + "}",
		Short:     "Manage the database schema",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: postgres.MigrationCommands,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			_, log, db, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			if err := postgres.Migrate(ctx, db, args[0], log); err != nil {
				return err
			}

			if args[0] == "version" {
				version, err := postgres.MigrationVersion(ctx, db)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d\n", version)
			}
			return nil
		},
	}
}

func newCreateSuperCmd() *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "create-super",
		Short: "Create a user with the SUPER role",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, log, db, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			users, err := service.NewUserService(
				db,
				postgres.NewPostgresUserStore(db, log),
				postgres.NewPostgresRoleStore(db, log),
				postgres.NewPostgresTaskStore(db, log),
				auth.NewBcryptHasher(cfg.Auth.BcryptCost),
				log,
			)
			if err != nil {
				return err
			}

			user, err := users.CreateWithRole(ctx, service.CreateUserInput{
				Name:     name,
				Email:    email,
				Password: password,
			}, domain.RoleSuper, nil)
			if err != nil {
				if errors.Is(err, service.ErrUserExists) {
					return fmt.Errorf("a user with email %s already exists", domain.NormalizeEmail(email))
				}
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created SUPER user %d (%s)\n", user.ID, user.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&password, "password", "", "login password")
	for _, flag := range []string{"name", "email", "password"} {
		_ = cmd.MarkFlagRequired(flag)
	}
	return cmd
}
