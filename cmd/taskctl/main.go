// Command taskctl provisions accounts and prepares storage for the task
// manager. It reads the same configuration as the API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"taskManager/internal/app"
	"taskManager/internal/config"
	pgdb "taskManager/internal/database/postgres"
	"taskManager/internal/logger"
	"taskManager/internal/models/user"
	"taskManager/internal/service"

	"github.com/spf13/cobra"
)

const opTimeout = 30 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:          "taskctl",
		Short:        "Operator tooling for the task manager",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default: ./config.yml or $"+config.EnvConfig+")")

	load := func() (*config.Config, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		if err := logger.Init(cfg.Logging.Development); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	root.AddCommand(newUserCmd(load), newMigrateCmd(load))
	return root
}

func newUserCmd(load func() (*config.Config, error)) *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}

	var in service.NewUser
	var role string
	add := &cobra.Command{
		Use:   "add",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if cfg.Repository.Type == config.BackendInMemory {
				return errors.New("repository.type is inmemory: use auth.bootstrap instead, a separate process cannot reach the server's memory")
			}
			defer logger.Sync()

			ctx, cancel := context.WithTimeout(cmd.Context(), opTimeout)
			defer cancel()

			a := app.New(cfg)
			if err := a.InitStorage(ctx); err != nil {
				return err
			}
			defer a.Shutdown(context.Background())

			in.Role = user.Role(role)
			created, err := a.AuthService().CreateUser(ctx, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s) id=%s\n", created.Email, created.Role, created.ID)
			return nil
		},
	}
	add.Flags().StringVar(&in.Email, "email", "", "login email")
	add.Flags().StringVar(&in.Password, "password", "", "initial password")
	add.Flags().StringVar(&in.Name, "name", "", "display name")
	add.Flags().StringVar(&role, "role", "", "admin or user")
	for _, name := range []string{"email", "password", "role"} {
		_ = add.MarkFlagRequired(name)
	}

	userCmd.AddCommand(add)
	return userCmd
}

func newMigrateCmd(load func() (*config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending PostgreSQL migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			defer logger.Sync()

			if cfg.Repository.Type != config.BackendPostgres {
				return fmt.Errorf("migrate needs repository.type=postgres, got %q", cfg.Repository.Type)
			}
			if err := pgdb.Migrate(cfg.Database.URL); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}
