// Package cmd provides command-line interface commands for paygap.
package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"paygap/config"
	"paygap/core"
	"paygap/storage"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	infoColor    = color.New(color.FgCyan)
)

const defaultTimeout = 1 * time.Minute

// NewAdminCmd builds the `paygap admin` command tree
func NewAdminCmd() *cobra.Command {
	adminCmd := &cobra.Command{
		Use:   "admin",
		Short: "Administrative operations",
		Long:  "Database migrations and admin account management for the paygap service.",
	}
	adminCmd.AddCommand(newMigrateCmd())
	adminCmd.AddCommand(newSeedAdminCmd())
	return adminCmd
}

// openStorage loads the configuration and opens the database for a CLI run
func openStorage() (*storage.SQLite, *config.Config, *zap.SugaredLogger, error) {
	logger := zap.NewNop().Sugar()
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	db, err := storage.NewSQLite(cfg.Database.SQLitePath, logger)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, cfg, logger, nil
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, logger, err := openStorage()
			if err != nil {
				return err
			}
			defer db.Close()

			runner, err := storage.NewMigrationRunner(db.WriteDB, logger)
			if err != nil {
				return err
			}
			storage.RegisterMigrations(runner)
			if err := runner.Run(); err != nil {
				errorColor.Fprintln(cmd.ErrOrStderr(), "Migration failed:", err)
				return err
			}
			successColor.Fprintln(cmd.OutOrStdout(), "Migrations applied")
			return nil
		},
	}
}

func newSeedAdminCmd() *cobra.Command {
	var username, displayName, password string

	cmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "Create an admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" || password == "" {
				return fmt.Errorf("--username and --password are required")
			}
			if displayName == "" {
				displayName = username
			}
			if len(password) < 12 {
				return fmt.Errorf("password must be at least 12 characters")
			}

			db, _, logger, err := openStorage()
			if err != nil {
				return err
			}
			defer db.Close()

			runner, err := storage.NewMigrationRunner(db.WriteDB, logger)
			if err != nil {
				return err
			}
			storage.RegisterMigrations(runner)
			if err := runner.Run(); err != nil {
				return err
			}

			hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("failed to hash password: %w", err)
			}

			ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
			defer cancel()

			admins := storage.NewSQLiteAdminUserStorage(db, logger)
			admin := &core.AdminUser{
				AdminUserID:  uuid.NewString(),
				GUID:         uuid.NewString(),
				Username:     username,
				DisplayName:  displayName,
				PasswordHash: string(hash),
				IsActive:     true,
				CreateDate:   time.Now().UTC(),
			}
			if err := admins.CreateAdminUser(ctx, admin); err != nil {
				errorColor.Fprintln(cmd.ErrOrStderr(), "Failed to create admin:", err)
				return err
			}

			successColor.Fprintf(cmd.OutOrStdout(), "Admin account %q created\n", username)
			infoColor.Fprintf(cmd.OutOrStdout(), "  guid: %s\n", admin.GUID)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Login username")
	cmd.Flags().StringVar(&displayName, "display-name", "", "Display name shown in action history")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	return cmd
}
