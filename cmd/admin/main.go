// Package main provides the operator CLI: schema migrations and the first
// admin account.
//
// Usage:
//
//	admin migrate
//	admin create-admin --username root --password '...'
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alenprastyaa/hakimah-laporan-harian/internal/config"
	appctx "github.com/alenprastyaa/hakimah-laporan-harian/internal/core/context"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/domain/auth"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/infrastructure/storage/postgres"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/infrastructure/storage/postgres/auth_repo"
)

var version = "dev"

var (
	configPath string
	username   string
	password   string

	rootCmd = &cobra.Command{
		Use:           "admin",
		Short:         "Daily report administration",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("admin version %s\n", version)
		},
	}

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPool(cmd.Context(), func(ctx context.Context, _ *config.Config, pool *postgres.Pool) error {
				applied, err := postgres.Migrate(ctx, pool)
				if err != nil {
					return err
				}
				if len(applied) == 0 {
					cmd.Println("schema is up to date")
					return nil
				}
				for _, v := range applied {
					cmd.Printf("applied version %d\n", v)
				}
				return nil
			})
		},
	}

	createAdminCmd = &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin user",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(username) == "" || password == "" {
				return errors.New("--username and --password are required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPool(cmd.Context(), func(ctx context.Context, cfg *config.Config, pool *postgres.Pool) error {
				txManager := postgres.NewTxManager(pool, cfg.Database.StatementTimeout)
				service := auth.NewService(
					auth_repo.NewUserRepo(txManager),
					txManager,
					auth.NewJWTService(auth.DefaultJWTConfig(cfg.Auth.JWTSecret)),
					auth.ServiceConfig{BcryptCost: cfg.Auth.BcryptCost},
				)
				user, err := service.Register(ctx, auth.RegisterRequest{
					Username: username,
					Password: password,
					Role:     appctx.RoleAdmin,
				})
				if err != nil {
					return err
				}
				cmd.Printf("created admin %s (%s)\n", user.Username, user.ID)
				return nil
			})
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "conf", "", "path to the configuration file")
	createAdminCmd.Flags().StringVar(&username, "username", "", "admin username")
	createAdminCmd.Flags().StringVar(&password, "password", "", "admin password")
	rootCmd.AddCommand(versionCmd, migrateCmd, createAdminCmd)
}

func withPool(ctx context.Context, fn func(context.Context, *config.Config, *postgres.Pool) error) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.Database.DSN))
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	return fn(ctx, cfg, pool)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
