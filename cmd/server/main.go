package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"usergate/internal/platform/config"
	"usergate/internal/platform/logger"
	"usergate/internal/users/models"
	"usergate/internal/users/store"
	"usergate/internal/validation"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "usergate",
		Short:         "User account API behind a request policy pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("load .env: %w", err)
			}
			return nil
		},
	}
	root.AddCommand(newServeCmd(), newMigrateCmd(), newCreateStaffCmd())
	return root
}

// setup loads the configuration and builds the logger shared by every
// command.
func setup() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	log := logger.New(cfg.Server.LogLevel, cfg.Server.LogFormat)
	slog.SetDefault(log)
	return cfg, log, nil
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the API and ops servers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer func() {
				if err := a.close(); err != nil {
					log.Error("failed to close database", "error", err)
				}
			}()

			log.Info("starting usergate",
				"addr", cfg.Server.Addr,
				"ops_addr", cfg.Server.OpsAddr,
				"maintenance_mode", cfg.Server.MaintenanceMode,
			)
			return a.run(ctx)
		},
	}
}

func newMigrateCmd() *cobra.Command {
	var status bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			if cfg.Database.URL == "" {
				return errors.New("database.url is not configured")
			}

			ctx := cmd.Context()
			db, err := openDB(ctx, cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			if !status {
				return store.Migrate(ctx, db, log)
			}
			applied, err := store.MigrationStatus(ctx, db)
			if err != nil {
				return err
			}
			versions := make([]int64, 0, len(applied))
			for v := range applied {
				versions = append(versions, v)
			}
			sort.Slice(versions, func(i, j int) bool { return versions[i] < versions[j] })
			for _, v := range versions {
				state := "pending"
				if applied[v] {
					state = "applied"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%05d %s\n", v, state)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&status, "status", false, "Print migration status instead of migrating")
	return cmd
}

func newCreateStaffCmd() *cobra.Command {
	var name, email, password string
	cmd := &cobra.Command{
		Use:   "create-staff",
		Short: "Create a staff account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			if cfg.Database.URL == "" {
				return errors.New("database.url is not configured")
			}

			payload, errs := validation.ValidateUserPayload(map[string]any{
				"name":     name,
				"email":    email,
				"password": password,
			}, false)
			if len(errs) > 0 {
				return fmt.Errorf("invalid staff account: %v", errs)
			}

			ctx := cmd.Context()
			a, err := newApp(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer a.close()

			user, err := a.users.Create(ctx, models.CreateUser{
				Name:     *payload.Name,
				Email:    *payload.Email,
				Password: *payload.Password,
				IsStaff:  true,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created staff user %s (%s)\n", user.Email, user.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Full name")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
