package main

import (
	"context"
	"fmt"
	"os"

	"clinic-booking/cmd/bootstrap"
	"clinic-booking/internal/delivery/dto"
	"clinic-booking/internal/infrastructure/database"
	"clinic-booking/internal/repository"
	"clinic-booking/internal/service"
	"clinic-booking/internal/usecase"
	"clinic-booking/pkg/jwt"
	"clinic-booking/pkg/validator"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "clinic",
		Short:        "Clinic appointment booking service",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(adminCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the booking API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := bootstrap.LoadConfig()
			if err != nil {
				return err
			}

			// Initialize application with all dependencies
			app, err := bootstrap.New(cfg)
			if err != nil {
				logrus.Errorf("Failed to initialize application: %v", err)
				return err
			}

			return app.Run()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := bootstrap.LoadConfig()
			if err != nil {
				return err
			}
			if err := database.MigrateUp(cfg.DB.MigrationURL()); err != nil {
				return err
			}
			logrus.Info("Migrations applied")
			return nil
		},
	})

	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back applied migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, _ := cmd.Flags().GetInt("steps")
			if steps <= 0 {
				return fmt.Errorf("--steps must be positive")
			}

			cfg, err := bootstrap.LoadConfig()
			if err != nil {
				return err
			}
			if err := database.MigrateDown(cfg.DB.MigrationURL(), steps); err != nil {
				return err
			}
			logrus.Infof("Rolled back %d migration(s)", steps)
			return nil
		},
	}
	downCmd.Flags().Int("steps", 1, "Number of migrations to roll back")

	cmd.AddCommand(downCmd)
	return cmd
}

func adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage clinic staff accounts",
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create an admin or staff account",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := &dto.CreateUserRequest{}
			req.Email, _ = cmd.Flags().GetString("email")
			req.FullName, _ = cmd.Flags().GetString("name")
			req.Password, _ = cmd.Flags().GetString("password")
			req.Role, _ = cmd.Flags().GetString("role")

			v := validator.NewValidator()
			if err := v.Validate(req); err != nil {
				for field, msg := range v.FormatValidationErrors(err) {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", field, msg)
				}
				return fmt.Errorf("invalid account details")
			}

			cfg, err := bootstrap.LoadConfig()
			if err != nil {
				return err
			}

			db, err := database.NewPostgresConnection(cfg.DB, false)
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}

			log := logrus.StandardLogger()
			userRepo := repository.NewUserRepository()
			auditService := service.NewAuditService(db, log, repository.NewAuditLogRepository())
			authUsecase := usecase.NewAuthUsecase(
				db, log, userRepo, repository.NewRoleRepository(),
				jwt.NewJWTService(cfg.JWT), service.NewMemoryTokenStore(), auditService,
			)

			user, err := authUsecase.CreateUser(context.Background(), req)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created %s account %s (%s)\n", user.Role, user.Email, user.ID)
			return nil
		},
	}
	createCmd.Flags().String("email", "", "Login email")
	createCmd.Flags().String("name", "", "Full name")
	createCmd.Flags().String("password", "", "Password (at least 8 characters)")
	createCmd.Flags().String("role", "staff", "admin or staff")

	cmd.AddCommand(createCmd)
	return cmd
}
