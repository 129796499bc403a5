package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/volunteer-hub-api/api/swagger"
	"github.com/noah-isme/volunteer-hub-api/internal/middleware"
	"github.com/noah-isme/volunteer-hub-api/internal/models"
	"github.com/noah-isme/volunteer-hub-api/pkg/config"
	"github.com/noah-isme/volunteer-hub-api/pkg/database"
	"github.com/noah-isme/volunteer-hub-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/volunteer-hub-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/volunteer-hub-api/pkg/middleware/requestid"
)

// @title Volunteer Hub API
// @version 1.0.0
// @description Volunteer onboarding, events, trainings and reporting.
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

var (
	cfg  *config.Config
	logr *zap.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "volunteer-hub",
		Short:         "Volunteer Hub API server and operator tools",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if cfg, err = config.Load(); err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if logr, err = logger.New(cfg); err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logr != nil {
				_ = logr.Sync()
			}
		},
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(sendRemindersCmd())
	rootCmd.AddCommand(createAdminCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Printf("volunteer-hub: %v", err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, notification workers and reminder schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := newApp(ctx, cfg, logr)
			if err != nil {
				return err
			}
			defer app.Close()

			app.notifier.Start(ctx)
			defer app.notifier.Stop()
			if _, err := app.notifier.RequeuePending(ctx); err != nil {
				logr.Warn("failed to requeue pending notifications", zap.Error(err))
			}

			app.reports.StartCleanup(ctx)

			if cfg.Reminders.Enabled {
				if err := app.reminders.Start(ctx); err != nil {
					return err
				}
				defer app.reminders.Stop()
			}

			srv := &http.Server{
				Addr:              fmt.Sprintf(":%d", cfg.Port),
				Handler:           newRouter(app),
				ReadHeaderTimeout: 10 * time.Second,
			}
			errCh := make(chan error, 1)
			go func() {
				logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("server failed: %w", err)
				}
			case <-ctx.Done():
			}

			logr.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}

func newRouter(app *App) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(app.metrics))
	r.Use(middleware.WithResponseMeta())

	app.routes.Register(r, cfg.APIPrefix)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
	return r
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := database.NewPostgres(cfg.Database)
			if err != nil {
				return fmt.Errorf("connect postgres: %w", err)
			}
			defer db.Close() //nolint:errcheck

			applied, err := database.Migrate(cmd.Context(), db, logr)
			if err != nil {
				return err
			}
			fmt.Printf("%d migration(s) applied\n", len(applied))
			return nil
		},
	}
}

func sendRemindersCmd() *cobra.Command {
	var day string
	cmd := &cobra.Command{
		Use:   "send-reminders",
		Short: "Queue reminders for the events taking place the day after --date",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := newApp(ctx, cfg, logr)
			if err != nil {
				return err
			}
			defer app.Close()

			target := app.reminders.Today()
			if day != "" {
				if target, err = models.ParseDate(day); err != nil {
					return err
				}
			}

			app.notifier.Start(ctx)
			run, err := app.reminders.RunOnce(ctx, target)
			app.notifier.Stop()
			if err != nil {
				return err
			}
			fmt.Printf("%s: %d event(s), %d queued, %d skipped, %d failed\n",
				run.Day, run.Events, run.Queued, run.Skipped, run.Failed)
			return nil
		},
	}
	cmd.Flags().StringVar(&day, "date", "", "reference day (YYYY-MM-DD), defaults to today in the reminder timezone")
	return cmd
}

func createAdminCmd() *cobra.Command {
	var email, password, name string
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := newApp(ctx, cfg, logr)
			if err != nil {
				return err
			}
			defer app.Close()

			user, err := app.auth.BootstrapAdmin(ctx, email, password, name)
			if err != nil {
				return err
			}
			fmt.Printf("admin %s created (%s)\n", user.Email, user.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "admin email")
	cmd.Flags().StringVar(&password, "password", "", "admin password")
	cmd.Flags().StringVar(&name, "name", "", "admin full name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}
