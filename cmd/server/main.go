// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/jason-s-yu/yaniv/internal/cache"
	"github.com/jason-s-yu/yaniv/internal/config"
	"github.com/jason-s-yu/yaniv/internal/database"
	"github.com/jason-s-yu/yaniv/internal/game"
	"github.com/jason-s-yu/yaniv/internal/handlers"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const releaseVersion = "0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := &config.Config{}

	cmd := &cobra.Command{
		Use:           "yaniv",
		Short:         "Real-time two-player Yaniv session server.",
		Args:          cobra.NoArgs,
		Version:       releaseVersion,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
	cfg.RegisterFlags(cmd.Flags())
	config.BindEnv(cmd.Flags())

	cmd.AddCommand(newHistorianCmd())
	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetVersionTemplate("yaniv v{{.Version}}\n")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger := cfg.NewLogger()

	rules := game.DefaultRules()
	rules.EnforcePhases = cfg.StrictPhases
	gs := handlers.NewGameServer(game.NewRegistry(rules, nil), logger)
	gs.AllowedOrigins = cfg.AllowedOrigins
	gs.WriteTimeout = cfg.WriteTimeout
	gs.SendBuffer = cfg.SendBuffer

	if cfg.RedisAddr != "" {
		rdb, err := cache.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			return err
		}
		defer rdb.Close()
		gs.Journal = cache.NewRedisJournal(rdb, cfg.JournalQueue)
		logger.WithField("queue", cfg.JournalQueue).Info("Action journal enabled")
	}

	if cfg.DatabaseURL != "" {
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		store := database.NewResultStore(pool)
		defer store.Close()
		if err := store.EnsureSchema(ctx); err != nil {
			return err
		}
		gs.Results = store
		gs.Actions = store
		logger.Info("Round history enabled")
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handlers.NewRouter(gs),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       10 * time.Minute,
	}

	errs := make(chan error, 1)
	go func() {
		logger.WithFields(logrus.Fields{
			"addr":          srv.Addr,
			"strict_phases": rules.EnforcePhases,
		}).Infof("yaniv v%s listening", releaseVersion)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
		close(errs)
	}()

	select {
	case err := <-errs:
		return fmt.Errorf("server exited: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	gs.CloseAll()
	return srv.Shutdown(shutdownCtx)
}
