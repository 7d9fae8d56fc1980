// cmd/server/historian.go
package main

import (
	"github.com/jason-s-yu/yaniv/internal/cache"
	"github.com/jason-s-yu/yaniv/internal/config"
	"github.com/jason-s-yu/yaniv/internal/database"
	"github.com/jason-s-yu/yaniv/internal/historian"
	"github.com/spf13/cobra"
)

// newHistorianCmd runs the worker that moves journaled actions from Redis into PostgreSQL.
func newHistorianCmd() *cobra.Command {
	cfg := &config.Config{}

	cmd := &cobra.Command{
		Use:   "historian",
		Short: "Persist the Redis action journal to PostgreSQL.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cfg.ValidateHistorian(); err != nil {
				return err
			}
			ctx := cmd.Context()
			logger := cfg.NewLogger()

			rdb, err := cache.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisDB)
			if err != nil {
				return err
			}
			defer rdb.Close()

			pool, err := database.Connect(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			store := database.NewResultStore(pool)
			defer store.Close()
			if err := store.EnsureSchema(ctx); err != nil {
				return err
			}

			h := historian.New(rdb, store, cfg.JournalQueue, logger)
			h.BatchSize = cfg.HistorianBatch
			h.FlushDelay = cfg.HistorianFlush
			return h.Run(ctx)
		},
	}
	cfg.RegisterFlags(cmd.Flags())
	cfg.RegisterHistorianFlags(cmd.Flags())
	config.BindEnv(cmd.Flags())
	return cmd
}
