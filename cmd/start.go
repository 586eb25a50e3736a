// Copyright © 2019 Andrei Gubarev <agubarev@protonmail.com>

package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/agubarev/orgtree/internal/core"
	"github.com/agubarev/orgtree/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var listenAddr string

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the orgtree API server.",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := processLogger()
		if err != nil {
			return err
		}
		defer logger.Sync()

		if listenAddr != "" {
			cfg.Server.Addr = listenAddr
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		c, err := openCore(ctx, logger)
		if err != nil {
			return err
		}
		defer c.Close()

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return server.Run(gctx, c, server.Options{
				Addr:         cfg.Server.Addr,
				ReadTimeout:  cfg.Server.ReadTimeout,
				WriteTimeout: cfg.Server.WriteTimeout,
			})
		})

		g.Go(func() error {
			<-gctx.Done()
			logger.Info("shutting down", zap.NamedError("reason", gctx.Err()))
			return nil
		})

		if err = g.Wait(); err != nil {
			logger.Error("server stopped", zap.Error(err))
			return err
		}

		logger.Info("server stopped")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(startCmd)

	startCmd.Flags().StringVar(&listenAddr, "addr", "", "listen address, overrides server.addr")
}

// openCore opens, initializes and seeds (if enabled) the core
func openCore(ctx context.Context, logger *zap.Logger) (*core.Core, error) {
	c, err := core.New(cfg, logger)
	if err != nil {
		return nil, err
	}

	if err = c.Init(ctx); err != nil {
		c.Close()
		return nil, err
	}

	if cfg.Seed.Enabled {
		created, err := c.Seed(ctx, cfg.Seed.File)
		if err != nil {
			c.Close()
			return nil, err
		}

		if created > 0 {
			logger.Info("seeded empty forests", zap.Int("nodes", created))
		}
	}

	return c, nil
}
