package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nathoo/neoncore/config"
	"github.com/nathoo/neoncore/server"
)

const shutdownGrace = 10 * time.Second

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Host the game over SSH",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			log, err := newLogger(cfg.Logging)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer func() { _ = log.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			rt, err := setup(ctx, log, cfg)
			if err != nil {
				return err
			}
			defer rt.close()

			srv, err := server.New(server.Config{
				Addr:        cfg.Server.Addr,
				HostKeyPath: cfg.Server.HostKey,
				MaxSessions: cfg.Server.MaxSessions,
				IdleTimeout: cfg.Server.IdleTimeout,
			}, rt.newEngine, log)
			if err != nil {
				return err
			}

			errc := make(chan error, 1)
			go func() { errc <- srv.ListenAndServe() }()
			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
			}

			log.Info("shutting down", zap.Int("sessions", srv.Active()))
			sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
			defer cancel()
			if err := srv.Shutdown(sctx); err != nil {
				log.Warn("shutdown", zap.Error(err))
			}
			return <-errc
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}
