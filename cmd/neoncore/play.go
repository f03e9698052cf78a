package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/nathoo/neoncore/cli"
	"github.com/nathoo/neoncore/config"
	"github.com/nathoo/neoncore/tui"
)

func newPlayCmd() *cobra.Command {
	var (
		plain  bool
		script string
		seed   int64
	)
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play in this terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("seed") {
				cfg.Game.Seed = seed
			}
			interactive := script == "" && !plain && term.IsTerminal(int(os.Stdout.Fd()))

			// The full-screen UI owns the terminal, so without a log file
			// logging is switched off there.
			log := zap.NewNop()
			if !interactive || cfg.Logging.File != "" {
				if log, err = newLogger(cfg.Logging); err != nil {
					return fmt.Errorf("init logger: %w", err)
				}
			}
			defer func() { _ = log.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			rt, err := setup(ctx, log, cfg)
			if err != nil {
				return err
			}
			defer rt.close()

			switch {
			case script != "":
				f, err := os.Open(script)
				if err != nil {
					return fmt.Errorf("open script: %w", err)
				}
				defer f.Close()
				return playConsole(ctx, rt, cli.Script(f, cmd.OutOrStdout()))
			case !interactive:
				return playConsole(ctx, rt, cli.New(cmd.InOrStdin(), cmd.OutOrStdout()))
			}

			s := tui.NewSession()
			e, err := rt.newEngine(s, log)
			if err != nil {
				return err
			}
			e.OnStatus = s.Status
			return tui.Run(ctx, s, e.Run)
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "plain line-by-line console instead of the full-screen UI")
	cmd.Flags().StringVar(&script, "script", "", "play commands from a file, echoing each one")
	cmd.Flags().Int64Var(&seed, "seed", 0, "dice seed (overrides game.seed)")
	return cmd
}

func playConsole(ctx context.Context, rt *runtime, c *cli.Console) error {
	e, err := rt.newEngine(c, rt.log)
	if err != nil {
		return err
	}
	_, err = e.Run(ctx)
	if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
