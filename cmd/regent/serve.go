package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/aldric/regent/internal/api"
)

func serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the game API over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return fatal(err)
			}
			defer a.Close()

			if addr == "" {
				addr = a.cfg.HTTP.Addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := &api.Server{
				Orch:         a.orch,
				Log:          a.log,
				AllowOrigins: a.cfg.HTTP.AllowOrigins,
			}

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return srv.Run(ctx, addr)
			})
			g.Go(func() error {
				<-ctx.Done()
				a.log.Info("shutting down")
				return context.Cause(ctx)
			})

			if err := g.Wait(); err != nil && err != context.Canceled {
				return fatal(err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}
