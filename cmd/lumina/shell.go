package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"pkt.systems/lumina"
	"pkt.systems/lumina/internal/appconfig"
	"pkt.systems/lumina/tui"
	"pkt.systems/pslog"
)

func newShellCmd() *cobra.Command {
	var cfgPath string
	var withHTTP bool
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Browse in the terminal shell",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := pslog.Ctx(ctx)
			cfg, err := appconfig.Load(cfgPath)
			if err != nil {
				return err
			}
			opts := []lumina.ServerOption{lumina.WithEventBus()}
			if withHTTP {
				opts = append(opts, lumina.WithHTTP())
			}
			srv, err := buildServer(ctx, cfg, opts...)
			if err != nil {
				return err
			}
			if err := srv.Start(ctx); err != nil {
				_ = srv.Stop(context.Background())
				return err
			}
			defer func() {
				stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := srv.Stop(stopCtx); err != nil {
					logger.Warn("shell server stop failed", "err", err)
				}
			}()
			return tui.Run(ctx, tui.Options{
				Service: srv.Service(),
				Events:  srv.Events(),
				Logger:  logger,
			})
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "path to config file")
	cmd.Flags().BoolVar(&withHTTP, "http", false, "also serve the HTTP API on http.addr")
	return cmd
}
