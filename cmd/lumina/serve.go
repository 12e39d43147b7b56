package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"pkt.systems/lumina"
	"pkt.systems/lumina/internal/appconfig"
	"pkt.systems/pslog"
)

const stopTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	var cfgPath string
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the session over the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := pslog.Ctx(cmd.Context())
			cfg, err := appconfig.Load(cfgPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.HTTP.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv, err := buildServer(ctx, cfg, lumina.WithHTTP())
			if err != nil {
				return err
			}
			if err := srv.Start(ctx); err != nil {
				_ = srv.Stop(context.Background())
				return err
			}
			logger.Info("serve ready", "addr", cfg.HTTP.Addr, "driver", cfg.Render.Driver)

			go func() {
				<-ctx.Done()
				stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
				defer cancel()
				_ = srv.Stop(stopCtx)
			}()
			return srv.Wait()
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "path to config file")
	cmd.Flags().StringVar(&addr, "addr", "", "override http.addr")
	return cmd
}
