package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	boardnet "SyncBoard/internal/net"
	"SyncBoard/internal/state"
)

func (a *app) serveCmd() *cobra.Command {
	def := a.defaults()
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Host a board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := a.setup()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			ln, err := net.Listen("tcp", cfg.Listen)
			if err != nil {
				return fmt.Errorf("listen on %s: %w", cfg.Listen, err)
			}

			store := state.NewSessionStore()
			conns := boardnet.NewConnectionManager(logger, cfg.QueueSize, rate.Limit(cfg.RateLimit), cfg.RateBurst)
			router := boardnet.NewRouter(store, state.NewCodec(cfg.Limits), conns, logger)
			srv := &http.Server{
				Handler:           boardnet.NewServer(router, store, logger).Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			port := ln.Addr().(*net.TCPAddr).Port
			ip, err := boardnet.GetOutgoingIP()
			if err != nil {
				logger.Warn("no LAN address found, share link may not work", zap.Error(err))
			}
			if ip == nil {
				ip = net.IPv4(127, 0, 0, 1)
			}
			logger.Info("board ready", zap.String("listen", ln.Addr().String()), zap.String("share", boardnet.ShareLink(ip, port)))

			if cfg.Advertise {
				md, err := boardnet.Advertise(port, []net.IP{ip})
				if err != nil {
					logger.Warn("mDNS advertisement failed", zap.Error(err))
				} else {
					defer md.Shutdown() //nolint:errcheck
					logger.Info("advertising on the local network", zap.String("service", boardnet.ServiceType))
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			eg, ctx := errgroup.WithContext(ctx)
			eg.Go(func() error {
				if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			eg.Go(func() error {
				<-ctx.Done()
				logger.Info("shutting down")
				sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return srv.Shutdown(sctx)
			})
			return eg.Wait()
		},
	}

	fs := cmd.Flags()
	fs.String("listen", def.Listen, "address to serve the board on")
	fs.Int("queue-size", def.QueueSize, "outbound messages buffered per participant before it is dropped")
	fs.Float64("rate-limit", def.RateLimit, "draw commands per second allowed per participant (0 disables)")
	fs.Int("rate-burst", def.RateBurst, "burst of draw commands allowed per participant")
	fs.Bool("advertise", def.Advertise, "advertise the board over mDNS")
	fs.Float64("max-coordinate", def.Limits.MaxCoordinate, "largest accepted coordinate magnitude")
	fs.Int("max-size", def.Limits.MaxSize, "largest accepted line width")
	for _, f := range []string{"listen", "queue-size", "rate-limit", "rate-burst", "advertise"} {
		a.bind(fs, f, f)
	}
	a.bind(fs, "limits.max-coordinate", "max-coordinate")
	a.bind(fs, "limits.max-size", "max-size")
	return cmd
}
