package cmd

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"SyncBoard/internal/client"
	"SyncBoard/internal/config"
	boardnet "SyncBoard/internal/net"
	"SyncBoard/internal/state"
	"SyncBoard/internal/ui"
)

const discoverTimeout = 3 * time.Second

func (a *app) defaults() config.Config { return config.Default() }

// boardURL picks the board to talk to: an explicit argument, then the
// configured server, then whatever answers on the local network.
func boardURL(cfg config.Config, args []string, logger *zap.Logger) (string, error) {
	switch {
	case len(args) > 0:
		return args[0], nil
	case cfg.Server != "":
		return cfg.Server, nil
	}
	logger.Info("looking for a board on the local network", zap.String("service", boardnet.ServiceType))
	url, err := boardnet.Discover(discoverTimeout)
	if err != nil {
		return "", err
	}
	logger.Info("found board", zap.String("url", url))
	return url, nil
}

func (a *app) joinCmd() *cobra.Command {
	def := a.defaults()
	cmd := &cobra.Command{
		Use:   "join [ws://host:port/ws]",
		Short: "Open a board window connected to a host",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := a.setup()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			url, err := boardURL(cfg, args, logger)
			if err != nil {
				return err
			}

			board := ui.NewBoardWidget()
			rec := client.NewReconciler(board, logger)
			board.OnSegment = func(c state.DrawCommand) {
				if err := rec.Propose(c); err != nil {
					logger.Debug("segment not sent", zap.Error(err))
				}
			}
			board.OnResize = rec.Resize
			onClear := func() {
				if err := rec.RequestClear(); err != nil {
					logger.Debug("clear not sent", zap.Error(err))
				}
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			done := make(chan error, 1)
			ui.RunApp("SyncBoard - "+url, board, onClear, func(bar *ui.StatusBar) {
				rec.OnChange = func(s client.Status, users int) { bar.Set(s.String(), users) }
				go func() {
					done <- client.Run(ctx, url, rec, logger, client.Options{MaxReconnect: cfg.MaxReconnect})
				}()
			})
			cancel()
			if err := <-done; err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	fs := cmd.Flags()
	fs.Duration("max-reconnect", def.MaxReconnect, "longest wait between reconnect attempts")
	a.bind(fs, "max-reconnect", "max-reconnect")
	return cmd
}
