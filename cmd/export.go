package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"SyncBoard/internal/client"
	"SyncBoard/internal/export"
)

func (a *app) exportCmd() *cobra.Command {
	def := a.defaults()
	cmd := &cobra.Command{
		Use:   "export [ws://host:port/ws]",
		Short: "Save the current board of a host as a PDF",
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
			snap, err := client.FetchSnapshot(cmd.Context(), url, nil)
			if err != nil {
				return err
			}
			if err := export.ExportFile(cfg.Output, snap); err != nil {
				return err
			}
			logger.Info("board exported",
				zap.String("path", cfg.Output),
				zap.Int("commands", len(snap.Commands)),
				zap.Uint64("epoch", snap.Epoch),
			)
			return nil
		},
	}
	fs := cmd.Flags()
	fs.StringP("output", "o", def.Output, "PDF file to write")
	a.bind(fs, "output", "output")
	return cmd
}
