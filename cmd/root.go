// Package cmd wires the board's packages into the syncboard command line.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"SyncBoard/internal/config"
	"SyncBoard/internal/logging"
)

// Execute runs the syncboard command line.
func Execute() error {
	return NewRootCmd(config.NewViper()).Execute()
}

type app struct {
	v       *viper.Viper
	cfgFile string
}

func NewRootCmd(v *viper.Viper) *cobra.Command {
	a := &app{v: v}
	def := config.Default()

	root := &cobra.Command{
		Use:           "syncboard",
		Short:         "A shared whiteboard every participant sees identically",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVarP(&a.cfgFile, "config", "c", "", "load configuration from file")
	pf.String("log-level", def.LogLevel, "log level (debug, info, warn, error)")
	pf.String("log-encoder", def.LogEncoder, "log encoder (console or json)")
	pf.String("server", def.Server, "board URL to use when none is given (default: discover over mDNS)")
	for _, f := range []string{"log-level", "log-encoder", "server"} {
		a.bind(pf, f, f)
	}

	root.AddCommand(a.serveCmd(), a.joinCmd(), a.exportCmd())
	return root
}

func (a *app) bind(fs *pflag.FlagSet, key, flag string) {
	if err := a.v.BindPFlag(key, fs.Lookup(flag)); err != nil {
		panic(fmt.Sprintf("bind %s: %v", flag, err))
	}
}

func (a *app) setup() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return cfg, nil, err
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogEncoder)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, logger, nil
}
