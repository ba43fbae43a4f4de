package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"linbus-go/internal/cliconfig"
)

var (
	flagConfig  string
	flagVerbose bool

	cfg cliconfig.Config
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "lintool",
		Short:         "Replay LIN bit captures and watch live traffic from a linmon device",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
			if flagVerbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
			var err error
			cfg, err = cliconfig.Load(flagConfig)
			return err
		},
	}

	addRootFlags(root.PersistentFlags())
	root.AddCommand(newReplayCmd(), newWatchCmd())
	return root
}

func addRootFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&flagConfig, "config", "c", "", "path to config file (default ~/.lintool/config.toml)")
	fs.BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")
}
