// Package cmd holds the miditape CLI.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/miditape/miditape/internal/config"
	"github.com/miditape/miditape/internal/logger"
	"github.com/miditape/miditape/sdk/contracts"
)

var (
	cfg     *config.Config
	cfgFile string
	log     contracts.Logger
)

var rootCmd = &cobra.Command{
	Use:   "miditape",
	Short: "Live MIDI capture with idle-gap session segmentation",
	Long: `miditape captures events from a MIDI input device, relays them to an
output port for live monitoring, and splits the stream into discrete
recordings separated by idle gaps.

Recordings are held in memory for the lifetime of the process and can
be inspected live through the monitor view.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		explicit := cfgFile != ""
		path := cfgFile
		if path == "" {
			path = config.DefaultPath()
		}
		var err error
		cfg, err = config.Load(path, explicit)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		log = logger.NewZapLogger()
		log.SetLevel(contracts.ParseLogLevel(cfg.LogLevel))
		return nil
	},
}

// Execute runs the CLI and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default $HOME/.config/miditape.yaml)")
}
