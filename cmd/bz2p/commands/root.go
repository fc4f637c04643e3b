package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jzebedee/bz2portable/pkg/cli"
)

var (
	// Global flags
	verbose      bool
	configPath   string
	outputFormat string
	outputQuery  string

	// Loaded in PersistentPreRunE
	globalConfig *cli.Config
	logger       *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "bz2p",
	Short: "Streaming compression through a bounded byte channel",
	Long: `bz2p - compress and restore files through a bounded, blocking byte channel.

Every codec runs as a producer goroutine feeding a fixed-capacity channel that
the command drains into the configured store (a local directory or an S3
bucket). Each produced archive is recorded in a local manifest.

Configuration is read from $BZ2P_CONFIG, or from the OS config directory:
  macOS:   ~/Library/Application Support/bz2portable/config.yaml
  Linux:   ~/.config/bz2portable/config.yaml
  Windows: %AppData%/bz2portable/config.yaml

Examples:
  # Compress a directory, keeping only Go sources
  bz2p compress ./src --include '\.go$;-_test\.go$'

  # Restore by archive name or manifest ID
  bz2p decompress main.go.bz2 -d ./restored

  # Names of archives larger than 1 MiB
  bz2p manifest list --jq '.[] | select(.raw_size > 1048576) | .name' -o raw`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)

		if _, err := cli.ParseOutputFormat(outputFormat); err != nil {
			return err
		}
		return loadConfig()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $BZ2P_CONFIG or the OS config dir)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "yaml", "output format: yaml, json, raw")
	rootCmd.PersistentFlags().StringVar(&outputQuery, "jq", "", "jq expression applied to structured output")
}

func loadConfig() error {
	var (
		cfg *cli.Config
		err error
	)
	if configPath != "" {
		cfg, err = cli.LoadFrom(configPath)
	} else {
		cfg, err = cli.Load()
	}
	if err != nil {
		return fmt.Errorf("config not available: %w", err)
	}
	globalConfig = cfg
	return nil
}

// output writes a structured result honoring --output and --jq.
func output(cmd *cobra.Command, result any) error {
	return cli.Output(result, cli.OutputOptions{
		Format: cli.OutputFormat(outputFormat),
		Query:  outputQuery,
		Writer: cmd.OutOrStdout(),
	})
}
