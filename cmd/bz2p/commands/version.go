package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jzebedee/bz2portable/cmd/bz2p/internal/build"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("output") {
			return output(cmd, build.Get())
		}
		fmt.Fprintln(cmd.OutOrStdout(), build.String())
		if verbose {
			info := build.Get()
			fmt.Fprintf(cmd.OutOrStdout(), "  go:     %s\n", info.GoVersion)
			fmt.Fprintf(cmd.OutOrStdout(), "  config: %s\n", globalConfig.Path())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
