package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jzebedee/bz2portable/pkg/cli"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or initialize the configuration",
	Long: `Show or initialize the configuration file.

Example config.yaml:

  algorithm: bzip2
  level: 9
  capacity: 65536
  store:
    type: s3
    bucket: archives
    prefix: daily
    endpoint: http://localhost:9000
  manifest:
    dir: /var/lib/bz2p/manifest

S3 credentials and the default region come from the usual AWS sources: the
AWS_* environment variables, the shared config and credentials files, or the
instance role. Uploads are buffered into parts of known size, so plain-http
endpoints such as a local MinIO work as well as https ones.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return output(cmd, globalConfig)
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), globalConfig.Path())
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := globalConfig.Path()
		if _, err := os.Stat(path); err == nil && !configForce {
			return fmt.Errorf("%s already exists, use --force to overwrite", path)
		}
		if err := globalConfig.Save(); err != nil {
			return err
		}
		cli.PrintSuccess(cmd.OutOrStdout(), "wrote %s", path)
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing file")

	configCmd.AddCommand(configShowCmd, configPathCmd, configInitCmd)
	rootCmd.AddCommand(configCmd)
}
