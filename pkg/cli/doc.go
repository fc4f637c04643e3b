// Package cli provides the configuration, output formatting and terminal
// styling shared by bz2p commands.
//
// Configuration is a single YAML file, by default
// os.UserConfigDir()/bz2portable/config.yaml, overridable with $BZ2P_CONFIG.
// A missing file yields DefaultConfig.
//
// Example usage:
//
//	cfg, err := cli.Load()
//
//	cli.Output(records, cli.OutputOptions{
//	    Format: cli.FormatJSON,
//	    Query:  ".[].name",
//	})
package cli
