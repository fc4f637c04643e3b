package commands

import (
	"bufio"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jzebedee/bz2portable/pkg/namefilter"
)

var (
	filterIgnoreCase bool
	filterExplain    bool
)

var filterCmd = &cobra.Command{
	Use:   "filter EXPR [NAME...]",
	Short: "Test names against a filter expression",
	Long: `Print the names that pass a filter expression, one per line.

EXPR is a list of regular expressions separated by ';'. A pattern starting
with '-' excludes matching names; '+' or no prefix includes them. Write "\;"
for a literal ';'. Without NAME arguments names are read from stdin.

Examples:
  bz2p filter '\.go$;-_test\.go$' main.go main_test.go
  find . -type f | bz2p filter '-/\.git/'
  bz2p filter '\.txt$' a.txt b.md --explain -o json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFilter,
}

func init() {
	filterCmd.Flags().BoolVarP(&filterIgnoreCase, "ignore-case", "i", false, "match case-insensitively")
	filterCmd.Flags().BoolVar(&filterExplain, "explain", false, "print inclusion and exclusion for every name")

	rootCmd.AddCommand(filterCmd)
}

type filterResult struct {
	Name     string `json:"name" yaml:"name"`
	Included bool   `json:"included" yaml:"included"`
	Excluded bool   `json:"excluded" yaml:"excluded"`
	Match    bool   `json:"match" yaml:"match"`
}

func runFilter(cmd *cobra.Command, args []string) error {
	var opts []namefilter.Option
	if filterIgnoreCase {
		opts = append(opts, namefilter.WithIgnoreCase())
	}
	f, err := namefilter.Parse(args[0], opts...)
	if err != nil {
		return err
	}

	names := args[1:]
	if len(names) == 0 {
		sc := bufio.NewScanner(cmd.InOrStdin())
		for sc.Scan() {
			if line := sc.Text(); line != "" {
				names = append(names, line)
			}
		}
		if err := sc.Err(); err != nil {
			return err
		}
	}
	logger.Debug("filter", "patterns", f.Patterns(), "names", len(names))

	if filterExplain {
		results := make([]filterResult, len(names))
		for i, name := range names {
			results[i] = filterResult{
				Name:     name,
				Included: f.IsIncluded(name),
				Excluded: f.IsExcluded(name),
				Match:    f.Match(name),
			}
		}
		return output(cmd, results)
	}

	for _, name := range names {
		if f.Match(name) {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
	}
	return nil
}
