package commands

import (
	"github.com/spf13/cobra"

	"github.com/jzebedee/bz2portable/pkg/cli"
	"github.com/jzebedee/bz2portable/pkg/manifest"
)

var (
	manifestPurge bool
	manifestStore string
)

var manifestCmd = &cobra.Command{
	Use:     "manifest",
	Aliases: []string{"m"},
	Short:   "List, inspect and delete archive records",
	Long: `Every archive written by compress is recorded in the manifest with its
sizes, algorithm and the CRC-32 of the original data.

Examples:
  bz2p manifest list
  bz2p manifest list -o json --jq '.[].name'
  bz2p manifest get notes.txt.bz2
  bz2p manifest delete notes.txt.bz2 --purge`,
}

var manifestListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List all records, oldest first",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, closeManifest, err := openManifest()
		if err != nil {
			return err
		}
		defer closeManifest()

		records, err := m.List(cmd.Context())
		if err != nil {
			return err
		}
		if records == nil {
			records = []manifest.Record{}
		}
		return output(cmd, records)
	},
}

var manifestGetCmd = &cobra.Command{
	Use:   "get ID|NAME",
	Short: "Show one record",
	Long:  "Show one record. A name resolves to the most recent record with that name.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, closeManifest, err := openManifest()
		if err != nil {
			return err
		}
		defer closeManifest()

		rec, err := m.Lookup(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return output(cmd, rec)
	},
}

var manifestDeleteCmd = &cobra.Command{
	Use:     "delete ID|NAME...",
	Aliases: []string{"rm"},
	Short:   "Delete records, and with --purge their archives",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		m, closeManifest, err := openManifest()
		if err != nil {
			return err
		}
		defer closeManifest()

		var records []manifest.Record
		for _, arg := range args {
			rec, err := m.Lookup(ctx, arg)
			if err != nil {
				return err
			}
			records = append(records, rec)
		}

		if manifestPurge {
			store, err := openStore(ctx, manifestStore)
			if err != nil {
				return err
			}
			for _, rec := range records {
				if err := store.Delete(ctx, rec.Name); err != nil {
					return err
				}
			}
		}

		for _, rec := range records {
			if err := m.Delete(ctx, rec.ID); err != nil {
				return err
			}
			cli.PrintSuccess(cmd.OutOrStdout(), "deleted %s (%s)", rec.Name, rec.ID)
		}
		return nil
	},
}

func init() {
	manifestDeleteCmd.Flags().BoolVar(&manifestPurge, "purge", false, "also delete the archives from the store")
	manifestDeleteCmd.Flags().StringVar(&manifestStore, "store", "", "store URL overriding the config")

	manifestCmd.AddCommand(manifestListCmd, manifestGetCmd, manifestDeleteCmd)
	rootCmd.AddCommand(manifestCmd)
}
