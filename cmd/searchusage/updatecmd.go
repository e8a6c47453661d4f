package searchusage

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version and check for a newer release",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "searchusage %s\n", version)
			if opts.noUpdateCheck {
				return nil
			}
			if latest, newer, _ := checkUpdate(version, false); newer && latest != "" {
				fmt.Fprintf(out, "new version available: v%s (run 'searchusage update')\n", latest)
			}
			return nil
		},
	}
}

func newUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Update searchusage to the latest release",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := selfUpdate()
			if err != nil {
				return fmt.Errorf("update failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "searchusage is at v%s\n", v)
			return nil
		},
	}
}
