package searchusage

import (
	"fmt"

	"github.com/clpipe/searchusage/internal/files"
	"github.com/clpipe/searchusage/internal/ignore"
	"github.com/spf13/cobra"
)

func newIgnoreCmd() *cobra.Command {
	ignCmd := &cobra.Command{Use: "ignore", Short: "Manage the " + ignore.FileName + " file"}

	var addPath string
	var common bool
	addCmd := &cobra.Command{
		Use:   "add [dir...]",
		Short: "Add directory names to " + ignore.FileName,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && !common {
				return fmt.Errorf("nothing to add: pass directory names or --common")
			}
			root, err := resolveRoot(addPath)
			if err != nil {
				return err
			}
			names := args
			if common {
				names = append(names, files.CommonVendorDirs()...)
			}
			out := cmd.OutOrStdout()
			for _, n := range names {
				added, err := files.AppendIgnore(root, n)
				if err != nil {
					return err
				}
				if added {
					fmt.Fprintln(out, "added", n)
				}
			}
			return nil
		},
	}
	addCmd.Flags().StringVarP(&addPath, "path", "p", "", "directory holding the ignore file (default: search root)")
	addCmd.Flags().BoolVar(&common, "common", false, "add common dependency directories (node_modules, vendor, .venv, ...)")

	var listPath string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Print every directory name that will be skipped",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			root, err := resolveRoot(listPath)
			if err != nil {
				return err
			}
			extra, err := ignoreFileDirs(root)
			if err != nil {
				return err
			}
			for _, n := range ignore.New(extra...).Names() {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		},
	}
	listCmd.Flags().StringVarP(&listPath, "path", "p", "", "directory holding the ignore file (default: search root)")

	ignCmd.AddCommand(addCmd, listCmd)
	return ignCmd
}
