package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var dropForce bool

// dropCmd deletes the archive database file.
var dropCmd = &cobra.Command{
	Use:   "drop",
	Short: "Delete the archive database",
	Long:  "Permanently delete the SQLite archive. All imported matches and saved runs will be lost. Re-import your match dumps afterwards to rebuild.",
	Args:  cobra.NoArgs,
	RunE:  runDrop,
}

func init() {
	dropCmd.Flags().BoolVarP(&dropForce, "force", "f", false, "skip confirmation prompt")
}

func runDrop(cmd *cobra.Command, args []string) error {
	// A broken config must not block a drop; --db and the default path
	// still resolve without one.
	cfg, _ := loadConfig()
	path := resolveDBPath(cfg)

	if !dropForce {
		fmt.Fprintf(os.Stderr, "This will permanently delete: %s\n", path)
		fmt.Fprintf(os.Stderr, "Re-run with --force to confirm.\n")
		return nil
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintln(os.Stdout, "Archive does not exist, nothing to drop.")
			return nil
		}
		return fmt.Errorf("remove archive: %w", err)
	}
	fmt.Fprintf(os.Stdout, "Deleted: %s\n", path)
	return nil
}
