package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var dropForce bool

// dropCmd deletes one stored match, or the whole database when no match id is given.
var dropCmd = &cobra.Command{
	Use:   "drop [match-id]",
	Short: "Delete a stored match or the whole database",
	Long: `With a match id, delete that match's narrative and cached payload.
Without arguments, permanently delete the SQLite database. All stored narratives will be lost.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDrop,
}

func init() {
	dropCmd.Flags().BoolVarP(&dropForce, "force", "f", false, "skip confirmation prompt")
}

func runDrop(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		return dropMatch(args[0])
	}

	path := cfg.Storage.DBPath
	if !dropForce {
		fmt.Fprintf(os.Stderr, "This will permanently delete: %s\n", path)
		fmt.Fprintf(os.Stderr, "Re-run with --force to confirm.\n")
		return nil
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintln(os.Stdout, "Database does not exist, nothing to drop.")
			return nil
		}
		return fmt.Errorf("remove database: %w", err)
	}
	for _, suffix := range []string{"-wal", "-shm"} {
		os.Remove(path + suffix)
	}
	fmt.Fprintf(os.Stdout, "Deleted: %s\n", path)
	return nil
}

func dropMatch(arg string) error {
	id, err := parseMatchID(arg)
	if err != nil {
		return err
	}
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	deleted, err := db.DeleteMatch(id)
	if err != nil {
		return fmt.Errorf("delete match %d: %w", id, err)
	}
	if !deleted {
		fmt.Fprintf(os.Stdout, "Match %d is not stored, nothing to drop.\n", id)
		return nil
	}
	logger.Info("match dropped", "match_id", id)
	fmt.Fprintf(os.Stdout, "Deleted match %d\n", id)
	return nil
}
