package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var showFull bool

var showCmd = &cobra.Command{
	Use:   "show <match-id>",
	Short: "Show a stored match narrative",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	showCmd.Flags().BoolVar(&showFull, "full", false, "also print vision and combat tables")
}

func runShow(cmd *cobra.Command, args []string) error {
	id, err := parseMatchID(args[0])
	if err != nil {
		return err
	}
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	return showMatch(os.Stdout, db, id, showFull)
}
