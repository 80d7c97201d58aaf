package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pable/go-dota-narrative/internal/catalog"
)

var catalogOut string

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the hero/item/ability catalog",
}

var catalogSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Rebuild the catalog from OpenDota constants",
	Long: `Downloads hero, item and ability constants from OpenDota and writes them in the
catalog YAML layout. Point --catalog (or catalog.path in the config) at the file to use it.`,
	Args: cobra.NoArgs,
	RunE: runCatalogSync,
}

func init() {
	catalogSyncCmd.Flags().StringVar(&catalogOut, "out", "catalog.yaml", "output file")
	catalogCmd.AddCommand(catalogSyncCmd)
}

func runCatalogSync(cmd *cobra.Command, _ []string) error {
	heroes, items, abilities, err := newOpenDota().GetCatalog(cmd.Context())
	if err != nil {
		return fmt.Errorf("fetch constants: %w", err)
	}
	if _, err := catalog.New(heroes, items, abilities); err != nil {
		return fmt.Errorf("validate catalog: %w", err)
	}
	b, err := catalog.Marshal(heroes, items, abilities)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(catalogOut); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(catalogOut, b, 0644); err != nil {
		return fmt.Errorf("write %s: %w", catalogOut, err)
	}
	fmt.Printf("wrote %s: %d heroes, %d items, %d abilities\n", catalogOut, len(heroes), len(items), len(abilities))
	return nil
}
