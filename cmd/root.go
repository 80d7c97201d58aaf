package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pable/go-dota-narrative/internal/catalog"
	"github.com/pable/go-dota-narrative/internal/config"
	"github.com/pable/go-dota-narrative/internal/narrative"
	"github.com/pable/go-dota-narrative/internal/opendota"
	"github.com/pable/go-dota-narrative/internal/storage"
)

var (
	cfgPath     string
	dbPath      string
	catalogPath string
	logLevel    string

	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "dotanarrative",
	Short: "Dota 2 match narrative compactor",
	Long: `Compact parsed Dota 2 match telemetry (OpenDota match JSON) into a chronological
narrative, reconciled ward lifecycles, per-hero combat records and teamfight summaries.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgPath, "config", "", "path to YAML config file")
	pf.StringVar(&dbPath, "db", config.DefaultDBPath(), "path to SQLite database")
	pf.StringVar(&catalogPath, "catalog", "", "path to hero/item/ability catalog (default: embedded)")
	pf.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(compactCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(dropCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(itemsCmd)
	rootCmd.AddCommand(summarizeCmd)
	rootCmd.AddCommand(sqlCmd)
	rootCmd.AddCommand(heroCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(fightsCmd)
}

// setup loads configuration, lets explicit flags override it and builds the
// process logger.
func setup(cmd *cobra.Command, _ []string) error {
	c, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("db") || c.Storage.DBPath == "" {
		c.Storage.DBPath = dbPath
	}
	if flags.Changed("catalog") {
		c.Catalog.Path = catalogPath
	}
	if flags.Changed("log-level") {
		c.Logging.Level = logLevel
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	cfg = c
	logger = c.Logging.NewLogger(os.Stderr)
	slog.SetDefault(logger)
	return nil
}

// openDB opens the configured database, creating its directory if needed.
func openDB() (*storage.DB, error) {
	path := cfg.Storage.DBPath
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := storage.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	return db, nil
}

func loadCatalog() (*catalog.Catalog, error) {
	if cfg.Catalog.Path == "" {
		return catalog.Default()
	}
	logger.Debug("loading catalog", "path", cfg.Catalog.Path)
	return catalog.Load(cfg.Catalog.Path)
}

func newEngine() (*narrative.Engine, *catalog.Catalog, error) {
	cat, err := loadCatalog()
	if err != nil {
		return nil, nil, err
	}
	e, err := narrative.New(cat, logger)
	if err != nil {
		return nil, nil, err
	}
	return e, cat, nil
}

func newOpenDota() *opendota.Client {
	return opendota.NewClient(cfg.OpenDota.BaseURL, cfg.OpenDota.APIKey, cfg.OpenDota.Timeout)
}

func parseMatchID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid match id %q", s)
	}
	return id, nil
}
