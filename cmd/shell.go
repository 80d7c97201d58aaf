package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pable/go-dota-narrative/internal/catalog"
	"github.com/pable/go-dota-narrative/internal/report"
	"github.com/pable/go-dota-narrative/internal/storage"
)

var (
	cPrompt   = color.New(color.FgCyan, color.Bold)
	cMuted    = color.New(color.Faint)
	cError    = color.New(color.FgRed, color.Bold)
	cWarn     = color.New(color.FgYellow)
	cCmd      = color.New(color.FgYellow, color.Bold)
	cGreeting = color.New(color.Bold)
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive REPL session",
	Long:  "Open a persistent session against the narrative database. Type 'help' for available commands.",
	Args:  cobra.NoArgs,
	RunE:  runShell,
}

func runShell(_ *cobra.Command, _ []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	cat, err := loadCatalog()
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	cGreeting.Println("dotanarrative shell")
	cMuted.Println("type 'help' or 'exit'")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		cPrompt.Print("dota")
		cMuted.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		cmd, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)
		args := strings.Fields(rest)

		switch cmd {
		case "exit", "quit":
			return nil
		case "help":
			shellHelp()
		case "list":
			shellList(db)
		case "show":
			if len(args) == 0 {
				cError.Fprintln(os.Stderr, "usage: show <match-id> [--full]")
				continue
			}
			id, err := parseMatchID(args[0])
			if err != nil {
				cError.Fprintf(os.Stderr, "error: %v\n", err)
				continue
			}
			full := len(args) > 1 && args[1] == "--full"
			if err := showMatch(os.Stdout, db, id, full); err != nil {
				cError.Fprintf(os.Stderr, "error: %v\n", err)
			}
		case "hero":
			if rest == "" {
				cError.Fprintln(os.Stderr, "usage: hero <hero>")
				continue
			}
			shellHero(db, cat, rest)
		case "search":
			if rest == "" {
				cError.Fprintln(os.Stderr, "usage: search <text>")
				continue
			}
			shellSearch(db, rest)
		case "sql":
			if rest == "" {
				cError.Fprintln(os.Stderr, "usage: sql <query>")
				continue
			}
			shellSQL(db, rest)
		default:
			cWarn.Fprintf(os.Stderr, "unknown command %q, type 'help'\n", cmd)
		}
	}
	return scanner.Err()
}

func shellHelp() {
	fmt.Println()
	type entry struct{ cmd, desc string }
	rows := []entry{
		{"list", "list all stored matches"},
		{"show <match-id>", "show a match's narrative"},
		{"show <match-id> --full", "same, with vision and combat tables"},
		{"hero <hero>", "teamfight deaths of a hero across matches"},
		{"search <text>", "find timeline events containing text"},
		{"sql <query>", "run a raw SQL query"},
		{"help", "show this message"},
		{"exit / quit", "close the session"},
	}
	for _, r := range rows {
		fmt.Print("  ")
		cCmd.Printf("%-38s", r.cmd)
		fmt.Println(r.desc)
	}
	fmt.Println()
}

func shellList(db *storage.DB) {
	matches, err := db.ListMatches()
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if len(matches) == 0 {
		cMuted.Println("No matches stored yet.")
		return
	}
	printMatchList(os.Stdout, matches)
}

func shellHero(db *storage.DB, cat *catalog.Catalog, query string) {
	name := query
	if h, ok := cat.HeroByQuery(query); ok {
		name = h.LocalizedName
	}
	rows, err := db.HeroTrend(name)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if len(rows) == 0 {
		cMuted.Printf("No stored teamfights with %s.\n", name)
		return
	}
	report.PrintHeroTrend(os.Stdout, name, rows)
}

func shellSearch(db *storage.DB, text string) {
	hits, err := db.SearchEvents(text, nil)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if len(hits) == 0 {
		cMuted.Println("No matching events.")
		return
	}
	report.PrintEventHits(os.Stdout, hits)
}

func shellSQL(db *storage.DB, query string) {
	cols, rows, err := db.QueryRaw(query)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if len(rows) == 0 {
		cMuted.Println("(no rows)")
		return
	}
	report.PrintQueryResult(os.Stdout, cols, rows)
}
