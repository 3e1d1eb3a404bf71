// Command hollowplay plays Dark Hollow in the terminal.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/talgya/darkhollow/internal/config"
	"github.com/talgya/darkhollow/internal/engine"
	"github.com/talgya/darkhollow/internal/entropy"
	"github.com/talgya/darkhollow/internal/parser"
	"github.com/talgya/darkhollow/internal/persistence"
)

var (
	// Global flags
	dbPath       string
	variantsPath string
	verbose      bool

	// New-game flags
	playerName  string
	variantName string
	seedFlag    int64
	eventEvery  int
)

var rootCmd = &cobra.Command{
	Use:   "hollowplay",
	Short: "Play Dark Hollow in the terminal",
	Long: `Starts a new game of Dark Hollow. Type commands in plain words
("gather wood", "build a shelter", "assign miner"); a tick passes after
each one and a random event may follow.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		return nil
	},
	RunE: runNew,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved games",
	RunE:  runList,
}

var resumeCmd = &cobra.Command{
	Use:   "resume <session-id>",
	Short: "Resume a saved game",
	Args:  cobra.ExactArgs(1),
	RunE:  runResume,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "data/darkhollow.db", "sqlite save file (empty disables saving)")
	rootCmd.PersistentFlags().StringVar(&variantsPath, "variants", "", "YAML file with extra variants")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().IntVar(&eventEvery, "events", 5, "commands between random events (0 disables)")

	rootCmd.Flags().StringVar(&playerName, "name", "", "name for the save")
	rootCmd.Flags().StringVar(&variantName, "variant", engine.DefaultVariant, "game variant")
	rootCmd.Flags().Int64Var(&seedFlag, "seed", 0, "fixed seed for a reproducible run")

	rootCmd.AddCommand(listCmd, resumeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func openDB() (*persistence.DB, error) {
	if dbPath == "" {
		return nil, nil
	}
	if dir := filepath.Dir(dbPath); dir != "" {
		os.MkdirAll(dir, 0755)
	}
	return persistence.Open(dbPath)
}

func runNew(cmd *cobra.Command, args []string) error {
	variants, err := config.LoadVariants(variantsPath)
	if err != nil {
		return err
	}
	v, ok := variants[variantName]
	if !ok {
		return fmt.Errorf("unknown variant %q (have %v)", variantName, engine.VariantNames(variants))
	}

	var seed *int64
	weatherSeed := time.Now().UnixNano()
	if cmd.Flags().Changed("seed") {
		seed = &seedFlag
		weatherSeed = seedFlag
	}

	db, err := openDB()
	if err != nil {
		return fmt.Errorf("open save file: %w", err)
	}
	if db != nil {
		defer db.Close()
	}

	id := uuid.NewString()
	name := playerName
	if name == "" {
		name = "Wanderer " + id[:8]
	}

	r := &repl{
		game:       engine.New(v, entropy.ForSession(seed, nil), weatherSeed),
		parser:     parser.New(),
		db:         db,
		id:         id,
		name:       name,
		seed:       seed,
		eventEvery: eventEvery,
		out:        cmd.OutOrStdout(),
	}
	return r.run(cmd.InOrStdin())
}

func runResume(cmd *cobra.Command, args []string) error {
	variants, err := config.LoadVariants(variantsPath)
	if err != nil {
		return err
	}
	db, err := openDB()
	if err != nil {
		return fmt.Errorf("open save file: %w", err)
	}
	if db == nil {
		return fmt.Errorf("resume needs a save file")
	}
	defer db.Close()

	saved, err := db.LoadSession(args[0])
	if err != nil {
		return err
	}
	v, ok := variants[saved.Variant]
	if !ok {
		return fmt.Errorf("saved game uses unknown variant %q", saved.Variant)
	}
	rng := entropy.ForSession(entropy.ResumeSeed(saved.Seed, saved.State.Time), nil)
	g, err := engine.Resume(v, rng, saved.State)
	if err != nil {
		return fmt.Errorf("resume %s: %w", saved.ID, err)
	}

	r := &repl{
		game:       g,
		parser:     parser.New(),
		db:         db,
		id:         saved.ID,
		name:       saved.Name,
		seed:       saved.Seed,
		eventEvery: eventEvery,
		out:        cmd.OutOrStdout(),
	}
	r.printf("Welcome back, %s.\n", saved.Name)
	return r.run(cmd.InOrStdin())
}

func runList(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return fmt.Errorf("open save file: %w", err)
	}
	if db == nil {
		return fmt.Errorf("list needs a save file")
	}
	defer db.Close()

	list, err := db.ListSessions()
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	if len(list) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No saved games found.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tVARIANT\tSAVED")
	for _, s := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.ID, s.Name, s.Variant, humanize.Time(s.UpdatedAt))
	}
	return w.Flush()
}
