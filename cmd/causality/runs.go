package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/SamirShaikh03/Fractured-Causality/internal/levels"
	"github.com/SamirShaikh03/Fractured-Causality/internal/storage"
)

var flagRunsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs <level>",
	Short: "Show recent runs of a level",
	Long: `Display the most recent attempts at a level with their outcome,
duration and final paradox, followed by the level's totals.

Examples:
  causality runs level_01
  causality runs level_03 --limit 20`,
	Args: cobra.ExactArgs(1),
	Run:  runRuns,
}

func init() {
	runsCmd.Flags().IntVarP(&flagRunsLimit, "limit", "n", 10, "Number of runs to show")
}

func runRuns(_ *cobra.Command, args []string) {
	levelID := args[0]

	// Check if level exists
	lvl, err := levels.Find(levelID, levelLoaders()...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: unknown level %q\n", levelID)
		fmt.Fprintln(os.Stderr, "Run 'causality levels' to see available levels.")
		os.Exit(1)
	}

	store := mustOpenStore()
	defer store.Close()

	runs, err := store.RecentRuns(lvl.ID, flagRunsLimit)
	if err != nil {
		store.Close()
		fatal("retrieving runs: %v", err)
	}
	stats, err := store.GetLevelStats(lvl.ID)
	if err != nil {
		store.Close()
		fatal("retrieving stats: %v", err)
	}
	printRuns(os.Stdout, lvl, runs, stats)
}

func printRuns(w io.Writer, lvl levels.Level, runs []storage.Run, stats *storage.LevelStats) {
	fmt.Fprintf(w, "Runs - %s\n", lvl.Name)
	fmt.Fprintln(w)

	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded yet.")
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Play 'causality play %s' to make the first attempt!\n", lvl.ID)
		return
	}

	fmt.Fprintf(w, "  %-10s  %-8s  %-7s  %-12s  %-10s  %s\n", "Outcome", "Time", "Paradox", "Peak", "Player", "Date")
	fmt.Fprintf(w, "  %-10s  %-8s  %-7s  %-12s  %-10s  %s\n", "-------", "----", "-------", "----", "------", "----")
	for _, r := range runs {
		fmt.Fprintf(w, "  %-10s  %7.1fs  %7.1f  %-12s  %-10s  %s\n",
			r.Outcome, r.Duration, r.FinalParadox, r.PeakTier, r.Player, r.CreatedAt.Format("2006-01-02 15:04"))
	}

	if stats == nil {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Completed %d of %d run(s)\n", stats.Completed, stats.Runs)
	if stats.Completed > 0 {
		fmt.Fprintf(w, "Best: %.1fs, calmest: %.1f paradox\n", stats.BestDuration, stats.LowestParadox)
	}
}
