package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/SamirShaikh03/Fractured-Causality/internal/levels"
	"github.com/SamirShaikh03/Fractured-Causality/internal/registry"
)

var flagKinds bool

var levelsCmd = &cobra.Command{
	Use:   "levels",
	Short: "List all available levels",
	Long: `Shows the levels shipped with the game, followed by any levels found
in the directory given with --dir. With --kinds, lists the entity kinds
level files may use instead.`,
	Args: cobra.NoArgs,
	Run:  runLevels,
}

func init() {
	levelsCmd.Flags().BoolVar(&flagKinds, "kinds", false, "List entity kinds instead of levels")
}

func runLevels(_ *cobra.Command, _ []string) {
	if flagKinds {
		printKinds(os.Stdout, registry.List())
		return
	}
	logger := newLogger("causality")
	lvls, err := allLevels(logger)
	if err != nil {
		fatal("%v", err)
	}
	printLevels(os.Stdout, lvls)
}

func printLevels(w io.Writer, lvls []levels.Level) {
	if len(lvls) == 0 {
		fmt.Fprintln(w, "No levels available.")
		return
	}

	fmt.Fprintln(w, "Available levels:")
	fmt.Fprintln(w)

	// Calculate column widths
	maxIDLen := 2 // "ID" header
	for _, l := range lvls {
		if len(l.ID) > maxIDLen {
			maxIDLen = len(l.ID)
		}
	}

	fmt.Fprintf(w, "  %-*s  %-8s  %s\n", maxIDLen, "ID", "Entities", "Name")
	fmt.Fprintf(w, "  %-*s  %-8s  %s\n", maxIDLen, "--", "--------", "----")

	for _, l := range lvls {
		fmt.Fprintf(w, "  %-*s  %-8d  %s\n", maxIDLen, l.ID, len(l.Entities), l.Name)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'causality play <id>' to play a level.")
}

func printKinds(w io.Writer, kinds []registry.KindInfo) {
	fmt.Fprintln(w, "Entity kinds:")
	fmt.Fprintln(w)
	for _, k := range kinds {
		fmt.Fprintf(w, "  %-8s  %s\n", k.Kind, k.Title)
	}
}
