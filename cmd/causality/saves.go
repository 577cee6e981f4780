package main

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/SamirShaikh03/Fractured-Causality/internal/multiverse"
	"github.com/SamirShaikh03/Fractured-Causality/internal/storage"
)

var savesCmd = &cobra.Command{
	Use:   "saves",
	Short: "List, show or delete save slots",
	Long: `Manage the save slots written by the sandbox (S key) and by
'causality sim --save'.

Examples:
  causality saves
  causality saves show quick-level_01
  causality saves delete demo`,
	Args: cobra.NoArgs,
	Run:  runSavesList,
}

var savesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List save slots",
	Args:  cobra.NoArgs,
	Run:   runSavesList,
}

var savesShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show what a save slot holds",
	Args:  cobra.ExactArgs(1),
	Run:   runSavesShow,
}

var savesDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a save slot",
	Args:  cobra.ExactArgs(1),
	Run:   runSavesDelete,
}

func init() {
	savesCmd.AddCommand(savesListCmd)
	savesCmd.AddCommand(savesShowCmd)
	savesCmd.AddCommand(savesDeleteCmd)
}

// mustOpenStore opens the database for commands that cannot work without it.
func mustOpenStore() *storage.Store {
	cfg, err := loadConfig()
	if err != nil {
		fatal("%v", err)
	}
	store, err := storage.Open(cfg.Storage.DB)
	if err != nil {
		fatal("opening saves database: %v", err)
	}
	return store
}

func runSavesList(_ *cobra.Command, _ []string) {
	store := mustOpenStore()
	defer store.Close()

	saves, err := store.ListSaves()
	if err != nil {
		store.Close()
		fatal("retrieving saves: %v", err)
	}
	printSaves(os.Stdout, saves)
}

func printSaves(w io.Writer, saves []storage.Save) {
	if len(saves) == 0 {
		fmt.Fprintln(w, "No saves yet.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Press S while playing to quick save.")
		return
	}

	maxNameLen := 4 // "Name" header
	for _, s := range saves {
		if len(s.Name) > maxNameLen {
			maxNameLen = len(s.Name)
		}
	}

	fmt.Fprintf(w, "  %-*s  %-10s  %-7s  %s\n", maxNameLen, "Name", "Level", "Paradox", "Updated")
	fmt.Fprintf(w, "  %-*s  %-10s  %-7s  %s\n", maxNameLen, "----", "-----", "-------", "-------")
	for _, s := range saves {
		fmt.Fprintf(w, "  %-*s  %-10s  %7.1f  %s\n",
			maxNameLen, s.Name, s.LevelID, s.Paradox, s.UpdatedAt.Format("2006-01-02 15:04"))
	}
}

func runSavesShow(_ *cobra.Command, args []string) {
	store := mustOpenStore()
	defer store.Close()

	save, err := store.GetSave(args[0])
	if err != nil {
		store.Close()
		fatal("%v", err)
	}
	if save == nil {
		store.Close()
		fatal("save slot %q not found", args[0])
	}
	sess, err := multiverse.UnmarshalSession(save.Data)
	if err != nil {
		store.Close()
		fatal("%v", err)
	}
	printSession(os.Stdout, *save, sess)
}

func printSession(w io.Writer, save storage.Save, sess multiverse.Session) {
	fmt.Fprintf(w, "Save %s\n", save.Name)
	fmt.Fprintf(w, "  Level:    %s\n", sess.LevelID)
	fmt.Fprintf(w, "  Universe: %s\n", sess.Active)
	fmt.Fprintf(w, "  Paradox:  %.1f (peak %s)\n", sess.Paradox.Level, sess.PeakTier)
	fmt.Fprintf(w, "  Keys:     %d\n", sess.Keys)
	fmt.Fprintf(w, "  Elapsed:  %.1fs\n", sess.Elapsed)
	fmt.Fprintf(w, "  Updated:  %s\n", save.UpdatedAt.Format("2006-01-02 15:04"))

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Nodes:")
	for _, n := range sess.Graph.Nodes {
		line := fmt.Sprintf("  %-22s %s", n.ID, n.State)
		if !n.Exists {
			line += " (gone)"
		}
		if len(n.UniverseStates) > 0 {
			var parts []string
			for _, u := range sortedKeys(n.UniverseStates) {
				parts = append(parts, fmt.Sprintf("%s=%s", u, n.UniverseStates[u]))
			}
			line += "  [" + strings.Join(parts, " ") + "]"
		}
		fmt.Fprintln(w, line)
	}
	if len(sess.Graph.Orphaned) > 0 {
		fmt.Fprintf(w, "Orphaned: %s\n", strings.Join(sess.Graph.Orphaned, ", "))
	}
}

func runSavesDelete(_ *cobra.Command, args []string) {
	store := mustOpenStore()
	defer store.Close()

	ok, err := store.DeleteSave(args[0])
	if err != nil {
		store.Close()
		fatal("%v", err)
	}
	if !ok {
		store.Close()
		fatal("save slot %q not found", args[0])
	}
	fmt.Printf("Deleted %s.\n", args[0])
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
