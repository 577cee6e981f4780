package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/SamirShaikh03/Fractured-Causality/internal/causal"
	"github.com/SamirShaikh03/Fractured-Causality/internal/levels"
	"github.com/SamirShaikh03/Fractured-Causality/internal/multiverse"
	"github.com/SamirShaikh03/Fractured-Causality/internal/storage"
)

var (
	flagTriggers []string
	flagSimTick  float64
	flagSimSave  string
)

var simCmd = &cobra.Command{
	Use:   "sim <level>",
	Short: "Apply scripted triggers to a level",
	Long: `Load a level, apply each trigger in order and print what changed.

A trigger is id=state, optionally followed by @universe to change the node
in that universe instead of the starting one. After the triggers, --tick
advances the session clock (paradox decay, cooldowns, goal checks).

Examples:
  causality sim level_01 --trigger switch_01=on
  causality sim level_03 --trigger ancient_tree=destroyed --tick 5
  causality sim level_02 --trigger stone_01=active@echo --save demo`,
	Args: cobra.ExactArgs(1),
	Run:  runSim,
}

func init() {
	simCmd.Flags().StringArrayVarP(&flagTriggers, "trigger", "t", nil, "Trigger id=state[@universe] (repeatable)")
	simCmd.Flags().Float64Var(&flagSimTick, "tick", 0, "Seconds to advance after the triggers")
	simCmd.Flags().StringVar(&flagSimSave, "save", "", "Store the resulting session in this save slot")
}

// trigger is one scripted state change.
type trigger struct {
	ID       string
	State    causal.State
	Universe string
}

func (t trigger) String() string {
	if t.Universe == "" {
		return fmt.Sprintf("%s=%s", t.ID, t.State)
	}
	return fmt.Sprintf("%s=%s@%s", t.ID, t.State, t.Universe)
}

// parseTrigger parses id=state[@universe].
func parseTrigger(s string) (trigger, error) {
	id, rest, ok := strings.Cut(strings.TrimSpace(s), "=")
	if !ok || id == "" || rest == "" {
		return trigger{}, fmt.Errorf("invalid trigger %q: expected id=state[@universe]", s)
	}
	name, universe, hasUniverse := strings.Cut(rest, "@")
	if hasUniverse && universe == "" {
		return trigger{}, fmt.Errorf("invalid trigger %q: empty universe", s)
	}
	state, err := causal.ParseState(name)
	if err != nil {
		return trigger{}, fmt.Errorf("invalid trigger %q: %w", s, err)
	}
	return trigger{ID: id, State: state, Universe: strings.ToLower(universe)}, nil
}

func runSim(_ *cobra.Command, args []string) {
	logger := newLogger("causality")

	cfg, err := loadConfig()
	if err != nil {
		fatal("%v", err)
	}

	triggers := make([]trigger, 0, len(flagTriggers))
	for _, raw := range flagTriggers {
		t, err := parseTrigger(raw)
		if err != nil {
			fatal("%v", err)
		}
		triggers = append(triggers, t)
	}

	lvl, err := levels.Find(args[0], levelLoaders()...)
	if err != nil {
		fatal("%v", err)
	}
	mgr, err := multiverse.New(cfg.MultiverseSettings(), multiverse.WithLogger(logger))
	if err != nil {
		fatal("%v", err)
	}
	if err := mgr.LoadLevel(lvl); err != nil {
		fatal("%v", err)
	}

	if err := simulate(os.Stdout, mgr, triggers, flagSimTick); err != nil {
		fatal("%v", err)
	}

	if flagSimSave == "" {
		return
	}
	store := openStore(cfg, logger)
	if store == nil {
		fatal("cannot save %q: saves database unavailable", flagSimSave)
	}
	err = saveSimulation(store, flagSimSave, mgr)
	store.Close()
	if err != nil {
		fatal("%v", err)
	}
	fmt.Printf("\nSaved to %q. Resume with 'causality play %s --resume %s'.\n", flagSimSave, lvl.ID, flagSimSave)
}

// saveSimulation stores the manager's session in the named slot.
func saveSimulation(store *storage.Store, slot string, mgr *multiverse.Manager) error {
	sess, err := mgr.Save()
	if err != nil {
		return err
	}
	data, err := multiverse.MarshalSession(sess)
	if err != nil {
		return err
	}
	_, err = store.PutSave(slot, sess.LevelID, mgr.Paradox().Level(), data)
	return err
}

// simulate applies the triggers to a loaded manager and reports the result.
func simulate(w io.Writer, mgr *multiverse.Manager, triggers []trigger, tick float64) error {
	lvl := mgr.Level()
	if lvl == nil {
		return multiverse.ErrNoLevel
	}
	fmt.Fprintf(w, "%s (%s)\n\n", lvl.Name, lvl.ID)

	for _, t := range triggers {
		if _, ok := mgr.Graph().Node(t.ID); !ok {
			return fmt.Errorf("trigger %s: %w", t, causal.ErrUnknownNode)
		}
		universe := t.Universe
		if universe == "" {
			universe = mgr.Active()
		} else if _, ok := mgr.Universe(universe); !ok {
			return fmt.Errorf("trigger %s: unknown universe %q", t, universe)
		}

		res := mgr.PropagateIn(t.ID, t.State, universe)
		fmt.Fprintf(w, "> %s\n", t)
		if res.Empty() {
			fmt.Fprintln(w, "  no change")
			continue
		}
		for _, c := range res.Changes {
			via := "trigger"
			if c.Operator != "" {
				via = fmt.Sprintf("%s from %s", c.Operator, c.SourceID)
			}
			line := fmt.Sprintf("  %-16s %s -> %s  (%s)", c.NodeID, c.OldState, c.NewState, via)
			if c.ParadoxGenerated > 0 {
				line += fmt.Sprintf("  +%.1f paradox", c.ParadoxGenerated)
			}
			fmt.Fprintln(w, line)
		}
	}

	if tick > 0 {
		mgr.Update(tick)
		fmt.Fprintf(w, "\nadvanced %.1fs\n", tick)
	}

	p := mgr.Paradox()
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Paradox: %.1f/%.0f (%s)\n", p.Level(), p.Settings().Max, p.Tier())
	fmt.Fprintf(w, "Outcome: %s\n", mgr.Outcome())

	if orphans := mgr.Graph().Orphaned(); len(orphans) > 0 {
		fmt.Fprintf(w, "Orphaned: %s\n", strings.Join(orphans, ", "))
	}

	if ok, issues := mgr.Graph().Validate(); !ok {
		fmt.Fprintln(w, "Issues:")
		for _, issue := range issues {
			fmt.Fprintf(w, "  - %s\n", issue)
		}
	}

	if goals := mgr.Goals(); len(goals) > 0 {
		fmt.Fprintln(w, "Goals:")
		for _, g := range goals {
			mark := " "
			if g.Met {
				mark = "x"
			}
			fmt.Fprintf(w, "  [%s] %s is %s (now %s)\n", mark, g.Node, strings.Join(g.States, "|"), g.State)
		}
	}
	return nil
}
