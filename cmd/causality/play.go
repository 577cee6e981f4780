package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/SamirShaikh03/Fractured-Causality/internal/config"
	"github.com/SamirShaikh03/Fractured-Causality/internal/core"
	"github.com/SamirShaikh03/Fractured-Causality/internal/levels"
	"github.com/SamirShaikh03/Fractured-Causality/internal/multiverse"
	"github.com/SamirShaikh03/Fractured-Causality/internal/platform/tui"
	"github.com/SamirShaikh03/Fractured-Causality/internal/storage"
)

var flagResume string

var playCmd = &cobra.Command{
	Use:   "play [level]",
	Short: "Play a level",
	Long: `Start the interactive sandbox. Without a level, a menu lists every
level with its run statistics.

The level is an ID or a path to a level file.

Controls:
  Up/Down    - Select an object
  D / E      - Destroy / restore
  O / A / N  - Toggle open, active, power
  Enter      - Use the selected object
  1 2 3      - Shift to Prime, Echo, Fracture
  P          - Paradox pulse
  Tab        - Causal sight overlay
  S          - Quick save
  Esc        - Back to the menu
  Q/Ctrl+C   - Quit

Examples:
  causality play
  causality play level_02 --difficulty hard
  causality play ./my-levels/ring.yaml
  causality play level_01 --resume quick-level_01`,
	Args: cobra.MaximumNArgs(1),
	Run:  runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagResume, "resume", "", "Save slot to resume from")
}

func runPlay(_ *cobra.Command, args []string) {
	logger := newLogger("causality")

	cfg, err := loadConfig()
	if err != nil {
		fatal("%v", err)
	}

	// Get terminal size early for the first frame
	width, height := 80, 24 // Defaults
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}
	rc := core.RuntimeConfig{
		ScreenW:  width,
		ScreenH:  height,
		TickRate: flagFPS,
	}

	// Open save storage
	store := openStore(cfg, logger)
	// Continue without storage - the sandbox still works
	defer func() {
		if store != nil {
			store.Close()
		}
	}()

	var runErr error
	if len(args) == 0 && flagResume == "" {
		lvls, lvlErr := allLevels(logger)
		if lvlErr != nil {
			fatal("%v", lvlErr)
		}
		runErr = tui.RunSession(lvls, store, cfg.MultiverseSettings(), rc, logger)
	} else {
		mgr, mgrErr := prepareLevel(args, cfg, store, logger)
		if mgrErr != nil {
			fatal("%v", mgrErr)
		}
		runErr = tui.Run(mgr, store, rc, logger)
	}

	if runErr != nil {
		fatal("running sandbox: %v", runErr)
	}
}

// prepareLevel builds a manager for the requested level, restored from the
// --resume slot when one is given.
func prepareLevel(args []string, cfg config.Config, store *storage.Store, logger *log.Logger) (*multiverse.Manager, error) {
	mgr, err := multiverse.New(cfg.MultiverseSettings(), multiverse.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	var sess *multiverse.Session
	ref := ""
	if len(args) > 0 {
		ref = args[0]
	}
	if flagResume != "" {
		s, err := loadSession(store, flagResume)
		if err != nil {
			return nil, err
		}
		sess = &s
		if ref == "" {
			ref = s.LevelID
		}
	}

	lvl, err := levels.Find(ref, levelLoaders()...)
	if err != nil {
		return nil, fmt.Errorf("%w (run 'causality levels' to see available levels)", err)
	}

	if sess != nil {
		if err := mgr.Restore(lvl, *sess); err != nil {
			return nil, err
		}
		logger.Info("session restored", "slot", flagResume, "level", lvl.ID)
		return mgr, nil
	}
	if err := mgr.LoadLevel(lvl); err != nil {
		return nil, err
	}
	return mgr, nil
}

// loadSession reads and decodes a save slot.
func loadSession(store *storage.Store, name string) (multiverse.Session, error) {
	if store == nil {
		return multiverse.Session{}, fmt.Errorf("cannot resume %q: saves database unavailable", name)
	}
	save, err := store.GetSave(name)
	if err != nil {
		return multiverse.Session{}, err
	}
	if save == nil {
		return multiverse.Session{}, fmt.Errorf("save slot %q not found", name)
	}
	return multiverse.UnmarshalSession(save.Data)
}
