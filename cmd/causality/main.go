// causality is a terminal sandbox for the Fractured Causality causal graph.
//
// Usage:
//
//	causality levels              - List available levels
//	causality play [level]        - Play a level (or pick one from the menu)
//	causality sim <level>         - Run scripted triggers and print the outcome
//	causality check <level>       - Validate a level file
//	causality saves               - Manage save slots
//	causality runs <level>        - Show recent runs of a level
//	causality serve               - Start SSH server for remote play
//
// Global flags:
//
//	--config <path>      - Configuration file (default: search path)
//	--db <path>          - Database path (default: from config)
//	--dir <path>         - Extra level directory
//	--difficulty <name>  - easy, normal or hard
//	--log-level <level>  - debug, info, warn or error
//	--fps <rate>         - Simulation tick rate (default: 30)
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/SamirShaikh03/Fractured-Causality/internal/config"
	"github.com/SamirShaikh03/Fractured-Causality/internal/levels"
	"github.com/SamirShaikh03/Fractured-Causality/internal/storage"
)

var (
	// Global flags
	flagConfig     string
	flagDBPath     string
	flagLevelDir   string
	flagDifficulty string
	flagLogLevel   string
	flagFPS        int
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "causality",
	Short: "Fractured Causality - bend cause and effect in your terminal",
	Long: `Fractured Causality is a puzzle sandbox built on a causal graph.
Changing one object ripples through everything that depends on it, across
three parallel universes, and every contradiction feeds the paradox meter.

Available commands:
  levels   - Show all available levels
  play     - Play a level in the terminal
  sim      - Apply scripted triggers to a level
  check    - Validate level files
  saves    - List, show or delete save slots
  runs     - View run history
  serve    - Start SSH server for remote play

Examples:
  causality levels
  causality play level_01
  causality sim level_03 --trigger ancient_tree=destroyed
  causality check ./my-levels/ring.yaml --watch
  causality serve --ssh :2222`,
	SilenceUsage: true,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to configuration YAML")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to saves database (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagLevelDir, "dir", "", "Directory with additional level files")
	rootCmd.PersistentFlags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 30, "Simulation tick rate")

	// Add subcommands
	rootCmd.AddCommand(levelsCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(simCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(savesCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(serveCmd)
}

// newLogger builds the stderr logger at the --log-level threshold.
func newLogger(prefix string) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
	})
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		logger.Warn("unknown log level, using warn", "level", flagLogLevel)
		level = log.WarnLevel
	}
	logger.SetLevel(level)
	return logger
}

// loadConfig loads the configuration and applies the global overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}
	preset, err := config.ParsePreset(flagDifficulty)
	if err != nil {
		return cfg, err
	}
	config.ApplyPreset(&cfg, preset)
	if flagDBPath != "" {
		cfg.Storage.DB = flagDBPath
	}
	return cfg, nil
}

// levelLoaders returns the builtin loader followed by the --dir loader.
func levelLoaders() []*levels.Loader {
	loaders := []*levels.Loader{levels.Builtin()}
	if flagLevelDir != "" {
		loaders = append(loaders, levels.NewLoader(config.ExpandHome(flagLevelDir)))
	}
	return loaders
}

// allLevels loads every level from every loader. A level ID already seen
// in an earlier loader shadows later ones.
func allLevels(logger *log.Logger) ([]levels.Level, error) {
	var out []levels.Level
	seen := make(map[string]bool)
	for _, l := range levelLoaders() {
		lvls, err := l.LoadAll()
		if err != nil {
			return nil, fmt.Errorf("loading levels from %s: %w", l.Root, err)
		}
		for _, lvl := range lvls {
			if seen[lvl.ID] {
				logger.Warn("duplicate level id, skipping", "id", lvl.ID, "file", lvl.FilePath)
				continue
			}
			seen[lvl.ID] = true
			out = append(out, lvl)
		}
	}
	return out, nil
}

// openStore opens the configured database, or returns nil with a warning.
func openStore(cfg config.Config, logger *log.Logger) *storage.Store {
	store, err := storage.Open(cfg.Storage.DB)
	if err != nil {
		logger.Warn("could not open saves database", "path", cfg.Storage.DB, "error", err)
		return nil
	}
	return store
}

// fatal prints an error in the command style and exits.
func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
