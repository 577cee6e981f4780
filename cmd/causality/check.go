package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/SamirShaikh03/Fractured-Causality/internal/levels"
	"github.com/SamirShaikh03/Fractured-Causality/internal/multiverse"
)

var (
	flagWatch    bool
	flagDebounce time.Duration
)

var checkCmd = &cobra.Command{
	Use:   "check <file|dir|level>",
	Short: "Validate level files",
	Long: `Validate one level file, every level file under a directory, or a
level by ID. Each level is parsed, checked for broken references and then
loaded into a session to catch links that cannot be built.

With --watch, files are revalidated whenever they change on disk.

Examples:
  causality check ./my-levels/ring.yaml
  causality check ./my-levels --watch
  causality check level_02`,
	Args: cobra.ExactArgs(1),
	Run:  runCheck,
}

func init() {
	checkCmd.Flags().BoolVarP(&flagWatch, "watch", "w", false, "Revalidate when files change")
	checkCmd.Flags().DurationVar(&flagDebounce, "debounce", 200*time.Millisecond, "Quiet period before revalidating")
}

func runCheck(_ *cobra.Command, args []string) {
	logger := newLogger("causality")
	cfg, err := loadConfig()
	if err != nil {
		fatal("%v", err)
	}
	settings := cfg.MultiverseSettings()
	target := args[0]

	info, statErr := os.Stat(target)
	if statErr != nil {
		if flagWatch {
			fatal("--watch needs a file or directory: %v", statErr)
		}
		// Not a path: look the level up by ID.
		lvl, err := levels.Find(target, levelLoaders()...)
		if err != nil {
			fatal("%v", err)
		}
		if !reportLevel(os.Stdout, lvl, settings, logger) {
			os.Exit(1)
		}
		return
	}

	files, err := levelFiles(target, info)
	if err != nil {
		fatal("%v", err)
	}
	failed := checkFiles(os.Stdout, files, settings, logger)

	if !flagWatch {
		if failed > 0 {
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := watchLevels(ctx, os.Stdout, target, info.IsDir(), settings, logger); err != nil {
		fatal("%v", err)
	}
}

// levelFiles lists the level files a check target names.
func levelFiles(target string, info fs.FileInfo) ([]string, error) {
	if !info.IsDir() {
		return []string{target}, nil
	}
	var files []string
	err := filepath.WalkDir(target, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && isLevelFile(p) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", target, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no level files under %s", target)
	}
	return files, nil
}

func isLevelFile(p string) bool {
	return slices.Contains(levels.FormatExtensions(), strings.ToLower(filepath.Ext(p)))
}

// checkFiles validates each file and returns the number that failed.
func checkFiles(w io.Writer, files []string, settings multiverse.Settings, logger *log.Logger) int {
	failed := 0
	for _, f := range files {
		if !checkFile(w, f, settings, logger) {
			failed++
		}
	}
	if len(files) > 1 {
		fmt.Fprintf(w, "\n%d file(s), %d failed\n", len(files), failed)
	}
	return failed
}

func checkFile(w io.Writer, path string, settings multiverse.Settings, logger *log.Logger) bool {
	lvl, err := levels.ReadFile(path)
	if err != nil {
		fmt.Fprintf(w, "FAIL %s\n", path)
		printIssues(w, err)
		return false
	}
	return reportLevel(w, lvl, settings, logger)
}

// reportLevel loads a parsed level into a session and prints the verdict.
func reportLevel(w io.Writer, lvl levels.Level, settings multiverse.Settings, logger *log.Logger) bool {
	name := lvl.FilePath
	if name == "" {
		name = lvl.ID
	}

	mgr, err := multiverse.New(settings, multiverse.WithLogger(logger))
	if err != nil {
		fmt.Fprintf(w, "FAIL %s\n", name)
		printIssues(w, err)
		return false
	}
	if err := mgr.LoadLevel(lvl); err != nil {
		fmt.Fprintf(w, "FAIL %s\n", name)
		printIssues(w, err)
		return false
	}

	ok, issues := mgr.Graph().Validate()
	links := len(mgr.Graph().AllDependencies())
	if want := len(lvl.Dependencies); links < want {
		ok = false
		issues = append(issues, fmt.Sprintf("%d of %d dependencies were skipped (duplicate or unlinkable)", want-links, want))
	}
	if !ok {
		fmt.Fprintf(w, "FAIL %s\n", name)
		for _, issue := range issues {
			fmt.Fprintf(w, "  - %s\n", issue)
		}
		return false
	}

	fmt.Fprintf(w, "ok   %s (%s: %d entities, %d links, %d goals)\n",
		name, lvl.ID, len(lvl.Entities), links, len(lvl.Goals))
	return true
}

// printIssues prints every error joined into err on its own line.
func printIssues(w io.Writer, err error) {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		for _, e := range joined.Unwrap() {
			printIssues(w, e)
		}
		return
	}
	fmt.Fprintf(w, "  - %v\n", err)
}

// watchLevels revalidates target whenever a level file under it changes.
// Changes are batched until the files have been quiet for flagDebounce.
func watchLevels(ctx context.Context, w io.Writer, target string, isDir bool,
	settings multiverse.Settings, logger *log.Logger,
) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	// Editors often replace files, so watch directories rather than files.
	if isDir {
		err = filepath.WalkDir(target, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil // Ignore errors, continue walking
			}
			if d.IsDir() {
				return watcher.Add(p)
			}
			return nil
		})
	} else {
		err = watcher.Add(filepath.Dir(target))
	}
	if err != nil {
		return fmt.Errorf("watching %s: %w", target, err)
	}

	fmt.Fprintf(w, "\nwatching %s (Ctrl+C to stop)\n", target)

	pending := make(map[string]bool)
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(event, target, isDir) {
				continue
			}
			if event.Has(fsnotify.Create) && isDir {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					watcher.Add(event.Name)
					continue
				}
			}
			logger.Debug("level file changed", "file", event.Name, "op", event.Op.String())
			pending[event.Name] = true

			// Reset or start debounce timer
			if timer == nil {
				timer = time.NewTimer(flagDebounce)
				timerC = timer.C
			} else {
				timer.Reset(flagDebounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "error", err)

		case <-timerC:
			timer, timerC = nil, nil
			fmt.Fprintf(w, "\n[%s]\n", time.Now().Format("15:04:05"))
			for _, f := range sortedPending(pending) {
				if _, err := os.Stat(f); err != nil {
					fmt.Fprintf(w, "gone %s\n", f)
					continue
				}
				checkFile(w, f, settings, logger)
			}
			clear(pending)
		}
	}
}

// relevant reports whether event touches a level file the watch covers.
func relevant(event fsnotify.Event, target string, isDir bool) bool {
	if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
		return false
	}
	if !isDir {
		return filepath.Clean(event.Name) == filepath.Clean(target)
	}
	if event.Has(fsnotify.Create) {
		return true
	}
	return isLevelFile(event.Name)
}

func sortedPending(pending map[string]bool) []string {
	out := make([]string, 0, len(pending))
	for f := range pending {
		if isLevelFile(f) {
			out = append(out, f)
		}
	}
	slices.Sort(out)
	return out
}
