package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/SamirShaikh03/Fractured-Causality/internal/causal"
	"github.com/SamirShaikh03/Fractured-Causality/internal/levels"
	"github.com/SamirShaikh03/Fractured-Causality/internal/multiverse"
	"github.com/SamirShaikh03/Fractured-Causality/internal/registry"
	"github.com/SamirShaikh03/Fractured-Causality/internal/storage"
)

var quiet = log.New(io.Discard)

func TestParseTrigger(t *testing.T) {
	tests := []struct {
		in       string
		expected trigger
		wantErr  bool
	}{
		{in: "switch_01=on", expected: trigger{ID: "switch_01", State: causal.StateOn}},
		{in: " door_01=OPEN ", expected: trigger{ID: "door_01", State: causal.StateOpen}},
		{in: "stone_01=active@Echo", expected: trigger{ID: "stone_01", State: causal.StateActive, Universe: "echo"}},
		{in: "switch_01", wantErr: true},
		{in: "=on", wantErr: true},
		{in: "switch_01=", wantErr: true},
		{in: "switch_01=melted", wantErr: true},
		{in: "switch_01=on@", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseTrigger(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("parseTrigger(%q) = %+v, expected an error", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseTrigger(%q) failed: %v", tt.in, err)
			}
			if got != tt.expected {
				t.Errorf("parseTrigger(%q) = %+v, expected %+v", tt.in, got, tt.expected)
			}
		})
	}
}

func TestTriggerString(t *testing.T) {
	if got := (trigger{ID: "a", State: causal.StateOn}).String(); got != "a=on" {
		t.Errorf("String() = %q", got)
	}
	if got := (trigger{ID: "a", State: causal.StateOn, Universe: "echo"}).String(); got != "a=on@echo" {
		t.Errorf("String() = %q", got)
	}
}

func loadedManager(t *testing.T, id string) *multiverse.Manager {
	t.Helper()
	lvl, err := levels.Builtin().LoadByID(id)
	if err != nil {
		t.Fatalf("LoadByID(%s) failed: %v", id, err)
	}
	mgr, err := multiverse.New(multiverse.DefaultSettings(), multiverse.WithLogger(quiet))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := mgr.LoadLevel(lvl); err != nil {
		t.Fatalf("LoadLevel failed: %v", err)
	}
	return mgr
}

func TestSimulate(t *testing.T) {
	mgr := loadedManager(t, "level_01")
	var buf bytes.Buffer
	triggers := []trigger{{ID: "switch_01", State: causal.StateOn}}
	if err := simulate(&buf, mgr, triggers, 0); err != nil {
		t.Fatalf("simulate failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"First Fracture (level_01)",
		"> switch_01=on",
		"switch_01        off -> on  (trigger)",
		"door_01          closed -> on  (echo from switch_01)",
		"Paradox: 0.0/100 (stable)",
		"Outcome: playing",
		"[x] door_01 is on|open",
		"[ ] exit_01 is active",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestSimulateNoChange(t *testing.T) {
	mgr := loadedManager(t, "level_01")
	var buf bytes.Buffer
	if err := simulate(&buf, mgr, []trigger{{ID: "switch_01", State: causal.StateOff}}, 0); err != nil {
		t.Fatalf("simulate failed: %v", err)
	}
	if !strings.Contains(buf.String(), "no change") {
		t.Errorf("output = %s", buf.String())
	}
}

func TestSimulateOrphansAndParadox(t *testing.T) {
	mgr := loadedManager(t, "level_03")
	var buf bytes.Buffer
	if err := simulate(&buf, mgr, []trigger{{ID: "ancient_tree", State: causal.StateDestroyed}}, 0); err != nil {
		t.Fatalf("simulate failed: %v", err)
	}
	out := buf.String()
	if mgr.Paradox().Level() <= 0 {
		t.Fatalf("felling the tree should cost paradox:\n%s", out)
	}
	if !strings.Contains(out, "paradox") || !strings.Contains(out, "ancient_tree") {
		t.Errorf("output = %s", out)
	}
}

func TestSimulateRejectsBadTriggers(t *testing.T) {
	tests := []struct {
		name string
		trg  trigger
	}{
		{"unknown node", trigger{ID: "ghost", State: causal.StateOn}},
		{"unknown universe", trigger{ID: "switch_01", State: causal.StateOn, Universe: "nowhere"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mgr := loadedManager(t, "level_01")
			if err := simulate(io.Discard, mgr, []trigger{tt.trg}, 0); err == nil {
				t.Error("expected an error")
			}
		})
	}

	mgr := loadedManager(t, "level_01")
	err := simulate(io.Discard, mgr, []trigger{{ID: "ghost", State: causal.StateOn}}, 0)
	if !errors.Is(err, causal.ErrUnknownNode) {
		t.Errorf("error = %v, expected ErrUnknownNode", err)
	}
}

func TestSimulateWithoutLevel(t *testing.T) {
	mgr, err := multiverse.New(multiverse.DefaultSettings())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := simulate(io.Discard, mgr, nil, 0); !errors.Is(err, multiverse.ErrNoLevel) {
		t.Errorf("error = %v, expected ErrNoLevel", err)
	}
}

func TestPrintLevels(t *testing.T) {
	lvls, err := levels.Builtin().LoadAll()
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	var buf bytes.Buffer
	printLevels(&buf, lvls)
	out := buf.String()
	for _, want := range []string{"level_01", "First Fracture", "level_03", "Shade of the Tree"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}

	buf.Reset()
	printLevels(&buf, nil)
	if !strings.Contains(buf.String(), "No levels available.") {
		t.Errorf("empty output = %q", buf.String())
	}
}

func TestPrintKinds(t *testing.T) {
	var buf bytes.Buffer
	printKinds(&buf, registry.List())
	out := buf.String()
	for _, want := range []string{"switch", "Lever Switch", "shade", "portal"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func writeLevel(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	return p
}

const relayLevel = `id: relay
name: Relay
entities:
  - id: lever
    kind: switch
    state: "off"
  - id: lamp
    kind: switch
    state: "off"
dependencies:
  - source: lever
    target: lamp
    operator: echo
goals:
  - node: lamp
    states: ["on"]
`

func TestCheckFile(t *testing.T) {
	dir := t.TempDir()
	good := writeLevel(t, dir, "relay.yaml", relayLevel)
	bad := writeLevel(t, dir, "broken.yaml", "id: broken\nname: Broken\nentities:\n  - id: a\n    kind: dragon\n")

	var buf bytes.Buffer
	if !checkFile(&buf, good, multiverse.DefaultSettings(), quiet) {
		t.Errorf("relay should pass:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "relay: 2 entities, 1 links, 1 goals") {
		t.Errorf("output = %s", buf.String())
	}

	buf.Reset()
	if checkFile(&buf, bad, multiverse.DefaultSettings(), quiet) {
		t.Error("broken level should fail")
	}
	if out := buf.String(); !strings.Contains(out, "FAIL") || !strings.Contains(out, "dragon") {
		t.Errorf("output = %s", out)
	}
}

func TestCheckFilesCountsFailures(t *testing.T) {
	dir := t.TempDir()
	writeLevel(t, dir, "relay.yaml", relayLevel)
	writeLevel(t, dir, "broken.yml", "id: [")
	writeLevel(t, dir, "notes.txt", "not a level")

	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	files, err := levelFiles(dir, info)
	if err != nil {
		t.Fatalf("levelFiles failed: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("levelFiles = %v, expected the two YAML files", files)
	}

	var buf bytes.Buffer
	if failed := checkFiles(&buf, files, multiverse.DefaultSettings(), quiet); failed != 1 {
		t.Errorf("failed = %d, expected 1", failed)
	}
	if !strings.Contains(buf.String(), "2 file(s), 1 failed") {
		t.Errorf("output = %s", buf.String())
	}
}

func TestLevelFilesEmptyDir(t *testing.T) {
	dir := t.TempDir()
	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if _, err := levelFiles(dir, info); err == nil {
		t.Error("a directory without levels should be an error")
	}
}

func TestReportBuiltinLevels(t *testing.T) {
	lvls, err := levels.Builtin().LoadAll()
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	for _, lvl := range lvls {
		var buf bytes.Buffer
		if !reportLevel(&buf, lvl, multiverse.DefaultSettings(), quiet) {
			t.Errorf("builtin %s failed:\n%s", lvl.ID, buf.String())
		}
	}
}

func TestPrintIssuesSplitsJoinedErrors(t *testing.T) {
	var buf bytes.Buffer
	printIssues(&buf, errors.Join(errors.New("first"), errors.Join(errors.New("second"), errors.New("third"))))
	want := "  - first\n  - second\n  - third\n"
	if buf.String() != want {
		t.Errorf("printIssues = %q, expected %q", buf.String(), want)
	}
}

func TestRelevant(t *testing.T) {
	tests := []struct {
		name     string
		event    fsnotify.Event
		target   string
		isDir    bool
		expected bool
	}{
		{"write to watched file", fsnotify.Event{Name: "lv/a.yaml", Op: fsnotify.Write}, "lv/a.yaml", false, true},
		{"write to sibling", fsnotify.Event{Name: "lv/b.yaml", Op: fsnotify.Write}, "lv/a.yaml", false, false},
		{"chmod only", fsnotify.Event{Name: "lv/a.yaml", Op: fsnotify.Chmod}, "lv/a.yaml", false, false},
		{"yaml in dir", fsnotify.Event{Name: "lv/b.yml", Op: fsnotify.Write}, "lv", true, true},
		{"other file in dir", fsnotify.Event{Name: "lv/notes.txt", Op: fsnotify.Write}, "lv", true, false},
		{"created subdir", fsnotify.Event{Name: "lv/more", Op: fsnotify.Create}, "lv", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := relevant(tt.event, tt.target, tt.isDir); got != tt.expected {
				t.Errorf("relevant() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestPrintRuns(t *testing.T) {
	lvl := levels.Level{ID: "level_01", Name: "First Fracture"}

	var buf bytes.Buffer
	printRuns(&buf, lvl, nil, nil)
	if !strings.Contains(buf.String(), "No runs recorded yet.") {
		t.Errorf("empty output = %q", buf.String())
	}

	buf.Reset()
	runs := []storage.Run{{LevelID: "level_01", Outcome: "completed", Duration: 42.5, FinalParadox: 12, PeakTier: "unstable", Player: "ada"}}
	stats := &storage.LevelStats{LevelID: "level_01", Runs: 3, Completed: 1, BestDuration: 42.5, LowestParadox: 12}
	printRuns(&buf, lvl, runs, stats)
	out := buf.String()
	for _, want := range []string{"completed", "42.5s", "ada", "Completed 1 of 3 run(s)", "Best: 42.5s"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintSession(t *testing.T) {
	mgr := loadedManager(t, "level_01")
	mgr.Propagate("switch_01", causal.StateOn)
	sess, err := mgr.Save()
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	var buf bytes.Buffer
	printSession(&buf, storage.Save{Name: "demo"}, sess)
	out := buf.String()
	for _, want := range []string{"Save demo", "Level:    level_01", "Universe: prime", "switch_01", "echo=open"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintSavesEmpty(t *testing.T) {
	var buf bytes.Buffer
	printSaves(&buf, nil)
	if !strings.Contains(buf.String(), "No saves yet.") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestSaveSimulation(t *testing.T) {
	store, err := storage.Open(filepath.Join(t.TempDir(), "saves.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer store.Close()

	mgr := loadedManager(t, "level_01")
	if err := simulate(io.Discard, mgr, []trigger{{ID: "switch_01", State: causal.StateOn}}, 0); err != nil {
		t.Fatalf("simulate failed: %v", err)
	}
	if err := saveSimulation(store, "demo", mgr); err != nil {
		t.Fatalf("saveSimulation failed: %v", err)
	}

	sess, err := loadSession(store, "demo")
	if err != nil {
		t.Fatalf("loadSession failed: %v", err)
	}
	if sess.LevelID != "level_01" {
		t.Errorf("level = %s", sess.LevelID)
	}

	empty, err := multiverse.New(multiverse.DefaultSettings())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := saveSimulation(store, "none", empty); !errors.Is(err, multiverse.ErrNoLevel) {
		t.Errorf("error = %v, expected ErrNoLevel", err)
	}
}
