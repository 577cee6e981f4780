package tui

import (
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/SamirShaikh03/Fractured-Causality/internal/core"
	"github.com/SamirShaikh03/Fractured-Causality/internal/levels"
	"github.com/SamirShaikh03/Fractured-Causality/internal/multiverse"
	"github.com/SamirShaikh03/Fractured-Causality/internal/storage"
)

type sessionScreen int

const (
	screenMenu sessionScreen = iota
	screenSandbox
	screenRuns
)

// SessionModel manages the full flow of one player: menu -> level -> menu.
// It is the top-level model for SSH sessions and for local play without a
// level argument. Every level attempt gets a fresh multiverse.Manager.
type SessionModel struct {
	levels    []levels.Level
	store     *storage.Store
	settings  multiverse.Settings
	logger    *log.Logger
	config    core.RuntimeConfig
	username  string
	sessionID string

	screen   sessionScreen
	menu     MenuModel
	sandbox  SandboxModel
	runs     RunsModel
	err      error
	quitting bool
}

// NewSessionModel creates a new session model.
func NewSessionModel(lvls []levels.Level, store *storage.Store, settings multiverse.Settings,
	cfg core.RuntimeConfig, username string, logger *log.Logger,
) SessionModel {
	if username == "" {
		username = "local"
	}
	sessionID := uuid.NewString()
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return SessionModel{
		levels:    lvls,
		store:     store,
		settings:  settings,
		logger:    logger.With("session", sessionID, "user", username),
		config:    cfg,
		username:  username,
		sessionID: sessionID,
		menu:      NewMenuModel(lvls, store, cfg),
	}
}

// SessionID returns the unique id of this session.
func (m SessionModel) SessionID() string {
	return m.sessionID
}

// Init initializes the session.
func (m SessionModel) Init() tea.Cmd {
	return m.menu.Init()
}

// Update handles messages for the session.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle window resize globally
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.config.ScreenW = wsm.Width
		m.config.ScreenH = wsm.Height
	}

	switch m.screen {
	case screenSandbox:
		return m.updateSandbox(msg)
	case screenRuns:
		return m.updateRuns(msg)
	default:
		return m.updateMenu(msg)
	}
}

// updateMenu handles updates when in menu mode.
func (m SessionModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	newMenu, cmd := m.menu.Update(msg)
	if menuModel, ok := newMenu.(MenuModel); ok {
		m.menu = menuModel
	}

	switch {
	case m.menu.IsQuitting():
		m.quitting = true
		return m, tea.Quit

	case m.menu.WantsRuns():
		m.runs = NewRunsModel(m.levels, m.store, m.config.ScreenW, m.config.ScreenH)
		m.screen = screenRuns
		return m, m.runs.Init()

	case m.menu.Selected() != nil:
		lvl := m.menu.Selected().Level
		sandbox, err := m.startLevel(lvl)
		if err != nil {
			m.logger.Error("could not start level", "level", lvl.ID, "error", err)
			m.err = err
			m.menu = NewMenuModel(m.levels, m.store, m.config)
			return m, nil
		}
		m.err = nil
		m.sandbox = sandbox
		m.screen = screenSandbox
		return m, m.sandbox.Init()
	}

	return m, cmd
}

// startLevel builds a fresh session manager for lvl.
func (m SessionModel) startLevel(lvl levels.Level) (SandboxModel, error) {
	mgr, err := multiverse.New(m.settings, multiverse.WithLogger(m.logger))
	if err != nil {
		return SandboxModel{}, err
	}
	if err := mgr.LoadLevel(lvl); err != nil {
		return SandboxModel{}, err
	}
	sandbox := NewSandboxModel(mgr, m.store, m.config, m.username).WithLogger(m.logger)
	sandbox.embedded = true
	return sandbox, nil
}

// updateSandbox handles updates when a level is being played.
func (m SessionModel) updateSandbox(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.sandbox.Update(msg)
	if sandbox, ok := newModel.(SandboxModel); ok {
		m.sandbox = sandbox
	}

	if m.sandbox.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	if m.sandbox.BackToMenu() {
		// Rebuild so run stats are fresh.
		m.menu = NewMenuModel(m.levels, m.store, m.config)
		m.screen = screenMenu
		return m, m.menu.Init()
	}

	return m, cmd
}

// updateRuns handles updates when the run board is open.
func (m SessionModel) updateRuns(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.runs.Update(msg)
	if runs, ok := newModel.(RunsModel); ok {
		m.runs = runs
	}

	if m.runs.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	if m.runs.IsGoingBack() {
		m.menu = NewMenuModel(m.levels, m.store, m.config)
		m.screen = screenMenu
		return m, m.menu.Init()
	}
	return m, cmd
}

// View renders the current view.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}

	switch m.screen {
	case screenSandbox:
		return m.sandbox.View()
	case screenRuns:
		return m.runs.View()
	}

	view := m.menu.View()
	if m.err != nil {
		view += "\n" + DefaultTheme().Failed.Render(fmt.Sprintf("error: %v", m.err))
	}
	return view
}

// RunSession starts a local Bubble Tea program with the level menu.
func RunSession(lvls []levels.Level, store *storage.Store, settings multiverse.Settings,
	cfg core.RuntimeConfig, logger *log.Logger,
) error {
	model := NewSessionModel(lvls, store, settings, cfg, "local", logger)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
