package tui

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/SamirShaikh03/Fractured-Causality/internal/causal"
	"github.com/SamirShaikh03/Fractured-Causality/internal/core"
	"github.com/SamirShaikh03/Fractured-Causality/internal/entity"
	"github.com/SamirShaikh03/Fractured-Causality/internal/multiverse"
	"github.com/SamirShaikh03/Fractured-Causality/internal/registry"
	"github.com/SamirShaikh03/Fractured-Causality/internal/storage"
)

// Sandbox layout constants
const (
	sidePanelWidth = 34
	headerLines    = 3
	footerLines    = 3
	sourcesShown   = 4
)

// QuickSaveName returns the save slot the sandbox writes for a level.
func QuickSaveName(levelID string) string {
	return "quick-" + levelID
}

// SandboxModel is the Bubble Tea model for playing one level.
type SandboxModel struct {
	mgr       *multiverse.Manager
	store     *storage.Store
	config    core.RuntimeConfig
	player    string
	logger    *log.Logger
	keyMapper *KeyMapper
	help      help.Model
	theme     Theme
	screen    *core.Screen
	feed      *feed

	cursor     int
	outcome    multiverse.Outcome // last outcome seen by a tick
	overlay    bool
	message    string
	recorded   bool
	embedded   bool // inside a SessionModel: back returns to the menu
	quitting   bool
	backToMenu bool
}

// NewSandboxModel creates a sandbox over a manager that already has a level
// loaded (or restored). A nil store disables saving and run history.
func NewSandboxModel(mgr *multiverse.Manager, store *storage.Store, cfg core.RuntimeConfig, player string) SandboxModel {
	if player == "" {
		player = "local"
	}
	f := &feed{}
	f.subscribe(mgr.Events())

	h := help.New()
	h.ShowAll = false

	m := SandboxModel{
		mgr:       mgr,
		store:     store,
		config:    cfg,
		player:    player,
		logger:    log.New(io.Discard),
		keyMapper: NewKeyMapper(),
		help:      h,
		theme:     DefaultTheme(),
		screen:    core.NewScreen(cfg.ScreenW, cfg.ScreenH),
		feed:      f,
		outcome:   mgr.Outcome(),
	}
	if lvl := mgr.Level(); lvl != nil {
		m.message = lvl.Description
	}
	return m
}

// WithLogger returns the model logging to l.
func (m SandboxModel) WithLogger(l *log.Logger) SandboxModel {
	if l != nil {
		m.logger = l
	}
	return m
}

// WithTheme returns the model rendering with theme.
func (m SandboxModel) WithTheme(theme Theme) SandboxModel {
	m.theme = theme
	return m
}

// Init starts the tick loop.
func (m SandboxModel) Init() tea.Cmd {
	return tickCmd(m.config.TickRate)
}

// Update handles messages and updates the model state.
func (m SandboxModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleAction(m.keyMapper.MapKey(msg))

	case tea.WindowSizeMsg:
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case TickMsg:
		return m.handleTick()
	}

	return m, nil
}

// handleAction applies one sandbox action.
func (m SandboxModel) handleAction(a core.Action) (tea.Model, tea.Cmd) {
	ids := m.nodeIDs()

	switch a {
	case core.ActionQuit:
		m.recordRun()
		m.quitting = true
		return m, tea.Quit

	case core.ActionBack:
		m.recordRun()
		if !m.embedded {
			m.quitting = true
			return m, tea.Quit
		}
		m.backToMenu = true
		return m, nil

	case core.ActionUp:
		if m.cursor > 0 {
			m.cursor--
		}
	case core.ActionDown:
		if m.cursor < len(ids)-1 {
			m.cursor++
		}

	case core.ActionDestroy:
		m.trigger(func(causal.State) causal.State { return causal.StateDestroyed })
	case core.ActionRestore:
		m.trigger(func(causal.State) causal.State { return causal.StateExists })
	case core.ActionToggleOpen:
		m.trigger(toggle(causal.StateOpen, causal.StateClosed))
	case core.ActionToggleActive:
		m.trigger(toggle(causal.StateActive, causal.StateInactive))
	case core.ActionTogglePower:
		m.trigger(toggle(causal.StateOn, causal.StateOff))

	case core.ActionUse:
		m.use()

	case core.ActionUniverse1, core.ActionUniverse2, core.ActionUniverse3:
		universes := m.mgr.Universes()
		if i := a.UniverseIndex(); i < len(universes) {
			// Refusals reach the player through the feed.
			m.mgr.Switch(universes[i].ID)
		}

	case core.ActionPulse:
		if !m.mgr.Pulse() {
			m.message = fmt.Sprintf("pulse unavailable (cooldown %.1fs, needs %.0f paradox)",
				m.mgr.PulseCooldown(), m.mgr.Settings().PulseCost)
		}

	case core.ActionOverlay:
		m.overlay = !m.overlay

	case core.ActionSave:
		m.quickSave()

	case core.ActionHelp:
		m.help.ShowAll = !m.help.ShowAll
	}

	return m, nil
}

// toggle flips between a and b; any other state goes to a.
func toggle(a, b causal.State) func(causal.State) causal.State {
	return func(cur causal.State) causal.State {
		if cur == a {
			return b
		}
		return a
	}
}

// trigger sets the selected node's state and reports the propagation.
func (m *SandboxModel) trigger(next func(causal.State) causal.State) {
	id := m.selectedID()
	if id == "" {
		return
	}
	if o := m.mgr.Outcome(); o == multiverse.OutcomeFailed || o == multiverse.OutcomeAbandoned {
		m.message = "the timeline has ended"
		return
	}
	n, ok := m.mgr.Graph().Node(id)
	if !ok {
		return
	}
	state := next(n.State())
	res := m.mgr.Propagate(id, state)
	m.message = describeResult(id, state, res)
}

// use performs the entity's own interaction.
func (m *SandboxModel) use() {
	id := m.selectedID()
	if id == "" {
		return
	}
	res, err := m.mgr.Use(id)
	e, _ := m.mgr.Entity(id)
	switch {
	case errors.Is(err, multiverse.ErrNotPresent):
		m.message = fmt.Sprintf("%s is not in %s", id, m.mgr.Active())
	case errors.Is(err, multiverse.ErrNotUsable):
		m.message = fmt.Sprintf("%s cannot be used", id)
	case err != nil:
		m.message = err.Error()
	case isCollectible(e):
		m.message = fmt.Sprintf("%s: %s (keys %d)", id, e.Status(), m.mgr.Keys())
	case res.Empty():
		m.message = fmt.Sprintf("%s: %s", id, e.Status())
	default:
		m.message = describeResult(id, res.Changes[0].NewState, res)
	}
}

func isCollectible(e registry.Entity) bool {
	_, ok := e.(entity.Collectible)
	return ok
}

func describeResult(id string, state causal.State, res causal.Result) string {
	if res.Empty() {
		return fmt.Sprintf("%s is already %s", id, state)
	}
	msg := fmt.Sprintf("%s → %s: %d change(s)", id, state, len(res.Changes))
	if res.Paradox > 0 {
		msg += fmt.Sprintf(", +%.1f paradox", res.Paradox)
	}
	return msg
}

// quickSave writes the session to the level's quick-save slot.
func (m *SandboxModel) quickSave() {
	if m.store == nil {
		m.message = "saving is unavailable"
		return
	}
	sess, err := m.mgr.Save()
	if err != nil {
		m.message = err.Error()
		return
	}
	data, err := multiverse.MarshalSession(sess)
	if err != nil {
		m.message = err.Error()
		return
	}
	name := QuickSaveName(sess.LevelID)
	if _, err := m.store.PutSave(name, sess.LevelID, m.mgr.Paradox().Level(), data); err != nil {
		m.logger.Warn("could not save session", "save", name, "error", err)
		m.message = "save failed"
		return
	}
	m.message = "saved to " + name
}

// handleTick advances the session clock. Outcome changes are picked up here
// even when a key press caused them.
func (m SandboxModel) handleTick() (tea.Model, tea.Cmd) {
	m.mgr.Update(m.config.TickSeconds())

	if o := m.mgr.Outcome(); o != m.outcome {
		m.outcome = o
		switch o {
		case multiverse.OutcomeCompleted:
			m.message = "causality restored: level complete"
		case multiverse.OutcomeFailed:
			m.message = "annihilation: the timeline collapsed"
		}
		if o != multiverse.OutcomePlaying {
			m.recordRun()
		}
	}

	return m, tickCmd(m.config.TickRate)
}

// recordRun stores the attempt once. A still-running attempt is abandoned.
func (m *SandboxModel) recordRun() {
	lvl := m.mgr.Level()
	if m.recorded || lvl == nil {
		return
	}
	m.recorded = true
	m.mgr.Abandon()
	if m.store == nil {
		return
	}
	id, err := m.store.RecordRun(storage.Run{
		LevelID:      lvl.ID,
		Outcome:      string(m.mgr.Outcome()),
		FinalParadox: m.mgr.Paradox().Level(),
		PeakTier:     m.mgr.PeakTier().String(),
		Duration:     m.mgr.Elapsed(),
		Player:       m.player,
	})
	if err != nil {
		m.logger.Warn("could not record run", "level", lvl.ID, "error", err)
		return
	}
	m.logger.Info("run recorded", "run", id, "level", lvl.ID, "outcome", m.mgr.Outcome())
}

func (m SandboxModel) nodeIDs() []string {
	entities := m.mgr.Entities()
	ids := make([]string, len(entities))
	for i, e := range entities {
		ids[i] = e.ID()
	}
	return ids
}

func (m SandboxModel) selectedID() string {
	ids := m.nodeIDs()
	if len(ids) == 0 {
		return ""
	}
	return ids[core.Clamp(m.cursor, 0, len(ids)-1)]
}

// Selected returns the id of the node under the cursor.
func (m SandboxModel) Selected() string {
	return m.selectedID()
}

// Message returns the last status line.
func (m SandboxModel) Message() string {
	return m.message
}

// OverlayOn reports whether causal sight is shown.
func (m SandboxModel) OverlayOn() bool {
	return m.overlay
}

// Recorded reports whether the run has been stored.
func (m SandboxModel) Recorded() bool {
	return m.recorded
}

// IsQuitting returns true if user requested to quit entirely.
func (m SandboxModel) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to the level menu.
func (m SandboxModel) BackToMenu() bool {
	return m.backToMenu
}

// Manager returns the session being played.
func (m SandboxModel) Manager() *multiverse.Manager {
	return m.mgr
}

// View renders the sandbox.
func (m SandboxModel) View() string {
	if m.quitting || m.backToMenu {
		return ""
	}

	width := max(m.config.ScreenW, 60)
	height := max(m.config.ScreenH, 16)
	bodyHeight := max(6, height-headerLines-footerLines-1)
	mainWidth := max(20, width-sidePanelWidth-4)

	var main string
	if m.overlay {
		m.screen.Resize(mainWidth, bodyHeight)
		DrawOverlay(m.screen, m.mgr.Graph().Visualization(), m.selectedID())
		main = RenderScreen(m.screen)
	} else {
		main = m.renderNodeList(mainWidth, bodyHeight)
	}

	var b strings.Builder
	b.WriteString(m.renderHeader(width))
	b.WriteString("\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, main, "  ", m.renderSidePanel(bodyHeight)))
	b.WriteString("\n")
	b.WriteString(m.renderFooter(width))
	return b.String()
}

func (m SandboxModel) renderHeader(width int) string {
	title := "Fractured Causality"
	if lvl := m.mgr.Level(); lvl != nil {
		title = lvl.Name
	}

	tabs := make([]string, 0, len(m.mgr.Universes()))
	for i, u := range m.mgr.Universes() {
		label := fmt.Sprintf("%d %s %3.0f%%", i+1, u.Name, u.Stability()*100)
		if u.ID == m.mgr.Active() {
			tabs = append(tabs, m.theme.UniverseActive.Render(label))
		} else {
			tabs = append(tabs, m.theme.UniverseInactive.Render(label))
		}
	}

	status := fmt.Sprintf("keys %d  %5.1fs", m.mgr.Keys(), m.mgr.Elapsed())
	switch {
	case m.mgr.Transitioning():
		status += fmt.Sprintf("  shifting %3.0f%%", m.mgr.TransitionProgress()*100)
	case m.mgr.Phasing():
		status += "  phasing"
	}

	sep := m.theme.HUDSeparator.Render(" │ ")
	line1 := m.theme.HUDTitle.Render(title) + sep + strings.Join(tabs, " ") + sep + m.theme.HUDValue.Render(status)

	p := m.mgr.Paradox()
	line2 := RenderMeter(m.theme, p.Level(), p.Settings().Max, p.Tier(), width)
	return line1 + "\n" + line2 + "\n"
}

func (m SandboxModel) renderNodeList(width, height int) string {
	entities := m.mgr.Entities()
	if len(entities) == 0 {
		return m.theme.Message.Render("no level loaded")
	}

	// Keep the cursor in view.
	start := 0
	if m.cursor >= height {
		start = m.cursor - height + 1
	}
	end := min(len(entities), start+height)

	visible := make(map[string]bool)
	for _, e := range m.mgr.Visible() {
		visible[e.ID()] = true
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		e := entities[i]
		b.WriteString(m.renderNodeRow(e, i == m.cursor, visible[e.ID()], width))
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m SandboxModel) renderNodeRow(e registry.Entity, selected, visible bool, width int) string {
	g := m.mgr.Graph()
	state := causal.State("")
	if n, ok := g.Node(e.ID()); ok {
		state = n.StateIn(m.mgr.Active())
	}
	r, _ := stateGlyph(state)

	cursor := "  "
	if selected {
		cursor = "> "
	}
	row := fmt.Sprintf("%s%c %-16s %-8s %-10s %s",
		cursor, r, truncate(e.ID(), 16), e.Kind(), state, e.Status())
	if g.IsOrphan(e.ID()) {
		row += "  orphaned"
	}
	row = truncate(row, width)

	style := m.theme.NodeNormal
	switch {
	case selected:
		style = m.theme.NodeSelected
	case g.IsOrphan(e.ID()):
		style = m.theme.NodeOrphan
	case !visible:
		style = m.theme.NodeAbsent
	}
	return style.Render(row)
}

func (m SandboxModel) renderSidePanel(height int) string {
	var b strings.Builder

	b.WriteString(m.theme.HUDTitle.Render("Goals"))
	b.WriteString("\n")
	for _, g := range m.mgr.Goals() {
		mark, style := "○", m.theme.GoalPending
		if g.Met {
			mark, style = "●", m.theme.GoalMet
		}
		b.WriteString(style.Render(truncate(fmt.Sprintf("%s %s: %s", mark, g.Node, g.State), sidePanelWidth-4)))
		b.WriteString("\n")
	}

	if path := m.mgr.Graph().LastPath(); len(path) > 0 {
		b.WriteString(m.theme.HUDTitle.Render("Last propagation"))
		b.WriteString("\n")
		for _, e := range path {
			b.WriteString(truncate(fmt.Sprintf("%s → %s", e.From, e.To), sidePanelWidth-4))
			b.WriteString("\n")
		}
	}

	if sources := m.mgr.Paradox().RecentSources(sourcesShown); len(sources) > 0 {
		b.WriteString(m.theme.HUDTitle.Render("Paradox sources"))
		b.WriteString("\n")
		for _, s := range sources {
			b.WriteString(truncate(fmt.Sprintf("+%.1f %s", s.Amount, s.ID), sidePanelWidth-4))
			b.WriteString("\n")
		}
	}

	if lines := m.feed.Lines(); len(lines) > 0 {
		b.WriteString(m.theme.HUDTitle.Render("Events"))
		b.WriteString("\n")
		for _, l := range lines {
			b.WriteString(m.theme.Message.Render(truncate(l, sidePanelWidth-4)))
			b.WriteString("\n")
		}
	}

	content := strings.TrimRight(b.String(), "\n")
	lines := strings.Split(content, "\n")
	if len(lines) > height {
		content = strings.Join(lines[:height], "\n")
	}
	return m.theme.PanelBorder.Width(sidePanelWidth).Render(content)
}

func (m SandboxModel) renderFooter(width int) string {
	var banner string
	switch m.mgr.Outcome() {
	case multiverse.OutcomeCompleted:
		banner = m.theme.Completed.Render("LEVEL COMPLETE") + "  "
	case multiverse.OutcomeFailed:
		banner = m.theme.Failed.Render("ANNIHILATION") + "  "
	}
	msg := banner + m.theme.Message.Render(truncate(m.message, max(10, width-20)))
	return msg + "\n" + m.theme.HUDControls.Render(m.help.View(m.keyMapper.Keys()))
}

// Run starts a standalone Bubble Tea program for one level.
func Run(mgr *multiverse.Manager, store *storage.Store, cfg core.RuntimeConfig, logger *log.Logger) error {
	model := NewSandboxModel(mgr, store, cfg, "local").WithLogger(logger)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(), // Use alternate screen buffer
	)

	_, err := p.Run()
	return err
}
