package tui

import (
	"fmt"

	"github.com/SamirShaikh03/Fractured-Causality/internal/events"
)

const feedSize = 6

// feed keeps the last few player-facing notifications of a session.
// It is shared by pointer so copies of the value-receiver model see one log.
type feed struct {
	lines []string
}

// subscribe attaches the feed to the session's router.
func (f *feed) subscribe(r *events.Router) {
	r.Subscribe(f.record,
		events.KindTierChanged,
		events.KindDangerCrossed,
		events.KindUniverseSwitched,
		events.KindSwitchFailed,
		events.KindLevelFailed,
		events.KindPulseActivated,
		events.KindLinkBroken,
	)
}

func (f *feed) record(e events.Event) {
	if line := describeEvent(e); line != "" {
		f.push(line)
	}
}

func (f *feed) push(line string) {
	f.lines = append(f.lines, line)
	if len(f.lines) > feedSize {
		f.lines = f.lines[len(f.lines)-feedSize:]
	}
}

// Lines returns the feed, oldest first.
func (f *feed) Lines() []string {
	return f.lines
}

func describeEvent(e events.Event) string {
	switch e := e.(type) {
	case events.TierChanged:
		return fmt.Sprintf("paradox %s → %s", e.OldTier, e.NewTier)
	case events.DangerCrossed:
		return fmt.Sprintf("danger: paradox at %.0f", e.Level)
	case events.UniverseSwitched:
		return fmt.Sprintf("shifted %s → %s", e.From, e.To)
	case events.SwitchFailed:
		if e.Remaining > 0 {
			return fmt.Sprintf("cannot shift to %s: %s (%.1fs)", e.Target, e.Reason, e.Remaining)
		}
		return fmt.Sprintf("cannot shift to %s: %s", e.Target, e.Reason)
	case events.LevelFailed:
		return fmt.Sprintf("level %s failed: %s", e.LevelID, e.Reason)
	case events.PulseActivated:
		return fmt.Sprintf("pulse spent %.0f paradox", e.Cost)
	case events.LinkBroken:
		return fmt.Sprintf("link %s → %s broken", e.SourceID, e.TargetID)
	}
	return ""
}
