package wm

import (
	"math"

	"github.com/1broseidon/tagwm/internal/hotkeys"
	"github.com/1broseidon/tagwm/internal/launch"
)

// run applies a bound action to the selected monitor and its focused
// client. Commands are queued and launched once the state is committed.
func (m *Manager) run(a hotkeys.Action) {
	st := m.state
	mon := st.monitors.Selected()
	if mon == nil {
		return
	}
	focused, hasFocus := st.Focused()

	switch a.Kind {
	case hotkeys.Spawn:
		m.pending = append(m.pending, launch.Command{Line: a.Command, Name: a.Name})

	case hotkeys.Close:
		if !hasFocus {
			return
		}
		if err := m.backend.Close(focused.Window); err != nil {
			m.logger.Debug("failed to close window", "window", focused.Window, "error", err)
		}

	case hotkeys.FocusNext, hotkeys.FocusPrev:
		dir := 1
		if a.Kind == hotkeys.FocusPrev {
			dir = -1
		}
		st.FocusNext(mon, dir)

	case hotkeys.SwapMaster:
		if hasFocus {
			st.SwapWithMaster(focused)
		}

	case hotkeys.Ratio:
		delta := a.Delta
		if delta == 0 {
			delta = st.opts.RatioStep
		}
		st.monitors.AdjustRatio(mon, mon.Active.Lowest(), delta)

	case hotkeys.Masters:
		delta := int(math.Round(a.Delta))
		if delta == 0 {
			delta = 1
		}
		st.monitors.AdjustMasters(mon, delta)

	case hotkeys.View:
		st.monitors.SetActiveTags(mon, TagBit(a.Tag))

	case hotkeys.MoveToTag:
		if hasFocus {
			st.SetTags(focused, TagBit(a.Tag))
		}

	case hotkeys.NextTag, hotkeys.PrevTag:
		n := len(st.opts.Tags)
		step := 1
		if a.Kind == hotkeys.PrevTag {
			step = -1
		}
		next := ((mon.Active.Lowest()+step)%n + n) % n
		st.monitors.SetActiveTags(mon, TagBit(next))

	case hotkeys.ToggleFloating:
		if hasFocus && !focused.Fullscreen {
			st.SetFloating(focused, !focused.Floating)
		}

	case hotkeys.Fullscreen:
		if hasFocus {
			m.setFullscreen(focused, !focused.Fullscreen)
		}

	case hotkeys.Quit:
		m.logger.Info("quit requested")
		m.outcome = Quit

	case hotkeys.Restart:
		m.logger.Info("restart requested")
		m.outcome = Restart

	default:
		m.logger.Warn("unknown action", "action", string(a.Kind))
	}
}
