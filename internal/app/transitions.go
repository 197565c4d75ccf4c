package app

import (
	"resonance/internal/input"
	"resonance/internal/logging"
	"resonance/internal/scene"
)

// Transitions names the scene objects and levels behind the input-driven
// transitions of the frame loop. An empty name disables that transition.
type Transitions struct {
	// StartObject is the start-screen object. Holding confirm while it is
	// in the scene shows LoadingObject and loads FirstLevel on the next
	// frame.
	StartObject   string
	LoadingObject string
	FirstLevel    string
	// PauseObject's GuiPanel is shown while the game is paused.
	PauseObject string
	// ReloadLevel is loaded when the scene requests a reload and the reload
	// action is held.
	ReloadLevel string
}

type transitionState struct {
	gameStarted bool
	paused      bool
	swapping    bool
}

func (a *Application) handleTransitions() {
	s := a.current
	if s == nil {
		return
	}
	t := a.opts.Transitions
	st := &a.transitions

	start := findObject(s, t.StartObject)
	if (start != nil && a.input.IsActive(input.ActionConfirm)) || st.swapping {
		setRenderEnabled(start, false)
		setRenderEnabled(findObject(s, t.LoadingObject), true)
		// Give the loading screen one frame on screen before loading.
		if st.swapping {
			st.swapping = false
			if err := a.LoadScene(t.FirstLevel); err != nil {
				logging.Error("Failed to load first level: %v", err)
			}
		} else {
			st.swapping = true
		}
	}

	if a.input.JustPressed(input.ActionPause) && st.gameStarted {
		st.paused = !st.paused
	}
	if pause := findObject(s, t.PauseObject); pause != nil {
		if panel, ok := scene.Get[*scene.GuiPanel](pause); ok {
			panel.SetEnabled(st.paused)
		}
	}

	if s.RequestReload && t.ReloadLevel != "" && a.target == nil && a.input.IsActive(input.ActionReload) {
		if err := a.LoadScene(t.ReloadLevel); err != nil {
			logging.Error("Failed to reload level: %v", err)
		}
	}
}

func findObject(s *scene.Scene, name string) *scene.GameObject {
	if name == "" {
		return nil
	}
	return s.FindObjectByName(name)
}

func setRenderEnabled(obj *scene.GameObject, on bool) {
	if obj == nil {
		return
	}
	if rc, ok := scene.Get[*scene.RenderComponent](obj); ok {
		rc.SetEnabled(on)
	}
}
