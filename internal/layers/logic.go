package layers

import (
	"resonance/internal/app"
	"resonance/internal/input"
	"resonance/internal/logging"
	"resonance/internal/scene"
)

// LogicUpdateLayer runs scene behaviours. Nothing moves while paused.
type LogicUpdateLayer struct {
	app.LayerBase
	app *app.Application
	ctx scene.FrameContext
}

func NewLogicUpdateLayer(a *app.Application) *LogicUpdateLayer {
	return &LogicUpdateLayer{
		LayerBase: app.LayerBase{
			LayerName: "LogicUpdate",
			Hooks:     app.HookUpdate | app.HookLateUpdate,
		},
		app: a,
	}
}

func (l *LogicUpdateLayer) frame() *scene.FrameContext {
	l.ctx = scene.FrameContext{
		DeltaTime: float32(l.app.Timing().DeltaTime()),
		Input:     l.app.Input(),
	}
	return &l.ctx
}

func (l *LogicUpdateLayer) OnUpdate() error {
	if l.app.Input().JustPressed(input.ActionToggleProfiling) {
		logging.Info("Frame profile: %s", l.app.Profile().TopN(8))
	}
	s := l.app.CurrentScene()
	if s == nil || l.app.Paused() {
		return nil
	}
	s.Update(l.frame())
	return nil
}

func (l *LogicUpdateLayer) OnLateUpdate() error {
	s := l.app.CurrentScene()
	if s == nil || l.app.Paused() {
		return nil
	}
	s.LateUpdate(l.frame())
	return nil
}
