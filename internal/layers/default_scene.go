package layers

import (
	"resonance/internal/app"
	"resonance/internal/settings"
)

// DefaultSceneLayer queues the start scene during app load. The settings
// key start_scene overrides the path it was built with.
type DefaultSceneLayer struct {
	app.LayerBase
	app  *app.Application
	path string
}

func NewDefaultSceneLayer(a *app.Application, path string) *DefaultSceneLayer {
	return &DefaultSceneLayer{
		LayerBase: app.LayerBase{
			LayerName: "DefaultScene",
			Hooks:     app.HookAppLoad,
			Defaults:  settings.Settings{"start_scene": path},
		},
		app:  a,
		path: path,
	}
}

func (l *DefaultSceneLayer) OnAppLoad(cfg settings.Settings) error {
	path := cfg.Section(l.Name()).String("start_scene", l.path)
	s, err := l.app.PrepareScene(path)
	if err != nil {
		return err
	}
	l.app.SetTargetScene(s)
	return nil
}
