package main

import (
	"flag"
	"path/filepath"
	"runtime"

	"github.com/xlab/closer"

	"resonance/internal/app"
	"resonance/internal/config"
	"resonance/internal/layers"
	"resonance/internal/logging"
	"resonance/internal/platform"
	"resonance/internal/settings"
)

func init() {
	// GLFW and the GL context must stay on the main thread.
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "resonance.toml", "launch configuration file")
	editor := flag.Bool("editor", false, "start in editor mode")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Fatal("Loading %s: %v", *configPath, err)
	}
	cfg.Apply()
	logging.SetLevel(cfg.Log.Level)

	opts := app.Options{
		AppName: cfg.App.Name,
		Title:   cfg.App.Title,
		Editor:  cfg.App.Editor || *editor,
		Clock:   platform.Now,
		Transitions: app.Transitions{
			StartObject:   cfg.Transitions.StartObject,
			LoadingObject: cfg.Transitions.LoadingObject,
			PauseObject:   cfg.Transitions.PauseObject,
			FirstLevel:    cfg.Transitions.FirstLevel,
			ReloadLevel:   cfg.Transitions.ReloadLevel,
		},
	}
	if cfg.App.SettingsDir != "" {
		opts.SettingsPath = filepath.Join(cfg.App.SettingsDir, settings.FileName)
	}
	a := app.New(opts)

	a.AddLayer(layers.NewWindowLayer(a))
	a.AddLayer(layers.NewDefaultSceneLayer(a, cfg.App.StartScene))
	a.AddLayer(layers.NewLogicUpdateLayer(a))
	a.AddLayer(layers.NewRenderLayer(a))
	a.AddLayer(layers.NewInterfaceLayer(a))
	reload := layers.NewShaderReloadLayer(a, nil)
	reload.SetEnabled(cfg.HotReload.Enabled)
	a.AddLayer(reload)

	// On SIGINT/SIGTERM stop the loop and wait for the layers to unload.
	done := make(chan struct{})
	closer.Bind(func() {
		a.Quit()
		<-done
	})

	err = a.Start()
	close(done)
	if err != nil {
		logging.Error("%s stopped: %v", a.Name(), err)
		closer.Exit(1)
	}
	closer.Close()
}
