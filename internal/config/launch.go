package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Launch is the startup configuration read from resonance.toml.
type Launch struct {
	App         AppSection         `toml:"app"`
	Log         LogSection         `toml:"log"`
	Render      RenderSection      `toml:"render"`
	Transitions TransitionsSection `toml:"transitions"`
	HotReload   HotReloadSection   `toml:"hot_reload"`
}

type AppSection struct {
	Name       string `toml:"name"`
	Title      string `toml:"title"`
	Editor     bool   `toml:"editor"`
	StartScene string `toml:"start_scene"`
	// SettingsDir overrides the per-user settings directory when set.
	SettingsDir string `toml:"settings_dir"`
}

type LogSection struct {
	Level string `toml:"level"`
}

type RenderSection struct {
	VSync    bool `toml:"vsync"`
	FPSLimit int  `toml:"fps_limit"`
}

// TransitionsSection names the scene objects and levels used by the
// start-screen, pause and reload transitions of the main loop.
type TransitionsSection struct {
	StartObject   string `toml:"start_object"`
	LoadingObject string `toml:"loading_object"`
	PauseObject   string `toml:"pause_object"`
	FirstLevel    string `toml:"first_level"`
	ReloadLevel   string `toml:"reload_level"`
}

type HotReloadSection struct {
	Enabled bool `toml:"enabled"`
}

// Default returns the configuration used when no file is present.
func Default() Launch {
	return Launch{
		App: AppSection{
			Name:       "Resonance",
			Title:      "Resonance",
			StartScene: "menu.json",
		},
		Log:    LogSection{Level: "info"},
		Render: RenderSection{VSync: true},
		Transitions: TransitionsSection{
			StartObject:   "StartScreenPlane",
			LoadingObject: "LoadingScreenPlane",
			PauseObject:   "PauseScreen",
			FirstLevel:    "level1.json",
			ReloadLevel:   "level1.json",
		},
		HotReload: HotReloadSection{Enabled: true},
	}
}

// Load reads path on top of Default. A missing file is not an error.
func Load(path string) (Launch, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read launch config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse launch config %s: %w", path, err)
	}
	if cfg.App.Name == "" {
		return cfg, fmt.Errorf("parse launch config %s: app.name must not be empty", path)
	}
	return cfg, nil
}

// Apply pushes the runtime-toggleable parts into the render settings.
func (l Launch) Apply() {
	SetVSync(l.Render.VSync)
	SetFPSLimit(l.Render.FPSLimit)
}
