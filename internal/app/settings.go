package app

import (
	"resonance/internal/logging"
	"resonance/internal/settings"
)

// DefaultSettings assembles the settings document from the layers: named
// layers get their own section, unnamed layers are merged into the root.
func (a *Application) DefaultSettings() settings.Settings {
	result := settings.Settings{}
	for _, l := range a.layers {
		cfg := l.DefaultConfig()
		if name := l.Name(); name != "" {
			if cfg == nil {
				cfg = settings.Settings{}
			}
			result[name] = map[string]any(cfg)
			continue
		}
		logging.Warn("Unnamed layer! Injecting settings into global namespace, may conflict with other layers!")
		settings.MergePatch(result, cfg)
	}

	result["window_width"] = DefaultWindowWidth
	result["window_height"] = DefaultWindowHeight
	return result
}

// configureSettings merges the settings file over the defaults, or writes
// the defaults when there is no file yet. Failures fall back to defaults.
func (a *Application) configureSettings() {
	defaults := a.DefaultSettings()

	path := a.opts.SettingsPath
	if path == "" {
		p, err := settings.DefaultPath(a.opts.AppName)
		if err != nil {
			logging.Warn("Settings will not persist: %v", err)
			a.settings = defaults
			return
		}
		path = p
	}
	a.settingsPath = path

	merged, loaded, err := settings.LoadOrCreate(path, defaults)
	if err != nil {
		logging.Error("Failed to load settings from %s, using defaults: %v", path, err)
	} else if loaded {
		logging.Debug("Loaded settings from %s", path)
	} else {
		logging.Info("Wrote default settings to %s", path)
	}
	a.settings = merged
}

// SaveSettings writes the current settings back to disk.
func (a *Application) SaveSettings() error {
	if a.settingsPath == "" {
		p, err := settings.DefaultPath(a.opts.AppName)
		if err != nil {
			return err
		}
		a.settingsPath = p
	}
	return settings.Save(a.settingsPath, a.settings)
}
