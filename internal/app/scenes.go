package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"resonance/internal/logging"
	"resonance/internal/scene"
)

// ManifestPath is the companion manifest of a scene file:
// <dir>/<stem>-manifest.json.
func ManifestPath(scenePath string) string {
	dir, base := filepath.Split(scenePath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, stem+"-manifest.json")
}

// PrepareScene loads the manifest next to path, if any, and then the scene
// itself. It does not queue the scene.
func (a *Application) PrepareScene(path string) (*scene.Scene, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSceneNotFound, path)
		}
		return nil, fmt.Errorf("stat scene: %w", err)
	}

	manifest := ManifestPath(path)
	if _, err := os.Stat(manifest); err == nil {
		logging.Info("Loading manifest from %q", manifest)
		if err := a.resources.LoadManifest(manifest); err != nil {
			return nil, err
		}
	} else {
		logging.Debug("No manifest for %s", path)
	}

	return scene.Load(path, a.components, a.resources)
}

// LoadScene queues the scene at path for the next frame boundary and
// resets the pause state. A missing file returns ErrSceneNotFound and
// changes nothing. A scene queued earlier in the same frame is replaced.
func (a *Application) LoadScene(path string) error {
	s, err := a.PrepareScene(path)
	if err != nil {
		return err
	}
	a.transitions.paused = false
	a.transitions.gameStarted = true
	a.input.Reset()
	a.SetTargetScene(s)
	return nil
}

// SetTargetScene queues s as the next current scene.
func (a *Application) SetTargetScene(s *scene.Scene) {
	if a.target != nil && s != nil && a.target != s {
		logging.Debug("Replacing pending scene %q with %q", a.target.Name, s.Name)
	}
	a.target = s
}

// handleSceneChange unloads the current scene in reverse layer order,
// promotes the target and loads it in forward order.
func (a *Application) handleSceneChange() error {
	if old := a.current; old != nil {
		err := dispatch(a, HookSceneUnload, reverse, func(l SceneUnloader) error {
			return l.OnSceneUnload(old)
		})
		if err != nil {
			return err
		}
	}

	a.current, a.target = a.target, nil
	a.timing.ResetSceneTime()
	logging.Info("Scene %q is now current", a.current.Name)

	err := dispatch(a, HookSceneLoad, forward, func(l SceneLoader) error {
		return l.OnSceneLoad(a.current)
	})
	if err != nil {
		return err
	}
	a.current.Awake()
	if !a.opts.Editor {
		a.current.IsPlaying = true
	}
	return nil
}
