package layers

import (
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"resonance/internal/app"
	"resonance/internal/graphics"
	"resonance/internal/logging"
	"resonance/internal/resources"
	"resonance/internal/scene"
	"resonance/internal/settings"
	"resonance/internal/watch"
)

const reloadSettle = 100 * time.Millisecond

// FileWatcher reports files that changed on disk. *watch.Watcher is the
// production implementation.
type FileWatcher interface {
	AddFile(path string) error
	Drain(settle time.Duration) []string
	Close() error
}

// ShaderReloadLayer recompiles file-backed shaders when their sources change.
type ShaderReloadLayer struct {
	app.LayerBase
	app     *app.Application
	watcher FileWatcher
	byPath  map[string][]*graphics.Shader
}

// NewShaderReloadLayer watches with w, or with an fsnotify watcher created
// at app load when w is nil.
func NewShaderReloadLayer(a *app.Application, w FileWatcher) *ShaderReloadLayer {
	return &ShaderReloadLayer{
		LayerBase: app.LayerBase{
			LayerName: "ShaderReload",
			Hooks:     app.HookAppLoad | app.HookSceneLoad | app.HookUpdate | app.HookAppUnload,
		},
		app:     a,
		watcher: w,
		byPath:  make(map[string][]*graphics.Shader),
	}
}

func (l *ShaderReloadLayer) OnAppLoad(settings.Settings) error {
	if l.watcher != nil {
		return nil
	}
	w, err := watch.New()
	if err != nil {
		return err
	}
	l.watcher = w
	return nil
}

// OnSceneLoad watches every shader the resource manager currently holds.
func (l *ShaderReloadLayer) OnSceneLoad(*scene.Scene) error {
	clear(l.byPath)
	l.app.Resources().Each(resources.TypeShader, func(id uuid.UUID, v any) {
		sh, ok := v.(*graphics.Shader)
		if !ok {
			return
		}
		for _, p := range sh.FilePaths() {
			abs, err := filepath.Abs(p)
			if err != nil {
				logging.Warn("Shader %s: %v", id, err)
				continue
			}
			if err := l.watcher.AddFile(abs); err != nil {
				logging.Warn("Cannot watch %s: %v", abs, err)
				continue
			}
			l.byPath[abs] = append(l.byPath[abs], sh)
		}
	})
	logging.Debug("Watching %d shader sources", len(l.byPath))
	return nil
}

func (l *ShaderReloadLayer) OnUpdate() error {
	for _, path := range l.watcher.Drain(reloadSettle) {
		for _, sh := range l.byPath[path] {
			if err := sh.Reload(); err != nil {
				logging.Error("Reloading %s failed: %v", filepath.Base(path), err)
				continue
			}
			logging.Info("Reloaded shader %s", filepath.Base(path))
		}
	}
	return nil
}

func (l *ShaderReloadLayer) OnAppUnload() error {
	if l.watcher == nil {
		return nil
	}
	return l.watcher.Close()
}
