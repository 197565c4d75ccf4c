// Package layers holds the engine's stock pipeline stages.
package layers

import (
	"resonance/internal/app"
	"resonance/internal/config"
	"resonance/internal/graphics/opengl"
	"resonance/internal/logging"
	"resonance/internal/platform"
	"resonance/internal/settings"
)

// WindowLayer creates the GLFW window and the GL device and hands both to
// the Application. Register it first so it unloads last.
type WindowLayer struct {
	app.LayerBase
	app    *app.Application
	window *platform.Window
	vsync  bool
}

func NewWindowLayer(a *app.Application) *WindowLayer {
	return &WindowLayer{
		LayerBase: app.LayerBase{
			LayerName: "Window",
			Hooks:     app.HookAppLoad | app.HookUpdate | app.HookAppUnload,
			Defaults:  settings.Settings{"resizable": true, "hide_cursor": false},
		},
		app: a,
	}
}

func (l *WindowLayer) OnAppLoad(cfg settings.Settings) error {
	own := cfg.Section(l.Name())
	if err := platform.Init(); err != nil {
		return err
	}

	size := l.app.WindowSize()
	l.vsync = config.GetVSync()
	win, err := platform.NewWindow(platform.WindowConfig{
		Title:      l.app.Title(),
		Width:      size.Width,
		Height:     size.Height,
		VSync:      l.vsync,
		Resizable:  own.Bool("resizable", true),
		HideCursor: own.Bool("hide_cursor", false),
	})
	if err != nil {
		return err
	}
	l.window = win

	dev, err := opengl.New()
	if err != nil {
		return err
	}

	win.OnResize(func(width, height int) {
		if err := l.app.ResizeWindow(app.Size{Width: width, Height: height}); err != nil {
			logging.Error("Resize to %dx%d failed: %v", width, height, err)
		}
	})
	l.app.AttachWindow(win)
	l.app.AttachDevice(dev)

	// The framebuffer can differ from the requested size on HiDPI screens.
	if w, h := win.Size(); w != size.Width || h != size.Height {
		return l.app.ResizeWindow(app.Size{Width: w, Height: h})
	}
	return nil
}

// OnUpdate applies vsync changes made through the render settings.
func (l *WindowLayer) OnUpdate() error {
	if on := config.GetVSync(); on != l.vsync {
		l.vsync = on
		l.window.SetVSync(on)
		logging.Info("VSync %v", on)
	}
	return nil
}

func (l *WindowLayer) OnAppUnload() error {
	if l.window != nil {
		l.window.Destroy()
		l.window = nil
	}
	platform.Terminate()
	return nil
}
