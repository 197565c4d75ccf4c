// Package platform owns the native window and GL context through GLFW.
// Everything here must run on the main OS thread.
package platform

import (
	"fmt"

	"github.com/go-gl/glfw/v3.3/glfw"

	"resonance/internal/input"
	"resonance/internal/logging"
)

// WindowConfig describes the window to create.
type WindowConfig struct {
	Title      string
	Width      int
	Height     int
	VSync      bool
	Resizable  bool
	HideCursor bool
}

// Window is a GLFW window with a current OpenGL 4.1 core context.
type Window struct {
	win      *glfw.Window
	onResize func(width, height int)
}

// Init initializes GLFW. Call Terminate once every window is destroyed.
func Init() error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("glfw init: %w", err)
	}
	return nil
}

func Terminate() {
	glfw.Terminate()
}

// NewWindow creates the window and makes its context current.
func NewWindow(cfg WindowConfig) (*Window, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	if cfg.Resizable {
		glfw.WindowHint(glfw.Resizable, glfw.True)
	} else {
		glfw.WindowHint(glfw.Resizable, glfw.False)
	}

	win, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create window: %w", err)
	}
	win.MakeContextCurrent()

	if cfg.VSync {
		glfw.SwapInterval(1)
	} else {
		// The frame limiter paces frames instead
		glfw.SwapInterval(0)
	}
	if cfg.HideCursor {
		win.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
	}

	w := &Window{win: win}
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		if w.onResize != nil {
			w.onResize(width, height)
		}
	})
	logging.Info("Created %dx%d window %q", cfg.Width, cfg.Height, cfg.Title)
	return w, nil
}

// OnResize registers the framebuffer size callback. It fires from PollEvents.
func (w *Window) OnResize(fn func(width, height int)) {
	w.onResize = fn
}

// Size is the framebuffer size in pixels.
func (w *Window) Size() (int, int) {
	return w.win.GetFramebufferSize()
}

func (w *Window) KeyPressed(key input.Key) bool {
	if key < 0 || key > input.KeyLast {
		return false
	}
	return w.win.GetKey(glfw.Key(key)) == glfw.Press
}

func (w *Window) ShouldClose() bool {
	return w.win.ShouldClose()
}

// SetShouldClose flags the window for closing, e.g. when the app quits.
func (w *Window) SetShouldClose(v bool) {
	w.win.SetShouldClose(v)
}

func (w *Window) PollEvents() {
	glfw.PollEvents()
}

func (w *Window) SwapBuffers() {
	w.win.SwapBuffers()
}

func (w *Window) SetTitle(title string) {
	w.win.SetTitle(title)
}

func (w *Window) SetVSync(on bool) {
	if on {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}
}

// Destroy closes the window and releases its context.
func (w *Window) Destroy() {
	if w.win == nil {
		return
	}
	w.win.Destroy()
	w.win = nil
}

// Now is the GLFW timer in seconds.
func Now() float64 {
	return glfw.GetTime()
}
