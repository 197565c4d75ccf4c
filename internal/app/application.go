// Package app runs the frame loop: it owns the window, the settings and the
// ordered layer list, swaps scenes at frame boundaries and composites the
// final render output onto the screen.
package app

import (
	"errors"
	"fmt"
	"iter"
	"slices"
	"sync/atomic"
	"time"

	"resonance/internal/graphics"
	"resonance/internal/input"
	"resonance/internal/logging"
	"resonance/internal/profiling"
	"resonance/internal/resources"
	"resonance/internal/scene"
	"resonance/internal/settings"
	"resonance/internal/timing"
)

const (
	DefaultWindowWidth  = 1920
	DefaultWindowHeight = 1080

	slowFrame = 16 * time.Millisecond
)

// Options configure a new Application.
type Options struct {
	AppName string
	Title   string
	// Editor keeps loaded scenes paused and re-reads the window size when
	// compositing.
	Editor bool
	// SettingsPath defaults to settings.DefaultPath(AppName).
	SettingsPath string

	// Window and Device are normally attached by a layer during app load.
	Window Window
	Device graphics.Device
	// Clock defaults to the process wall clock.
	Clock Clock

	Transitions Transitions

	// Register runs at the start of Start, before settings are assembled.
	// Use it to add component and resource types.
	Register func(a *Application)
}

// Application drives the layers. Construct one with New; it is not safe for
// concurrent use except for Quit.
type Application struct {
	opts    Options
	layers  []Layer
	started bool
	quit    atomic.Bool
	failure error

	window     Window
	device     graphics.Device
	windowSize Size
	viewport   graphics.Rect

	settingsPath string
	settings     settings.Settings

	current *scene.Scene
	target  *scene.Scene
	output  *graphics.Framebuffer

	timing     *timing.Timing
	clock      Clock
	lastFrame  float64
	limiter    *timing.FrameLimiter
	profile    *profiling.Frame
	input      *input.Manager
	resources  *resources.Manager
	components *scene.Registry

	transitions transitionState
}

func New(opts Options) *Application {
	if opts.AppName == "" {
		opts.AppName = "Resonance"
	}
	if opts.Title == "" {
		opts.Title = opts.AppName
	}
	a := &Application{
		opts:       opts,
		windowSize: Size{DefaultWindowWidth, DefaultWindowHeight},
		timing:     timing.New(),
		clock:      opts.Clock,
		limiter:    timing.NewFrameLimiter(),
		profile:    profiling.NewFrame(),
		input:      input.NewManager(),
		resources:  resources.NewManager(),
		components: scene.NewRegistry(),
	}
	if a.clock == nil {
		a.clock = wallClock()
	}
	scene.RegisterBuiltins(a.components)
	if opts.Window != nil {
		a.AttachWindow(opts.Window)
	}
	if opts.Device != nil {
		a.AttachDevice(opts.Device)
	}
	return a
}

// AddLayer appends l to the pipeline. Registration order is the forward
// dispatch order.
func (a *Application) AddLayer(l Layer) {
	if a.started {
		panic(fmt.Errorf("%w: cannot add layer %q", ErrAlreadyStarted, l.Name()))
	}
	a.layers = append(a.layers, l)
}

func (a *Application) Layers() []Layer {
	return slices.Clone(a.layers)
}

// Start runs the application until Quit is called, the window asks to close
// or a layer hook fails. App-unload hooks always run before it returns.
func (a *Application) Start() error {
	if a.started {
		panic(ErrAlreadyStarted)
	}
	a.started = true

	if a.opts.Register != nil {
		a.opts.Register(a)
	}
	a.configureSettings()
	a.windowSize = Size{
		Width:  a.settings.Int("window_width", DefaultWindowWidth),
		Height: a.settings.Int("window_height", DefaultWindowHeight),
	}
	a.viewport = graphics.Rect{Width: int32(a.windowSize.Width), Height: int32(a.windowSize.Height)}

	runErr := a.load()
	if runErr == nil {
		runErr = a.run()
	}
	return errors.Join(runErr, a.unload())
}

// Quit stops the loop at the top of the next frame. Safe from any goroutine.
func (a *Application) Quit() {
	a.quit.Store(true)
}

func (a *Application) load() error {
	stop := a.profile.Track("app.Load")
	defer stop()

	err := dispatch(a, HookAppLoad, forward, func(l AppLoader) error {
		return l.OnAppLoad(a.settings)
	})
	if err != nil {
		return err
	}
	if a.window == nil {
		return ErrNoWindow
	}
	if a.device == nil {
		return ErrNoDevice
	}
	logging.Info("%s loaded %d layers", a.opts.AppName, len(a.layers))
	return nil
}

func (a *Application) run() error {
	a.lastFrame = a.clock()
	for !a.quit.Load() {
		if err := a.frame(); err != nil {
			return err
		}
		if a.failure != nil {
			return a.failure
		}
	}
	return nil
}

func (a *Application) frame() error {
	a.profile.Reset()
	start := time.Now()

	if a.target != nil {
		if err := a.handleSceneChange(); err != nil {
			return err
		}
	}

	a.input.Poll(a.window)
	a.handleTransitions()

	a.window.PollEvents()
	if a.window.ShouldClose() {
		a.Quit()
	}

	now := a.clock()
	a.timing.Advance(now - a.lastFrame)
	a.lastFrame = now

	if a.current != nil {
		stages := []struct {
			name string
			run  func() error
		}{
			{"app.Update", a.update},
			{"app.LateUpdate", a.lateUpdate},
			{"app.PreRender", a.preRender},
			{"app.Render", a.render},
			{"app.PostRender", a.postRender},
		}
		for _, st := range stages {
			stop := a.profile.Track(st.name)
			err := st.run()
			stop()
			if err != nil {
				return err
			}
		}
	}

	if d := time.Since(start); d > slowFrame {
		logging.Warn("Slow frame: %v. Top tasks: %s", d, a.profile.TopN(5))
	}

	a.window.SwapBuffers()
	a.device.FlushDeletes()
	a.limiter.Wait()
	return nil
}

func (a *Application) update() error {
	return dispatch(a, HookUpdate, forward, Updater.OnUpdate)
}

func (a *Application) lateUpdate() error {
	return dispatch(a, HookLateUpdate, forward, LateUpdater.OnLateUpdate)
}

// preRender resets the viewport and scissor to the live window size and
// clears the default framebuffer before the layers run.
func (a *Application) preRender() error {
	w, h := a.window.Size()
	full := graphics.Rect{Width: int32(w), Height: int32(h)}
	a.device.Viewport(full)
	a.device.Scissor(full)
	a.device.Clear(graphics.BufferAll)

	return dispatch(a, HookPreRender, forward, PreRenderer.OnPreRender)
}

func (a *Application) render() error {
	var result *graphics.Framebuffer
	err := dispatch(a, HookRender, forward, func(l Renderer) error {
		out, err := l.OnRender(result)
		if out != nil {
			result = out
		}
		return err
	})
	a.output = result
	return err
}

func (a *Application) postRender() error {
	err := dispatch(a, HookPostRender, reverse, func(l PostRenderer) error {
		out, err := l.OnPostRender(a.output)
		if out != nil {
			a.output = out
		}
		return err
	})
	if err != nil {
		return err
	}
	a.compose()
	return nil
}

// compose blits the render output into the primary viewport of the default
// framebuffer.
func (a *Application) compose() {
	vp := a.viewport
	if a.opts.Editor {
		w, h := a.window.Size()
		vp.Width = max(min(vp.Width, int32(w)-vp.X), 0)
		vp.Height = max(min(vp.Height, int32(h)-vp.Y), 0)
	}
	a.device.Viewport(vp)
	a.device.Scissor(vp)

	out := a.output
	if out == nil {
		return
	}
	out.Unbind()
	out.Bind(graphics.BindRead)
	a.device.BindFramebuffer(graphics.BindDraw, 0)
	graphics.Blit(a.device, out.Rect(), vp, graphics.BufferAll, graphics.FilterNearest)
}

// unload releases resources while the GPU context is still alive, then runs
// the app-unload hooks in reverse order. Every layer is unloaded even if
// one fails.
func (a *Application) unload() error {
	var errs []error
	if err := a.resources.Close(); err != nil {
		errs = append(errs, fmt.Errorf("release resources: %w", err))
	}
	if a.device != nil {
		a.device.FlushDeletes()
	}
	for _, l := range a.layerSeq(reverse) {
		if !l.Enabled() || !l.Overrides().Has(HookAppUnload) {
			continue
		}
		u, ok := l.(AppUnloader)
		if !ok {
			continue
		}
		if err := u.OnAppUnload(); err != nil {
			errs = append(errs, &HookError{Layer: l.Name(), Hook: HookAppUnload, Err: err})
		}
	}
	return errors.Join(errs...)
}

// ResizeWindow notifies the resize layers with the old and new size, then
// stores the size and resets the primary viewport to cover it. A hook
// failure stops the loop after the current frame.
func (a *Application) ResizeWindow(size Size) error {
	old := a.windowSize
	err := dispatch(a, HookWindowResize, forward, func(l WindowResizer) error {
		return l.OnWindowResize(old, size)
	})
	a.windowSize = size
	a.viewport = graphics.Rect{Width: int32(size.Width), Height: int32(size.Height)}
	if err != nil {
		a.fail(err)
	}
	return err
}

func (a *Application) fail(err error) {
	if a.failure == nil {
		a.failure = err
	}
	a.Quit()
}

// AttachWindow is called by the layer that creates the platform window.
func (a *Application) AttachWindow(w Window) {
	a.window = w
}

// AttachDevice installs the GPU backend and registers the resource types
// that need it.
func (a *Application) AttachDevice(d graphics.Device) {
	a.device = d
	resources.RegisterBuiltins(a.resources, d)
}

func (a *Application) Window() Window {
	if !a.started {
		panic(ErrNotStarted)
	}
	return a.window
}

func (a *Application) Device() graphics.Device {
	if !a.started {
		panic(ErrNotStarted)
	}
	return a.device
}

func (a *Application) Name() string                        { return a.opts.AppName }
func (a *Application) Title() string                       { return a.opts.Title }
func (a *Application) IsEditor() bool                      { return a.opts.Editor }
func (a *Application) WindowSize() Size                    { return a.windowSize }
func (a *Application) PrimaryViewport() graphics.Rect      { return a.viewport }
func (a *Application) SetPrimaryViewport(r graphics.Rect)  { a.viewport = r }
func (a *Application) CurrentScene() *scene.Scene          { return a.current }
func (a *Application) TargetScene() *scene.Scene           { return a.target }
func (a *Application) RenderOutput() *graphics.Framebuffer { return a.output }
func (a *Application) Settings() settings.Settings         { return a.settings }
func (a *Application) Timing() *timing.Timing              { return a.timing }
func (a *Application) Input() *input.Manager               { return a.input }
func (a *Application) Profile() *profiling.Frame           { return a.profile }
func (a *Application) Resources() *resources.Manager       { return a.resources }
func (a *Application) Components() *scene.Registry         { return a.components }
func (a *Application) Paused() bool                        { return a.transitions.paused }

type order bool

const (
	forward order = false
	reverse order = true
)

func (a *Application) layerSeq(o order) iter.Seq2[int, Layer] {
	if o == reverse {
		return slices.Backward(a.layers)
	}
	return slices.All(a.layers)
}

// dispatch calls fn on every enabled layer that advertises hook and
// implements T, in the given order. The first error stops the stage.
func dispatch[T any](a *Application, hook Hook, o order, fn func(T) error) error {
	for _, l := range a.layerSeq(o) {
		if !l.Enabled() || !l.Overrides().Has(hook) {
			continue
		}
		impl, ok := l.(T)
		if !ok {
			continue
		}
		stop := a.profile.Track("layer." + l.Name() + "." + hook.String())
		err := fn(impl)
		stop()
		if err != nil {
			return &HookError{Layer: l.Name(), Hook: hook, Err: err}
		}
	}
	return nil
}
