package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"resonance/internal/graphics"
	"resonance/internal/graphics/graphicstest"
	"resonance/internal/input"
	"resonance/internal/scene"
	"resonance/internal/settings"
)

// fakeWindow closes itself after closeAfter calls to PollEvents. onPoll
// runs inside PollEvents with the 1-based poll count.
type fakeWindow struct {
	width, height int
	keys          map[input.Key]bool
	polls         int
	swaps         int
	closeAfter    int
	onPoll        func(n int, w *fakeWindow)
}

func newFakeWindow(closeAfter int) *fakeWindow {
	return &fakeWindow{width: 1280, height: 720, keys: map[input.Key]bool{}, closeAfter: closeAfter}
}

func (w *fakeWindow) Size() (int, int)            { return w.width, w.height }
func (w *fakeWindow) KeyPressed(k input.Key) bool { return w.keys[k] }
func (w *fakeWindow) ShouldClose() bool           { return w.closeAfter > 0 && w.polls >= w.closeAfter }
func (w *fakeWindow) SwapBuffers()                { w.swaps++ }

func (w *fakeWindow) PollEvents() {
	w.polls++
	if w.onPoll != nil {
		w.onPoll(w.polls, w)
	}
}

// probeLayer implements every hook and logs each call as "name.Hook".
type probeLayer struct {
	LayerBase
	log *[]string

	renderOut *graphics.Framebuffer
	postOut   *graphics.Framebuffer
	renderIn  []*graphics.Framebuffer
	postIn    []*graphics.Framebuffer

	resizes  [][2]Size
	appCfg   settings.Settings
	loaded   []*scene.Scene
	unloaded []*scene.Scene
	failOn   Hook
	failWith error
	onUpdate func()
}

func newProbe(name string, hooks Hook, log *[]string) *probeLayer {
	return &probeLayer{LayerBase: LayerBase{LayerName: name, Hooks: hooks}, log: log}
}

func (p *probeLayer) note(h Hook) error {
	*p.log = append(*p.log, p.LayerName+"."+h.String())
	if p.failOn.Has(h) {
		return p.failWith
	}
	return nil
}

func (p *probeLayer) OnAppLoad(cfg settings.Settings) error {
	p.appCfg = cfg
	return p.note(HookAppLoad)
}

func (p *probeLayer) OnUpdate() error {
	if p.onUpdate != nil {
		p.onUpdate()
	}
	return p.note(HookUpdate)
}

func (p *probeLayer) OnLateUpdate() error { return p.note(HookLateUpdate) }
func (p *probeLayer) OnPreRender() error  { return p.note(HookPreRender) }
func (p *probeLayer) OnAppUnload() error  { return p.note(HookAppUnload) }

func (p *probeLayer) OnRender(prev *graphics.Framebuffer) (*graphics.Framebuffer, error) {
	p.renderIn = append(p.renderIn, prev)
	return p.renderOut, p.note(HookRender)
}

func (p *probeLayer) OnPostRender(current *graphics.Framebuffer) (*graphics.Framebuffer, error) {
	p.postIn = append(p.postIn, current)
	return p.postOut, p.note(HookPostRender)
}

func (p *probeLayer) OnWindowResize(old, new Size) error {
	p.resizes = append(p.resizes, [2]Size{old, new})
	return p.note(HookWindowResize)
}

func (p *probeLayer) OnSceneLoad(s *scene.Scene) error {
	p.loaded = append(p.loaded, s)
	return p.note(HookSceneLoad)
}

func (p *probeLayer) OnSceneUnload(s *scene.Scene) error {
	p.unloaded = append(p.unloaded, s)
	return p.note(HookSceneUnload)
}

const allHooks = HookAppLoad | HookUpdate | HookLateUpdate | HookPreRender | HookRender |
	HookPostRender | HookWindowResize | HookSceneLoad | HookSceneUnload | HookAppUnload

func newTestApp(t *testing.T, win *fakeWindow, dev *graphicstest.Device) *Application {
	t.Helper()
	clock := 0.0
	opts := Options{
		AppName:      "ResonanceTest",
		SettingsPath: filepath.Join(t.TempDir(), settings.FileName),
		Clock: func() float64 {
			clock += 0.25
			return clock
		},
	}
	if win != nil {
		opts.Window = win
	}
	if dev != nil {
		opts.Device = dev
	}
	return New(opts)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func filter(log []string, suffix string) []string {
	var out []string
	for _, e := range log {
		if strings.HasSuffix(e, "."+suffix) {
			out = append(out, e)
		}
	}
	return out
}
