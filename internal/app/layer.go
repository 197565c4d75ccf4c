package app

import (
	"strings"

	"resonance/internal/graphics"
	"resonance/internal/scene"
	"resonance/internal/settings"
)

// Hook is a set of lifecycle callbacks a layer takes part in.
type Hook uint16

const (
	HookAppLoad Hook = 1 << iota
	HookUpdate
	HookLateUpdate
	HookPreRender
	HookRender
	HookPostRender
	HookWindowResize
	HookSceneLoad
	HookSceneUnload
	HookAppUnload

	HookNone Hook = 0
)

var hookNames = []struct {
	hook Hook
	name string
}{
	{HookAppLoad, "OnAppLoad"},
	{HookUpdate, "OnUpdate"},
	{HookLateUpdate, "OnLateUpdate"},
	{HookPreRender, "OnPreRender"},
	{HookRender, "OnRender"},
	{HookPostRender, "OnPostRender"},
	{HookWindowResize, "OnWindowResize"},
	{HookSceneLoad, "OnSceneLoad"},
	{HookSceneUnload, "OnSceneUnload"},
	{HookAppUnload, "OnAppUnload"},
}

// Has reports whether every flag in f is set in h.
func (h Hook) Has(f Hook) bool {
	return f != 0 && h&f == f
}

func (h Hook) String() string {
	if h == HookNone {
		return "None"
	}
	var parts []string
	for _, n := range hookNames {
		if h&n.hook != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// Size is a window size in pixels.
type Size struct {
	Width, Height int
}

// Layer is one stage of the application pipeline. The hooks a layer takes
// part in are the flags returned by Overrides that it also implements; the
// Application never calls anything else.
type Layer interface {
	Name() string
	Enabled() bool
	Overrides() Hook
	// DefaultConfig is stored under Name in the settings document, or merged
	// into its root when Name is empty.
	DefaultConfig() settings.Settings
}

type AppLoader interface {
	OnAppLoad(cfg settings.Settings) error
}

type Updater interface {
	OnUpdate() error
}

type LateUpdater interface {
	OnLateUpdate() error
}

type PreRenderer interface {
	OnPreRender() error
}

// Renderer receives the output of the previous render layer and returns its
// own output, or nil to pass prev through.
type Renderer interface {
	OnRender(prev *graphics.Framebuffer) (*graphics.Framebuffer, error)
}

// PostRenderer works like Renderer but runs in reverse layer order.
type PostRenderer interface {
	OnPostRender(current *graphics.Framebuffer) (*graphics.Framebuffer, error)
}

type WindowResizer interface {
	OnWindowResize(old, new Size) error
}

type SceneLoader interface {
	OnSceneLoad(s *scene.Scene) error
}

type SceneUnloader interface {
	OnSceneUnload(s *scene.Scene) error
}

type AppUnloader interface {
	OnAppUnload() error
}

// LayerBase implements the Layer core. Embed it and set the fields.
type LayerBase struct {
	LayerName string
	Hooks     Hook
	Defaults  settings.Settings
	Disabled  bool
}

func (b *LayerBase) Name() string       { return b.LayerName }
func (b *LayerBase) Enabled() bool      { return !b.Disabled }
func (b *LayerBase) SetEnabled(on bool) { b.Disabled = !on }
func (b *LayerBase) Overrides() Hook    { return b.Hooks }

func (b *LayerBase) DefaultConfig() settings.Settings {
	return b.Defaults.Clone()
}
