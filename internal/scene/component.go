package scene

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"resonance/internal/input"
	"resonance/internal/resources"
)

var ErrUnknownComponent = errors.New("unknown component type")

// FrameContext is what behaviours see during Update and LateUpdate.
type FrameContext struct {
	DeltaTime float32
	// Input may be nil when no window is attached.
	Input *input.Manager
	Scene *Scene
}

// Component is a piece of data or behaviour attached to a GameObject.
type Component interface {
	TypeName() string
	Enabled() bool
	SetEnabled(bool)
}

// Awaker components run once when their scene becomes current.
type Awaker interface {
	Awake(obj *GameObject)
}

type Updater interface {
	Update(obj *GameObject, ctx *FrameContext)
}

type LateUpdater interface {
	LateUpdate(obj *GameObject, ctx *FrameContext)
}

// Base carries the enabled flag every component has. Embed it.
type Base struct {
	IsEnabled *bool `json:"enabled,omitempty"`
}

func (b *Base) Enabled() bool {
	return b.IsEnabled == nil || *b.IsEnabled
}

func (b *Base) SetEnabled(v bool) {
	b.IsEnabled = &v
}

// Factory decodes one component from its scene JSON. Resource references
// are resolved through res.
type Factory func(raw json.RawMessage, res resources.Lookup) (Component, error)

// Registry maps component type names to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

func (r *Registry) Register(typeName string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[typeName] = f
}

// Types lists registered type names, sorted.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) build(typeName string, raw json.RawMessage, res resources.Lookup) (Component, error) {
	r.mu.RLock()
	f, ok := r.factories[typeName]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownComponent, typeName)
	}
	return f(raw, res)
}

// decodeInto is the common factory body: unmarshal into a fresh T.
func decodeInto[T any, PT interface {
	*T
	Component
}](raw json.RawMessage) (PT, error) {
	c := PT(new(T))
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, c); err != nil {
			return nil, err
		}
	}
	return c, nil
}
