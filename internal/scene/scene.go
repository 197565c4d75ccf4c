// Package scene holds the game object graph the Application swaps between.
package scene

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"resonance/internal/resources"
)

// Scene is a set of game objects loaded from one file.
type Scene struct {
	Name    string
	Path    string
	Objects []*GameObject

	// IsPlaying gates behaviour updates.
	IsPlaying bool
	// RequestReload is set by gameplay when the level should restart.
	RequestReload bool
}

func New(name string) *Scene {
	return &Scene{Name: name}
}

type objectDoc struct {
	GUID       uuid.UUID         `json:"guid"`
	Name       string            `json:"name"`
	Position   mgl32.Vec3        `json:"position"`
	Rotation   mgl32.Vec3        `json:"rotation"`
	Scale      *mgl32.Vec3       `json:"scale,omitempty"`
	Components []json.RawMessage `json:"components"`
}

type sceneDoc struct {
	Name    string      `json:"name"`
	Objects []objectDoc `json:"objects"`
}

// Load reads a scene file. Component resource references resolve through res.
func Load(path string, reg *Registry, res resources.Lookup) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	s, err := Parse(data, reg, res)
	if err != nil {
		return nil, fmt.Errorf("scene %s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	s.Path = path
	return s, nil
}

// Parse builds a scene from its JSON form.
func Parse(data []byte, reg *Registry, res resources.Lookup) (*Scene, error) {
	var doc sceneDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	s := New(doc.Name)
	for i, od := range doc.Objects {
		obj := &GameObject{
			GUID:     od.GUID,
			Name:     od.Name,
			Position: od.Position,
			Rotation: od.Rotation,
			Scale:    mgl32.Vec3{1, 1, 1},
		}
		if obj.GUID == uuid.Nil {
			obj.GUID = uuid.New()
		}
		if od.Scale != nil {
			obj.Scale = *od.Scale
		}
		for _, raw := range od.Components {
			var head struct {
				Type string `json:"type"`
			}
			if err := json.Unmarshal(raw, &head); err != nil {
				return nil, fmt.Errorf("object %d (%s): %w", i, od.Name, err)
			}
			c, err := reg.build(head.Type, raw, res)
			if err != nil {
				return nil, fmt.Errorf("object %d (%s): %w", i, od.Name, err)
			}
			obj.AddComponent(c)
		}
		s.Objects = append(s.Objects, obj)
	}
	return s, nil
}

// ToJSON serializes the scene in the form Load reads.
func (s *Scene) ToJSON() ([]byte, error) {
	doc := sceneDoc{Name: s.Name, Objects: make([]objectDoc, 0, len(s.Objects))}
	for _, obj := range s.Objects {
		scale := obj.Scale
		od := objectDoc{
			GUID:     obj.GUID,
			Name:     obj.Name,
			Position: obj.Position,
			Rotation: obj.Rotation,
			Scale:    &scale,
		}
		for _, c := range obj.components {
			raw, err := json.Marshal(c)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", obj.Name, c.TypeName(), err)
			}
			var fields map[string]any
			if err := json.Unmarshal(raw, &fields); err != nil {
				return nil, err
			}
			if fields == nil {
				fields = make(map[string]any)
			}
			fields["type"] = c.TypeName()
			tagged, err := json.Marshal(fields)
			if err != nil {
				return nil, err
			}
			od.Components = append(od.Components, tagged)
		}
		doc.Objects = append(doc.Objects, od)
	}
	return json.MarshalIndent(doc, "", "\t")
}

// AddObject appends obj and returns it.
func (s *Scene) AddObject(obj *GameObject) *GameObject {
	s.Objects = append(s.Objects, obj)
	return obj
}

// FindObjectByName returns the first object called name, or nil.
func (s *Scene) FindObjectByName(name string) *GameObject {
	for _, obj := range s.Objects {
		if obj.Name == name {
			return obj
		}
	}
	return nil
}

// MainCamera returns the camera flagged main, else the first enabled one.
func (s *Scene) MainCamera() (*GameObject, *Camera) {
	var firstObj *GameObject
	var first *Camera
	for _, obj := range s.Objects {
		for _, c := range obj.components {
			cam, ok := c.(*Camera)
			if !ok || !cam.Enabled() {
				continue
			}
			if cam.Main {
				return obj, cam
			}
			if first == nil {
				firstObj, first = obj, cam
			}
		}
	}
	return firstObj, first
}

// Awake wakes every enabled component once.
func (s *Scene) Awake() {
	for _, obj := range s.Objects {
		for _, c := range obj.components {
			if a, ok := c.(Awaker); ok && c.Enabled() {
				a.Awake(obj)
			}
		}
	}
}

func (s *Scene) Update(ctx *FrameContext) {
	if !s.IsPlaying {
		return
	}
	ctx.Scene = s
	for _, obj := range s.Objects {
		for _, c := range obj.components {
			if u, ok := c.(Updater); ok && c.Enabled() {
				u.Update(obj, ctx)
			}
		}
	}
}

func (s *Scene) LateUpdate(ctx *FrameContext) {
	if !s.IsPlaying {
		return
	}
	ctx.Scene = s
	for _, obj := range s.Objects {
		for _, c := range obj.components {
			if u, ok := c.(LateUpdater); ok && c.Enabled() {
				u.LateUpdate(obj, ctx)
			}
		}
	}
}

// Visit calls fn for every enabled component of type T, in object order.
func Visit[T Component](s *Scene, fn func(obj *GameObject, c T)) {
	for _, obj := range s.Objects {
		for _, c := range obj.components {
			if t, ok := c.(T); ok && c.Enabled() {
				fn(obj, t)
			}
		}
	}
}
