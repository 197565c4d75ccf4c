package scene

import (
	"encoding/json"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"resonance/internal/graphics"
	"resonance/internal/input"
	"resonance/internal/resources"
)

// Camera projects the scene from its GameObject's position and rotation
// (pitch in X, yaw in Y, degrees).
type Camera struct {
	Base
	FOV  float32 `json:"fov"`
	Near float32 `json:"near"`
	Far  float32 `json:"far"`
	Main bool    `json:"main"`

	lens graphics.Camera
}

func (*Camera) TypeName() string { return "Camera" }

func (c *Camera) defaults() {
	if c.FOV == 0 {
		c.FOV = 60
	}
	if c.Near == 0 {
		c.Near = 0.1
	}
	if c.Far == 0 {
		c.Far = 1000
	}
	c.lens = graphics.Camera{AspectRatio: 16.0 / 9.0, FOV: c.FOV, NearPlane: c.Near, FarPlane: c.Far}
}

// SetViewport updates the aspect ratio from the render target size.
func (c *Camera) SetViewport(width, height int) {
	c.lens.SetViewport(width, height)
}

func (c *Camera) Projection() mgl32.Mat4 {
	c.lens.FOV, c.lens.NearPlane, c.lens.FarPlane = c.FOV, c.Near, c.Far
	return c.lens.ProjectionMatrix()
}

func (c *Camera) View(obj *GameObject) mgl32.Mat4 {
	return graphics.ViewMatrix(obj.Position, obj.Rotation.Y(), obj.Rotation.X())
}

// RenderComponent draws a mesh with a shader.
type RenderComponent struct {
	Base
	ShaderID  uuid.UUID  `json:"shader"`
	MeshID    uuid.UUID  `json:"mesh"`
	TextureID uuid.UUID  `json:"texture"`
	Color     mgl32.Vec4 `json:"color"`

	Shader  *graphics.Shader    `json:"-"`
	Mesh    *graphics.Mesh      `json:"-"`
	Texture *graphics.Texture2D `json:"-"`
}

func (*RenderComponent) TypeName() string { return "RenderComponent" }

func lookup[T any](res resources.Lookup, id uuid.UUID, what string) (T, error) {
	var zero T
	if id == uuid.Nil {
		return zero, nil
	}
	if res == nil {
		return zero, fmt.Errorf("%s %s: %w", what, id, resources.ErrNotFound)
	}
	v, ok := res.Get(id)
	if !ok {
		return zero, fmt.Errorf("%s %s: %w", what, id, resources.ErrNotFound)
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%s %s is a %T", what, id, v)
	}
	return t, nil
}

func (r *RenderComponent) resolve(res resources.Lookup) error {
	var err error
	if r.Shader, err = lookup[*graphics.Shader](res, r.ShaderID, "shader"); err != nil {
		return err
	}
	if r.Mesh, err = lookup[*graphics.Mesh](res, r.MeshID, "mesh"); err != nil {
		return err
	}
	if r.Texture, err = lookup[*graphics.Texture2D](res, r.TextureID, "texture"); err != nil {
		return err
	}
	if r.Color == (mgl32.Vec4{}) {
		r.Color = mgl32.Vec4{1, 1, 1, 1}
	}
	return nil
}

// GuiPanel is an overlay element, e.g. the pause screen.
type GuiPanel struct {
	Base
	Color mgl32.Vec4 `json:"color"`
}

func (*GuiPanel) TypeName() string { return "GuiPanel" }

// Rotator spins its object at a constant rate in degrees per second.
type Rotator struct {
	Base
	Speed mgl32.Vec3 `json:"speed"`
}

func (*Rotator) TypeName() string { return "Rotator" }

func (r *Rotator) Update(obj *GameObject, ctx *FrameContext) {
	obj.Rotation = obj.Rotation.Add(r.Speed.Mul(ctx.DeltaTime))
}

// FlyController moves its object with the movement actions, relative to
// where the object faces.
type FlyController struct {
	Base
	Speed float32 `json:"speed"`
}

func (*FlyController) TypeName() string { return "FlyController" }

func (f *FlyController) Update(obj *GameObject, ctx *FrameContext) {
	if ctx.Input == nil {
		return
	}
	speed := f.Speed
	if speed == 0 {
		speed = 5
	}
	front := graphics.Front(obj.Rotation.Y(), 0)
	right := front.Cross(mgl32.Vec3{0, 1, 0}).Normalize()
	up := mgl32.Vec3{0, 1, 0}

	var move mgl32.Vec3
	if ctx.Input.IsActive(input.ActionMoveForward) {
		move = move.Add(front)
	}
	if ctx.Input.IsActive(input.ActionMoveBackward) {
		move = move.Sub(front)
	}
	if ctx.Input.IsActive(input.ActionMoveRight) {
		move = move.Add(right)
	}
	if ctx.Input.IsActive(input.ActionMoveLeft) {
		move = move.Sub(right)
	}
	if ctx.Input.IsActive(input.ActionMoveUp) {
		move = move.Add(up)
	}
	if ctx.Input.IsActive(input.ActionMoveDown) {
		move = move.Sub(up)
	}
	if move.Len() == 0 {
		return
	}
	obj.Position = obj.Position.Add(move.Normalize().Mul(speed * ctx.DeltaTime))
}

// KillPlane asks the scene for a reload once its object falls below MinY.
type KillPlane struct {
	Base
	MinY float32 `json:"min_y"`
}

func (*KillPlane) TypeName() string { return "KillPlane" }

func (k *KillPlane) LateUpdate(obj *GameObject, ctx *FrameContext) {
	if obj.Position.Y() < k.MinY && ctx.Scene != nil {
		ctx.Scene.RequestReload = true
	}
}

// RegisterBuiltins installs the engine's own component types.
func RegisterBuiltins(r *Registry) {
	r.Register("Camera", func(raw json.RawMessage, _ resources.Lookup) (Component, error) {
		c, err := decodeInto[Camera](raw)
		if err != nil {
			return nil, err
		}
		c.defaults()
		return c, nil
	})
	r.Register("RenderComponent", func(raw json.RawMessage, res resources.Lookup) (Component, error) {
		c, err := decodeInto[RenderComponent](raw)
		if err != nil {
			return nil, err
		}
		if err := c.resolve(res); err != nil {
			return nil, err
		}
		return c, nil
	})
	r.Register("GuiPanel", func(raw json.RawMessage, _ resources.Lookup) (Component, error) {
		return decodeInto[GuiPanel](raw)
	})
	r.Register("Rotator", func(raw json.RawMessage, _ resources.Lookup) (Component, error) {
		return decodeInto[Rotator](raw)
	})
	r.Register("FlyController", func(raw json.RawMessage, _ resources.Lookup) (Component, error) {
		return decodeInto[FlyController](raw)
	})
	r.Register("KillPlane", func(raw json.RawMessage, _ resources.Lookup) (Component, error) {
		return decodeInto[KillPlane](raw)
	})
}
