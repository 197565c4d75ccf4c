package scene

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// GameObject is a named transform with components.
type GameObject struct {
	GUID     uuid.UUID
	Name     string
	Position mgl32.Vec3
	// Rotation holds Euler angles in degrees: pitch (X), yaw (Y), roll (Z).
	Rotation mgl32.Vec3
	Scale    mgl32.Vec3

	components []Component
}

func NewGameObject(name string) *GameObject {
	return &GameObject{
		GUID:  uuid.New(),
		Name:  name,
		Scale: mgl32.Vec3{1, 1, 1},
	}
}

// AddComponent attaches c and returns it.
func (o *GameObject) AddComponent(c Component) Component {
	o.components = append(o.components, c)
	return c
}

// Component returns the first component of the given type name.
func (o *GameObject) Component(typeName string) Component {
	for _, c := range o.components {
		if c.TypeName() == typeName {
			return c
		}
	}
	return nil
}

func (o *GameObject) Components() []Component {
	return o.components
}

// Get returns the first component of type T attached to o.
func Get[T Component](o *GameObject) (T, bool) {
	for _, c := range o.components {
		if t, ok := c.(T); ok {
			return t, true
		}
	}
	var zero T
	return zero, false
}

// Transform is the model matrix: translate, then yaw, pitch, roll, then scale.
func (o *GameObject) Transform() mgl32.Mat4 {
	r := o.Rotation
	return mgl32.Translate3D(o.Position.X(), o.Position.Y(), o.Position.Z()).
		Mul4(mgl32.HomogRotate3DY(mgl32.DegToRad(r.Y()))).
		Mul4(mgl32.HomogRotate3DX(mgl32.DegToRad(r.X()))).
		Mul4(mgl32.HomogRotate3DZ(mgl32.DegToRad(r.Z()))).
		Mul4(mgl32.Scale3D(o.Scale.X(), o.Scale.Y(), o.Scale.Z()))
}
