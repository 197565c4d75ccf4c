package graphics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera holds perspective projection parameters.
type Camera struct {
	AspectRatio float32
	FOV         float32
	NearPlane   float32
	FarPlane    float32
}

func NewCamera(width, height int) *Camera {
	c := &Camera{
		FOV:       60.0,
		NearPlane: 0.1,
		FarPlane:  1000.0,
	}
	c.SetViewport(width, height)
	return c
}

// SetViewport updates the aspect ratio. Degenerate sizes keep the old value.
func (c *Camera) SetViewport(width, height int) {
	if width <= 0 || height <= 0 {
		if c.AspectRatio == 0 {
			c.AspectRatio = 1
		}
		return
	}
	c.AspectRatio = float32(width) / float32(height)
}

func (c *Camera) ProjectionMatrix() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), c.AspectRatio, c.NearPlane, c.FarPlane)
}

// ViewMatrix looks from position along the direction given by yaw and
// pitch in degrees. Yaw 0 faces -Z.
func ViewMatrix(position mgl32.Vec3, yaw, pitch float32) mgl32.Mat4 {
	front := Front(yaw, pitch)
	return mgl32.LookAtV(position, position.Add(front), mgl32.Vec3{0, 1, 0})
}

// Front is the unit forward vector for yaw and pitch in degrees.
func Front(yaw, pitch float32) mgl32.Vec3 {
	y := float64(mgl32.DegToRad(yaw - 90))
	p := float64(mgl32.DegToRad(mgl32.Clamp(pitch, -89, 89)))
	return mgl32.Vec3{
		float32(math.Cos(y) * math.Cos(p)),
		float32(math.Sin(p)),
		float32(math.Sin(y) * math.Cos(p)),
	}.Normalize()
}
