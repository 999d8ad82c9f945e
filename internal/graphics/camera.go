package graphics

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Camera is a free-flying camera. Yaw and pitch are in degrees; yaw 0
// looks toward +X and pitch is clamped so the view never flips over.
type Camera struct {
	Position mgl32.Vec3
	Yaw      float32
	Pitch    float32

	Speed       float32 // movement speed in blocks per second
	Sensitivity float32 // degrees per pixel of mouse travel

	AspectRatio float32
	FOV         float32
	NearPlane   float32
	FarPlane    float32
}

func NewCamera(width, height int) *Camera {
	return &Camera{
		Position:    mgl32.Vec3{8, 96, 8},
		Yaw:         -45.0,
		Pitch:       -15.0,
		Speed:       24.0,
		Sensitivity: 0.1,
		AspectRatio: float32(width) / float32(height),
		FOV:         70.0,
		NearPlane:   0.1,
		FarPlane:    1000.0,
	}
}

// SetViewport updates the aspect ratio after a window resize.
func (c *Camera) SetViewport(width, height int) {
	if height <= 0 {
		return
	}
	c.AspectRatio = float32(width) / float32(height)
}

func (c *Camera) GetProjectionMatrix() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), c.AspectRatio, c.NearPlane, c.FarPlane)
}

func (c *Camera) GetViewMatrix() mgl32.Mat4 {
	target := c.Position.Add(c.GetFrontVector())
	return mgl32.LookAtV(c.Position, target, mgl32.Vec3{0, 1, 0})
}

// GetFrontVector returns the unit vector the camera is looking along.
func (c *Camera) GetFrontVector() mgl32.Vec3 {
	yaw := mgl32.DegToRad(c.Yaw)
	pitch := mgl32.DegToRad(c.Pitch)
	return mgl32.Vec3{
		math32.Cos(yaw) * math32.Cos(pitch),
		math32.Sin(pitch),
		math32.Sin(yaw) * math32.Cos(pitch),
	}.Normalize()
}

// GetRightVector returns the unit vector pointing to the camera's right,
// flat in the XZ plane.
func (c *Camera) GetRightVector() mgl32.Vec3 {
	yaw := mgl32.DegToRad(c.Yaw)
	return mgl32.Vec3{
		math32.Cos(yaw + math32.Pi/2),
		0,
		math32.Sin(yaw + math32.Pi/2),
	}
}

// HandleMouseMovement turns the camera by a mouse delta in pixels.
func (c *Camera) HandleMouseMovement(xoffset, yoffset float32) {
	c.Yaw += xoffset * c.Sensitivity
	c.Pitch += yoffset * c.Sensitivity

	// Constrain pitch
	if c.Pitch > 89.0 {
		c.Pitch = 89.0
	}
	if c.Pitch < -89.0 {
		c.Pitch = -89.0
	}
}

// HandleMovement flies the camera. forward moves along the look direction,
// strafe along the flat right vector, vertical along world Y. Each input is
// expected in -1..1; boost multiplies the base speed.
func (c *Camera) HandleMovement(forward, strafe, vertical, boost, dt float32) {
	wish := c.GetFrontVector().Mul(forward).
		Add(c.GetRightVector().Mul(strafe)).
		Add(mgl32.Vec3{0, vertical, 0})
	if wish.Len() < 1e-6 {
		return
	}
	c.Position = c.Position.Add(wish.Normalize().Mul(c.Speed * boost * dt))
}
