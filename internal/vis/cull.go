package vis

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"voxview/internal/world"
)

// visEpsilon floors the stored depth of a visible cell so "visible at depth
// zero" is still distinguishable from "culled".
const visEpsilon = 1e-5

// CullParams describes one cull dispatch: the camera transform, the grid the
// snapshot covers and the viewport the Hi-Z pyramid was captured at.
type CullParams struct {
	ViewProj  mgl32.Mat4
	Radius    int // horizontal radius in chunks
	Height    int // vertical extent in sections
	CX, CZ    int // camera chunk
	MinY      int // world floor in blocks
	ViewportW int
	ViewportH int
}

// Cull evaluates every grid cell against the frustum and the Hi-Z pyramid
// and returns the resulting snapshot.
func Cull(p CullParams, hiz *Pyramid) *Snapshot {
	snap := NewSnapshot(p.Radius, p.Height, p.CX, p.CZ, p.MinY)
	for dy := 0; dy < p.Height; dy++ {
		for dz := -p.Radius; dz <= p.Radius; dz++ {
			for dx := -p.Radius; dx <= p.Radius; dx++ {
				snap.Set(dx, dy, dz, CullCell(p, hiz, dx, dy, dz))
			}
		}
	}
	return snap
}

// CullCell tests a single cell. The returned value is 0 when the cell is
// frustum-rejected, fully behind the camera, degenerate on screen or hidden
// behind the pyramid's depth; otherwise it is the cell's nearest depth,
// floored at visEpsilon.
func CullCell(p CullParams, hiz *Pyramid, dx, dy, dz int) float32 {
	minX := float32((p.CX + dx) * world.SectionSize)
	minY := float32(p.MinY + dy*world.SectionSize)
	minZ := float32((p.CZ + dz) * world.SectionSize)
	const ext = float32(world.SectionSize)

	var clip [8]mgl32.Vec4
	for i := 0; i < 8; i++ {
		x := minX
		if i&1 != 0 {
			x += ext
		}
		y := minY
		if i&2 != 0 {
			y += ext
		}
		z := minZ
		if i&4 != 0 {
			z += ext
		}
		clip[i] = p.ViewProj.Mul4x1(mgl32.Vec4{x, y, z, 1})
	}

	// Reject when all corners fall outside a single clip plane.
	var outside [6]int
	anyFront := false
	for _, c := range clip {
		if c.W() > 0 {
			anyFront = true
		}
		if c.X() < -c.W() {
			outside[0]++
		}
		if c.X() > c.W() {
			outside[1]++
		}
		if c.Y() < -c.W() {
			outside[2]++
		}
		if c.Y() > c.W() {
			outside[3]++
		}
		if c.Z() < -c.W() {
			outside[4]++
		}
		if c.Z() > c.W() {
			outside[5]++
		}
	}
	for _, n := range outside {
		if n == 8 {
			return 0
		}
	}
	if !anyFront {
		return 0
	}

	// Screen-space bounding rect and nearest depth over the projectable
	// corners.
	minU, minV := float32(1), float32(1)
	maxU, maxV := float32(0), float32(0)
	near := float32(1)
	for _, c := range clip {
		if c.W() <= 0 {
			continue
		}
		inv := 1 / c.W()
		u := c.X()*inv*0.5 + 0.5
		v := c.Y()*inv*0.5 + 0.5
		d := c.Z()*inv*0.5 + 0.5
		if u < minU {
			minU = u
		}
		if u > maxU {
			maxU = u
		}
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
		if d < near {
			near = d
		}
	}
	minU = clamp01(minU)
	maxU = clamp01(maxU)
	minV = clamp01(minV)
	maxV = clamp01(maxV)
	if near < 0 {
		near = 0
	}
	if maxU <= minU || maxV <= minV {
		return 0
	}

	wPx := (maxU - minU) * float32(p.ViewportW)
	hPx := (maxV - minV) * float32(p.ViewportH)
	level := int(math32.Floor(math32.Log2(math32.Max(wPx, hPx))))
	if level < 0 {
		level = 0
	}

	for _, uv := range [4][2]float32{{minU, minV}, {maxU, minV}, {minU, maxV}, {maxU, maxV}} {
		if near >= hiz.Sample(level, uv[0], uv[1]) {
			return 0
		}
	}
	return math32.Max(near, visEpsilon)
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
