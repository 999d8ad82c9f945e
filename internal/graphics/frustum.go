package graphics

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

type plane struct {
	a, b, c, d float32
}

// Frustum holds the six clip planes of a view, in order: left, right,
// bottom, top, near, far.
type Frustum [6]plane

// ExtractFrustum builds six planes from the combined projection*view matrix.
func ExtractFrustum(clip mgl32.Mat4) Frustum {
	// Matrix is in column-major order in mgl32
	m00, m01, m02, m03 := clip[0], clip[4], clip[8], clip[12]
	m10, m11, m12, m13 := clip[1], clip[5], clip[9], clip[13]
	m20, m21, m22, m23 := clip[2], clip[6], clip[10], clip[14]
	m30, m31, m32, m33 := clip[3], clip[7], clip[11], clip[15]

	var f Frustum
	// Left  = m3 + m0
	f[0] = normalizePlane(plane{m30 + m00, m31 + m01, m32 + m02, m33 + m03})
	// Right = m3 - m0
	f[1] = normalizePlane(plane{m30 - m00, m31 - m01, m32 - m02, m33 - m03})
	// Bottom = m3 + m1
	f[2] = normalizePlane(plane{m30 + m10, m31 + m11, m32 + m12, m33 + m13})
	// Top = m3 - m1
	f[3] = normalizePlane(plane{m30 - m10, m31 - m11, m32 - m12, m33 - m13})
	// Near = m3 + m2
	f[4] = normalizePlane(plane{m30 + m20, m31 + m21, m32 + m22, m33 + m23})
	// Far = m3 - m2
	f[5] = normalizePlane(plane{m30 - m20, m31 - m21, m32 - m22, m33 - m23})
	return f
}

func normalizePlane(p plane) plane {
	len := math32.Sqrt(p.a*p.a + p.b*p.b + p.c*p.c)
	if len == 0 {
		return p
	}
	return plane{p.a / len, p.b / len, p.c / len, p.d / len}
}

// IntersectsAABB reports whether the box touches the frustum.
func (f Frustum) IntersectsAABB(min, max mgl32.Vec3) bool {
	return f.IntersectsBox(min.X(), min.Y(), min.Z(), max.X(), max.Y(), max.Z())
}

// IntersectsBox is the float variant of IntersectsAABB for hot loops.
func (f Frustum) IntersectsBox(minx, miny, minz, maxx, maxy, maxz float32) bool {
	for i := 0; i < 6; i++ {
		p := f[i]
		// Select the positive vertex for this plane normal
		px := maxx
		if p.a < 0 {
			px = minx
		}
		py := maxy
		if p.b < 0 {
			py = miny
		}
		pz := maxz
		if p.c < 0 {
			pz = minz
		}
		// If positive vertex is outside, the box is outside
		if p.a*px+p.b*py+p.c*pz+p.d < 0 {
			return false
		}
	}
	return true
}
