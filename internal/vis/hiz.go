package vis

import "math/bits"

// Pyramid is a min-depth mip chain over a depth buffer. Level 0 is the full
// buffer; each coarser level halves both dimensions (floored, never below 1)
// and stores the minimum of the finer level's covering texels. Because the
// depth convention stores larger = farther, the minimum is the conservative
// reduction: a region's stored value never claims an occluder nearer than
// the nearest sample it was derived from.
type Pyramid struct {
	W, H   int
	Levels [][]float32
}

// MipCount returns the number of levels needed to reduce w×h to 1×1.
func MipCount(w, h int) int {
	m := w
	if h > m {
		m = h
	}
	return bits.Len(uint(m))
}

// LevelSize returns a mip level's dimensions.
func (p *Pyramid) LevelSize(level int) (int, int) {
	w := p.W >> level
	h := p.H >> level
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

// BuildPyramid reduces a w×h depth buffer into a full min chain. The depth
// slice is copied; callers may reuse it afterwards.
func BuildPyramid(depth []float32, w, h int) *Pyramid {
	p := &Pyramid{W: w, H: h, Levels: make([][]float32, MipCount(w, h))}
	p.Levels[0] = make([]float32, w*h)
	copy(p.Levels[0], depth)
	for l := 1; l < len(p.Levels); l++ {
		p.Levels[l] = reduceMin(p.Levels[l-1], dim(w, l-1), dim(h, l-1))
	}
	return p
}

// Sample fetches the texel covering (u, v) at the given level with nearest
// filtering. Coordinates and level are clamped into range.
func (p *Pyramid) Sample(level int, u, v float32) float32 {
	if level < 0 {
		level = 0
	}
	if level >= len(p.Levels) {
		level = len(p.Levels) - 1
	}
	w, h := p.LevelSize(level)
	x := clampTexel(int(u*float32(w)), w)
	y := clampTexel(int(v*float32(h)), h)
	return p.Levels[level][y*w+x]
}

func dim(d, level int) int {
	d >>= level
	if d < 1 {
		return 1
	}
	return d
}

func clampTexel(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// reduceMin builds the next coarser level from src. Each destination texel
// takes the minimum of the up-to-4 source texels under it; taps past the
// source edge clamp to the last row or column.
func reduceMin(src []float32, srcW, srcH int) []float32 {
	dstW := dim(srcW, 1)
	dstH := dim(srcH, 1)
	dst := make([]float32, dstW*dstH)
	for y := 0; y < dstH; y++ {
		y0 := clampTexel(y*2, srcH)
		y1 := clampTexel(y*2+1, srcH)
		for x := 0; x < dstW; x++ {
			x0 := clampTexel(x*2, srcW)
			x1 := clampTexel(x*2+1, srcW)
			m := src[y0*srcW+x0]
			if v := src[y0*srcW+x1]; v < m {
				m = v
			}
			if v := src[y1*srcW+x0]; v < m {
				m = v
			}
			if v := src[y1*srcW+x1]; v < m {
				m = v
			}
			dst[y*dstW+x] = m
		}
	}
	return dst
}
