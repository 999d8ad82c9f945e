// Package vis holds the CPU side of the visibility pipeline: the per-cell
// snapshot the scheduler prioritizes against, and reference implementations
// of the Hi-Z reduction and occlusion cull that the GPU compute pass runs.
// The GLSL kernels under assets/shaders/occlusion mirror these functions
// texel for texel.
package vis

import "voxview/internal/world"

// Snapshot is one frame's visibility readback over the cubic section grid
// centered on the capture chunk. A cell's value is 0 when invisible and the
// cell's nearest depth when visible; smaller depth means closer to the
// camera. Snapshots are immutable once published.
type Snapshot struct {
	Radius int // horizontal radius in chunks
	Height int // vertical extent in sections
	CX, CZ int // capture origin chunk
	MinY   int // world floor in blocks
	Data   []float32
}

// NewSnapshot allocates a zeroed snapshot for the given grid.
func NewSnapshot(radius, height, cx, cz, minY int) *Snapshot {
	side := 2*radius + 1
	return &Snapshot{
		Radius: radius,
		Height: height,
		CX:     cx,
		CZ:     cz,
		MinY:   minY,
		Data:   make([]float32, side*side*height),
	}
}

// Side returns the grid's horizontal edge length in chunks.
func (s *Snapshot) Side() int { return 2*s.Radius + 1 }

// CellCount returns the number of grid cells.
func (s *Snapshot) CellCount() int { return s.Side() * s.Side() * s.Height }

// Index maps grid-relative cell coordinates to a Data offset. dx and dz run
// -Radius..Radius, dy runs 0..Height-1. Returns -1 outside the grid.
func (s *Snapshot) Index(dx, dy, dz int) int {
	if dx < -s.Radius || dx > s.Radius || dz < -s.Radius || dz > s.Radius {
		return -1
	}
	if dy < 0 || dy >= s.Height {
		return -1
	}
	side := s.Side()
	return dy*side*side + (dz+s.Radius)*side + (dx + s.Radius)
}

// Set stores a cell value. Writes outside the grid are dropped.
func (s *Snapshot) Set(dx, dy, dz int, depth float32) {
	if i := s.Index(dx, dy, dz); i >= 0 {
		s.Data[i] = depth
	}
}

// SectionDepth returns the stored depth for a world section, or 0 when the
// section lies outside the snapshot's grid.
func (s *Snapshot) SectionDepth(pos world.SectionPos) float32 {
	i := s.Index(pos.X-s.CX, pos.Y-s.MinY/world.SectionSize, pos.Z-s.CZ)
	if i < 0 {
		return 0
	}
	return s.Data[i]
}

// IsVisible reports whether the section passed the occlusion cull.
func (s *Snapshot) IsVisible(pos world.SectionPos) bool {
	return s.SectionDepth(pos) > 0
}
