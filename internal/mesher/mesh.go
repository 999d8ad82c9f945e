package mesher

import "voxview/internal/world"

// VertexStride is the float count per vertex: position (3), ambient
// occlusion (1), atlas UV (2), tint color (3). Both streams share the
// layout so the terrain pass can bind one attribute setup.
const VertexStride = 9

// MeshData is one triangulated stream in world coordinates, indexed as
// quads: four vertices then two triangles [s, s+1, s+2] and [s, s+2, s+3].
type MeshData struct {
	Vertices []float32
	Indices  []uint32
}

// Empty reports whether the stream carries no geometry.
func (m MeshData) Empty() bool { return len(m.Indices) == 0 }

// VertexCount returns the number of vertices in the stream.
func (m MeshData) VertexCount() int { return len(m.Vertices) / VertexStride }

// appendQuad emits four vertices and their two triangles. Vertices arrive as
// VertexStride floats each, in winding order.
func (m *MeshData) appendQuad(v [4][VertexStride]float32) {
	s := uint32(m.VertexCount())
	for i := range v {
		m.Vertices = append(m.Vertices, v[i][:]...)
	}
	m.Indices = append(m.Indices, s, s+1, s+2, s, s+2, s+3)
}

// MeshResult is one finished meshing job: the opaque stream and the
// translucent water stream for a single section. Ownership moves to the
// render thread over the result channel; an empty result retires any mesh
// previously stored for the position.
type MeshResult struct {
	Pos    world.SectionPos
	Blocks MeshData
	Water  MeshData
}

// Empty reports whether both streams carry no geometry.
func (r MeshResult) Empty() bool { return r.Blocks.Empty() && r.Water.Empty() }
