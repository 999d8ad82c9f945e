package terrain

import (
	"github.com/go-gl/gl/v4.3-core/gl"

	"voxview/internal/mesher"
	"voxview/internal/world"
)

// sectionMesh holds the GL objects for one section: the opaque stream and
// the translucent water stream, each with its own vertex array.
type sectionMesh struct {
	pos world.SectionPos

	vao, vbo, ebo uint32
	indexCount    int32

	waterVAO, waterVBO, waterEBO uint32
	waterIndexCount              int32
}

// Store owns every uploaded section mesh, keyed by section position. All
// uploads and retirements happen on the render thread.
type Store struct {
	meshes map[world.SectionPos]*sectionMesh
}

func NewStore() *Store {
	return &Store{meshes: make(map[world.SectionPos]*sectionMesh)}
}

// Apply installs one finished meshing result: insert, replace, or, when
// the result carries no geometry, retire whatever was stored.
func (s *Store) Apply(r mesher.MeshResult) {
	if r.Empty() {
		s.Retire(r.Pos)
		return
	}
	m := s.meshes[r.Pos]
	if m == nil {
		m = &sectionMesh{pos: r.Pos}
		s.meshes[r.Pos] = m
	}
	m.indexCount = uploadStream(&m.vao, &m.vbo, &m.ebo, r.Blocks)
	m.waterIndexCount = uploadStream(&m.waterVAO, &m.waterVBO, &m.waterEBO, r.Water)
}

// Retire releases the GL objects for a position, if any.
func (s *Store) Retire(pos world.SectionPos) {
	m := s.meshes[pos]
	if m == nil {
		return
	}
	releaseStream(&m.vao, &m.vbo, &m.ebo)
	releaseStream(&m.waterVAO, &m.waterVBO, &m.waterEBO)
	delete(s.meshes, pos)
}

// PruneOutside retires every section whose chunk lies outside the radius
// around the given center chunk. Uses the same distance metric as chunk
// eviction so GPU memory and chunk memory shrink together.
func (s *Store) PruneOutside(cx, cz, radius int) int {
	removed := 0
	for pos := range s.meshes {
		dx := pos.X - cx
		dz := pos.Z - cz
		if dx*dx+dz*dz > radius*radius {
			s.Retire(pos)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored section meshes.
func (s *Store) Len() int { return len(s.meshes) }

// Dispose retires everything.
func (s *Store) Dispose() {
	for pos := range s.meshes {
		s.Retire(pos)
	}
}

// uploadStream fills one vertex-array's buffers from a mesh stream and
// returns its index count. An empty stream leaves the old buffers alone
// and just zeroes the count; nothing will draw them.
func uploadStream(vao, vbo, ebo *uint32, data mesher.MeshData) int32 {
	if data.Empty() {
		return 0
	}

	if *vao == 0 {
		gl.GenVertexArrays(1, vao)
		gl.GenBuffers(1, vbo)
		gl.GenBuffers(1, ebo)
		gl.BindVertexArray(*vao)
		gl.BindBuffer(gl.ARRAY_BUFFER, *vbo)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, *ebo)

		stride := int32(mesher.VertexStride * 4)
		gl.EnableVertexAttribArray(0)
		gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0) // position
		gl.EnableVertexAttribArray(1)
		gl.VertexAttribPointerWithOffset(1, 1, gl.FLOAT, false, stride, 3*4) // ambient occlusion
		gl.EnableVertexAttribArray(2)
		gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, stride, 4*4) // atlas uv
		gl.EnableVertexAttribArray(3)
		gl.VertexAttribPointerWithOffset(3, 3, gl.FLOAT, false, stride, 6*4) // tint
	} else {
		gl.BindVertexArray(*vao)
		gl.BindBuffer(gl.ARRAY_BUFFER, *vbo)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, *ebo)
	}

	gl.BufferData(gl.ARRAY_BUFFER, len(data.Vertices)*4, gl.Ptr(data.Vertices), gl.DYNAMIC_DRAW)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(data.Indices)*4, gl.Ptr(data.Indices), gl.DYNAMIC_DRAW)
	gl.BindVertexArray(0)

	return int32(len(data.Indices))
}

func releaseStream(vao, vbo, ebo *uint32) {
	if *vao == 0 {
		return
	}
	gl.DeleteVertexArrays(1, vao)
	gl.DeleteBuffers(1, vbo)
	gl.DeleteBuffers(1, ebo)
	*vao, *vbo, *ebo = 0, 0, 0
}
