package mesher

import (
	"reflect"
	"testing"

	"voxview/internal/registry"
	"voxview/internal/world"
)

// testAssets is a fixed asset table: tStone and tGrass are opaque, tWater is
// liquid, tGrass and tWater are biome-tinted. UV rects encode block and face
// so tests can recognize them.
type testAssets struct{}

func (testAssets) IsOpaque(b world.Block) bool { return b == tStone || b == tGrass }
func (testAssets) IsWater(b world.Block) bool  { return b == tWater }

func (testAssets) UV(b world.Block, f world.Face) registry.AtlasRect {
	u := float32(b) * 0.1
	v := float32(f) * 0.1
	return registry.AtlasRect{U0: u, V0: v, U1: u + 0.05, V1: v + 0.05}
}

func (testAssets) Tint(b world.Block, biome world.Biome) [3]float32 {
	switch {
	case b == tGrass && biome == world.BiomeDesert:
		return [3]float32{0.8, 0.7, 0.3}
	case b == tGrass:
		return [3]float32{0.3, 0.8, 0.2}
	case b == tWater:
		return [3]float32{0.2, 0.3, 0.9}
	}
	return [3]float32{1, 1, 1}
}

// buildSection meshes section (0,0,0) of a fresh single-chunk world shaped
// by fill.
func buildSection(t *testing.T, fill func(c *world.Chunk)) *LocalSection {
	t.Helper()
	src := newFakeSource(0, 64)
	fill(src.chunk(0, 0))
	ls, ok := BuildLocalSection(src, world.SectionPos{X: 0, Y: 0, Z: 0})
	if !ok {
		t.Fatalf("builder failed with center loaded")
	}
	return ls
}

func quadCount(m MeshData) int { return len(m.Indices) / 6 }

// findQuad returns the quad whose first vertex sits at (x, y, z), or -1.
func findQuad(m MeshData, x, y, z float32) int {
	for q := 0; q*4*VertexStride < len(m.Vertices); q++ {
		base := q * 4 * VertexStride
		if m.Vertices[base] == x && m.Vertices[base+1] == y && m.Vertices[base+2] == z {
			return q
		}
	}
	return -1
}

func quadAO(m MeshData, q int) [4]float32 {
	var ao [4]float32
	for k := 0; k < 4; k++ {
		ao[k] = m.Vertices[(q*4+k)*VertexStride+3]
	}
	return ao
}

func TestMeshEmptySection(t *testing.T) {
	ls := buildSection(t, func(c *world.Chunk) {})
	res := MeshSection(ls, testAssets{})
	if !res.Empty() {
		t.Fatalf("empty section produced geometry: %d block quads, %d water quads",
			quadCount(res.Blocks), quadCount(res.Water))
	}
}

func TestMeshSingleBlock(t *testing.T) {
	ls := buildSection(t, func(c *world.Chunk) {
		c.SetBlock(8, 8, 8, tStone)
	})
	res := MeshSection(ls, testAssets{})
	if got := res.Pos; got != (world.SectionPos{X: 0, Y: 0, Z: 0}) {
		t.Fatalf("result pos: got %v", got)
	}
	if got := quadCount(res.Blocks); got != 6 {
		t.Fatalf("lone block quads: got %d, want 6", got)
	}
	if got := res.Blocks.VertexCount(); got != 24 {
		t.Fatalf("lone block vertices: got %d, want 24", got)
	}
	if !res.Water.Empty() {
		t.Fatalf("stone produced water geometry")
	}
	want := []uint32{0, 1, 2, 0, 2, 3}
	if got := res.Blocks.Indices[:6]; !reflect.DeepEqual(got, want) {
		t.Fatalf("first quad indices: got %v, want %v", got, want)
	}
	for k := 0; k < res.Blocks.VertexCount(); k++ {
		if ao := res.Blocks.Vertices[k*VertexStride+3]; ao != 1 {
			t.Fatalf("vertex %d ao: got %v, want 1 with nothing adjacent", k, ao)
		}
	}
}

func TestMeshCullsSharedFaces(t *testing.T) {
	ls := buildSection(t, func(c *world.Chunk) {
		c.SetBlock(8, 8, 8, tStone)
		c.SetBlock(9, 8, 8, tStone)
	})
	res := MeshSection(ls, testAssets{})
	if got := quadCount(res.Blocks); got != 10 {
		t.Fatalf("adjacent pair quads: got %d, want 10", got)
	}
}

func TestMeshCullsAgainstHalo(t *testing.T) {
	src := newFakeSource(0, 64)
	src.chunk(0, 0).SetBlock(0, 8, 8, tStone)
	src.chunk(-1, 0).SetBlock(15, 8, 8, tStone)
	ls, ok := BuildLocalSection(src, world.SectionPos{X: 0, Y: 0, Z: 0})
	if !ok {
		t.Fatalf("builder failed")
	}
	res := MeshSection(ls, testAssets{})
	if got := quadCount(res.Blocks); got != 5 {
		t.Fatalf("border block quads: got %d, want 5 with west face covered", got)
	}
}

func TestMeshAmbientOcclusion(t *testing.T) {
	ls := buildSection(t, func(c *world.Chunk) {
		for x := 0; x < world.SectionSize; x++ {
			for z := 0; z < world.SectionSize; z++ {
				c.SetBlock(x, 0, z, tStone)
			}
		}
		c.SetBlock(8, 1, 8, tStone)
	})
	res := MeshSection(ls, testAssets{})

	q := findQuad(res.Blocks, 7, 1, 9)
	if q < 0 {
		t.Fatalf("top face of block (7,0,8) not found")
	}
	twoThirds := float32(2) / 3
	want := [4]float32{1, twoThirds, twoThirds, 1}
	if got := quadAO(res.Blocks, q); got != want {
		t.Fatalf("ao next to a lone block: got %v, want %v", got, want)
	}
}

func TestMeshAmbientOcclusionPinchedCorner(t *testing.T) {
	ls := buildSection(t, func(c *world.Chunk) {
		for x := 0; x < world.SectionSize; x++ {
			for z := 0; z < world.SectionSize; z++ {
				c.SetBlock(x, 0, z, tStone)
			}
		}
		c.SetBlock(8, 1, 8, tStone)
		c.SetBlock(7, 1, 9, tStone)
	})
	res := MeshSection(ls, testAssets{})

	q := findQuad(res.Blocks, 7, 1, 9)
	if q < 0 {
		t.Fatalf("top face of block (7,0,8) not found")
	}
	twoThirds := float32(2) / 3
	want := [4]float32{twoThirds, 0, twoThirds, 1}
	if got := quadAO(res.Blocks, q); got != want {
		t.Fatalf("ao in pinched corner: got %v, want %v", got, want)
	}
}

func TestMeshFaceUV(t *testing.T) {
	ls := buildSection(t, func(c *world.Chunk) {
		c.SetBlock(8, 8, 8, tGrass)
	})
	res := MeshSection(ls, testAssets{})

	rect := testAssets{}.UV(tGrass, world.FaceWest)
	// Faces emit in west..south order, so quad 0 is the west face and its
	// first corner takes the rect's bottom-left.
	if gotU, gotV := res.Blocks.Vertices[4], res.Blocks.Vertices[5]; gotU != rect.U0 || gotV != rect.V1 {
		t.Fatalf("west face uv: got (%v,%v), want (%v,%v)", gotU, gotV, rect.U0, rect.V1)
	}
	// Distinct rect per face: the six quads must not all share a V0.
	seen := make(map[float32]bool)
	for q := 0; q < quadCount(res.Blocks); q++ {
		seen[res.Blocks.Vertices[(q*4+3)*VertexStride+5]] = true
	}
	if len(seen) != 6 {
		t.Fatalf("per-face rects: got %d distinct, want 6", len(seen))
	}
}

func TestMeshTintFollowsBiomeGrid(t *testing.T) {
	ls := buildSection(t, func(c *world.Chunk) {
		sec := c.OrCreateSection(0)
		sec.SetBiome(3, 3, 3, world.BiomeDesert)
		// One grass block in the default-biome cell (0,0,0), one in the
		// desert cell (3,3,3).
		c.SetBlock(2, 2, 2, tGrass)
		c.SetBlock(14, 14, 14, tGrass)
	})
	res := MeshSection(ls, testAssets{})

	defaultTint := testAssets{}.Tint(tGrass, world.BiomeOcean)
	desertTint := testAssets{}.Tint(tGrass, world.BiomeDesert)

	q1 := findQuad(res.Blocks, 2, 2, 3) // south face of (2,2,2)
	q2 := findQuad(res.Blocks, 14, 14, 15)
	if q1 < 0 || q2 < 0 {
		t.Fatalf("expected faces not found: %d, %d", q1, q2)
	}
	base1 := q1 * 4 * VertexStride
	base2 := q2 * 4 * VertexStride
	got1 := [3]float32{res.Blocks.Vertices[base1+6], res.Blocks.Vertices[base1+7], res.Blocks.Vertices[base1+8]}
	got2 := [3]float32{res.Blocks.Vertices[base2+6], res.Blocks.Vertices[base2+7], res.Blocks.Vertices[base2+8]}
	if got1 != defaultTint {
		t.Fatalf("cell (0,0,0) tint: got %v, want %v", got1, defaultTint)
	}
	if got2 != desertTint {
		t.Fatalf("cell (3,3,3) tint: got %v, want %v", got2, desertTint)
	}
}

func TestMeshWaterSurface(t *testing.T) {
	ls := buildSection(t, func(c *world.Chunk) {
		c.SetBlock(8, 8, 8, tWater)
	})
	res := MeshSection(ls, testAssets{})
	if !res.Blocks.Empty() {
		t.Fatalf("water emitted into the opaque stream")
	}
	if got := quadCount(res.Water); got != 6 {
		t.Fatalf("lone water quads: got %d, want 6", got)
	}
	// The top face's corners sit at the lowered surface.
	top := findQuad(res.Water, 8, 8+waterSurface, 9)
	if top < 0 {
		t.Fatalf("water top face not found at surface height")
	}
	for k := 0; k < res.Water.VertexCount(); k++ {
		if ao := res.Water.Vertices[k*VertexStride+3]; ao != 1 {
			t.Fatalf("water vertex %d ao: got %v, want 1", k, ao)
		}
	}
}

func TestMeshWaterColumn(t *testing.T) {
	ls := buildSection(t, func(c *world.Chunk) {
		c.SetBlock(8, 8, 8, tWater)
		c.SetBlock(8, 9, 8, tWater)
	})
	res := MeshSection(ls, testAssets{})
	// Lower block: 4 sides and the bottom. Upper block: lowered top and 4
	// sides. The shared horizontal face is culled on both.
	if got := quadCount(res.Water); got != 10 {
		t.Fatalf("water column quads: got %d, want 10", got)
	}
	// Lower block sides run the full block height.
	if q := findQuad(res.Water, 8, 8, 9); q < 0 {
		t.Fatalf("full-height side face of lower water not found")
	}
	if q := findQuad(res.Water, 8, 9+waterSurface, 9); q < 0 {
		t.Fatalf("lowered top of upper water not found")
	}
}

func TestMeshWaterAgainstSolid(t *testing.T) {
	ls := buildSection(t, func(c *world.Chunk) {
		c.SetBlock(8, 8, 8, tWater)
		for _, d := range [][3]int{{-1, 0, 0}, {1, 0, 0}, {0, 0, -1}, {0, 0, 1}, {0, -1, 0}} {
			c.SetBlock(8+d[0], 8+d[1], 8+d[2], tStone)
		}
	})
	res := MeshSection(ls, testAssets{})
	// Sides and bottom are sealed by stone; only the top remains.
	if got := quadCount(res.Water); got != 1 {
		t.Fatalf("boxed water quads: got %d, want 1", got)
	}
}

func TestMeshDeterminism(t *testing.T) {
	ls := buildSection(t, func(c *world.Chunk) {
		state := uint32(12345)
		for x := 0; x < world.SectionSize; x++ {
			for y := 0; y < world.SectionSize; y++ {
				for z := 0; z < world.SectionSize; z++ {
					state = state*1664525 + 1013904223
					switch state % 5 {
					case 0:
						c.SetBlock(x, y, z, tStone)
					case 1:
						c.SetBlock(x, y, z, tWater)
					case 2:
						c.SetBlock(x, y, z, tGrass)
					}
				}
			}
		}
	})
	a := MeshSection(ls, testAssets{})
	b := MeshSection(ls, testAssets{})
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("meshing the same section twice produced different output")
	}
	if a.Blocks.Empty() || a.Water.Empty() {
		t.Fatalf("scrambled section should produce both streams")
	}
}

func BenchmarkMeshSection(b *testing.B) {
	src := newFakeSource(0, 64)
	c := src.chunk(0, 0)
	// Rolling terrain surface with a water pocket, roughly half solid.
	for x := 0; x < world.SectionSize; x++ {
		for z := 0; z < world.SectionSize; z++ {
			h := 6 + (x+z)%5
			for y := 0; y <= h; y++ {
				c.SetBlock(x, y, z, tStone)
			}
			if h < 8 {
				for y := h + 1; y <= 8; y++ {
					c.SetBlock(x, y, z, tWater)
				}
			}
		}
	}
	ls, ok := BuildLocalSection(src, world.SectionPos{X: 0, Y: 0, Z: 0})
	if !ok {
		b.Fatalf("builder failed")
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		MeshSection(ls, testAssets{})
	}
}
