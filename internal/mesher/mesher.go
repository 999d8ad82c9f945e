package mesher

import (
	"voxview/internal/registry"
	"voxview/internal/world"
)

// Assets is the asset-table subset the mesher samples. *registry.Registry
// satisfies it; tests substitute fixed tables.
type Assets interface {
	IsOpaque(b world.Block) bool
	IsWater(b world.Block) bool
	UV(b world.Block, f world.Face) registry.AtlasRect
	Tint(b world.Block, biome world.Biome) [3]float32
}

// waterSurface is the top height of a water block with air above, leaving
// the familiar lowered rim.
const waterSurface = 14.0 / 16.0

// faceCorners holds each face's quad corners as unit offsets from the block
// min corner, wound counterclockwise seen from outside the block.
var faceCorners = [6][4][3]int{
	world.FaceWest:   {{0, 0, 0}, {0, 0, 1}, {0, 1, 1}, {0, 1, 0}},
	world.FaceEast:   {{1, 0, 1}, {1, 0, 0}, {1, 1, 0}, {1, 1, 1}},
	world.FaceBottom: {{0, 0, 0}, {1, 0, 0}, {1, 0, 1}, {0, 0, 1}},
	world.FaceTop:    {{0, 1, 1}, {1, 1, 1}, {1, 1, 0}, {0, 1, 0}},
	world.FaceNorth:  {{1, 0, 0}, {0, 0, 0}, {0, 1, 0}, {1, 1, 0}},
	world.FaceSouth:  {{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1}},
}

// MeshSection triangulates a local section into its opaque and water
// streams. The function is pure: identical inputs produce byte-identical
// output regardless of which worker runs it.
func MeshSection(ls *LocalSection, assets Assets) MeshResult {
	res := MeshResult{Pos: ls.pos}
	baseX, baseY, baseZ := ls.pos.MinBlock()

	for x := 0; x < world.SectionSize; x++ {
		for y := 0; y < world.SectionSize; y++ {
			for z := 0; z < world.SectionSize; z++ {
				b := ls.Block(x, y, z)
				if b == world.BlockAir {
					continue
				}
				if assets.IsWater(b) {
					meshWater(&res.Water, ls, assets, b, x, y, z, baseX, baseY, baseZ)
					continue
				}
				meshBlock(&res.Blocks, ls, assets, b, x, y, z, baseX, baseY, baseZ)
			}
		}
	}
	return res
}

// meshBlock emits one quad per face whose 6-connected neighbor does not
// fully occlude it.
func meshBlock(dst *MeshData, ls *LocalSection, assets Assets, b world.Block, x, y, z, baseX, baseY, baseZ int) {
	tint := assets.Tint(b, ls.BiomeAtBlock(x, y, z))
	fx := float32(baseX + x)
	fy := float32(baseY + y)
	fz := float32(baseZ + z)

	for f := world.FaceWest; f <= world.FaceSouth; f++ {
		nx, ny, nz := f.Normal()
		if assets.IsOpaque(ls.Block(x+nx, y+ny, z+nz)) {
			continue
		}
		rect := assets.UV(b, f)
		uv := faceUV(rect)

		var quad [4][VertexStride]float32
		for k, c := range faceCorners[f] {
			quad[k] = [VertexStride]float32{
				fx + float32(c[0]), fy + float32(c[1]), fz + float32(c[2]),
				cornerAO(ls, assets, x, y, z, f, c),
				uv[k][0], uv[k][1],
				tint[0], tint[1], tint[2],
			}
		}
		dst.appendQuad(quad)
	}
}

// meshWater emits simplified liquid geometry: the top surface drops to
// waterSurface when the block above is not water, sides and bottom are
// culled against same-fluid and solid neighbors, and no ambient occlusion
// is applied.
func meshWater(dst *MeshData, ls *LocalSection, assets Assets, b world.Block, x, y, z, baseX, baseY, baseZ int) {
	tint := assets.Tint(b, ls.BiomeAtBlock(x, y, z))
	fx := float32(baseX + x)
	fy := float32(baseY + y)
	fz := float32(baseZ + z)

	top := float32(1)
	if !assets.IsWater(ls.Block(x, y+1, z)) {
		top = waterSurface
	}

	for f := world.FaceWest; f <= world.FaceSouth; f++ {
		nx, ny, nz := f.Normal()
		n := ls.Block(x+nx, y+ny, z+nz)
		if assets.IsWater(n) {
			continue
		}
		// The top stays visible under solid covers so the surface never
		// vanishes while translucency blends; other faces cull normally.
		if f != world.FaceTop && assets.IsOpaque(n) {
			continue
		}
		rect := assets.UV(b, f)
		uv := faceUV(rect)

		var quad [4][VertexStride]float32
		for k, c := range faceCorners[f] {
			quad[k] = [VertexStride]float32{
				fx + float32(c[0]), fy + top*float32(c[1]), fz + float32(c[2]),
				1,
				uv[k][0], uv[k][1],
				tint[0], tint[1], tint[2],
			}
		}
		dst.appendQuad(quad)
	}
}

// faceUV maps quad corners to the tile rectangle; corners 0 and 1 take the
// tile bottom, 2 and 3 the top.
func faceUV(r registry.AtlasRect) [4][2]float32 {
	return [4][2]float32{
		{r.U0, r.V1},
		{r.U1, r.V1},
		{r.U1, r.V0},
		{r.U0, r.V0},
	}
}

// cornerAO computes a face corner's ambient occlusion from the two side
// neighbors and the diagonal in the plane one step along the face normal.
// Both sides occupied forces 0; otherwise 3 minus the occupied count, over 3.
func cornerAO(ls *LocalSection, assets Assets, x, y, z int, f world.Face, c [3]int) float32 {
	nx, ny, nz := f.Normal()

	var t1, t2 [3]int
	switch {
	case nx != 0:
		t1[1] = c[1]*2 - 1
		t2[2] = c[2]*2 - 1
	case ny != 0:
		t1[0] = c[0]*2 - 1
		t2[2] = c[2]*2 - 1
	default:
		t1[0] = c[0]*2 - 1
		t2[1] = c[1]*2 - 1
	}

	px, py, pz := x+nx, y+ny, z+nz
	side1 := assets.IsOpaque(ls.Block(px+t1[0], py+t1[1], pz+t1[2]))
	side2 := assets.IsOpaque(ls.Block(px+t2[0], py+t2[1], pz+t2[2]))
	if side1 && side2 {
		return 0
	}
	occ := 0
	if side1 {
		occ++
	}
	if side2 {
		occ++
	}
	if assets.IsOpaque(ls.Block(px+t1[0]+t2[0], py+t1[1]+t2[1], pz+t1[2]+t2[2])) {
		occ++
	}
	return float32(3-occ) / 3
}
