// Package mesher turns dirty world sections into GPU-ready vertex data. It
// owns the dirty set, the visibility-prioritized job list and the worker
// pool; the render thread drives it through Mesher and drains results once
// per frame.
package mesher

import "voxview/internal/world"

const (
	// localSize is a section edge plus the 1-block halo on both faces.
	localSize   = world.SectionSize + 2
	localVolume = localSize * localSize * localSize
)

// ChunkSource is the chunk storage the builder snapshots from.
type ChunkSource interface {
	Chunk(pos world.ChunkPos) *world.Chunk
	MinSectionY() int
	SectionCount() int
}

// LocalSection is an owned copy of one section plus its halo, with the
// center section's biome grid. It is immutable after construction and safe
// to mesh without holding any world lock.
type LocalSection struct {
	pos    world.SectionPos
	blocks [localVolume]world.Block
	biomes [world.BiomeGridVolume]world.Biome
}

// localIndex flattens halo coordinates, each in -1..16.
func localIndex(x, y, z int) int {
	return ((x+1)*localSize+(y+1))*localSize + (z + 1)
}

// Pos returns the source section position.
func (ls *LocalSection) Pos() world.SectionPos { return ls.pos }

// Block reads a voxel at halo coordinates, each in -1..16.
func (ls *LocalSection) Block(x, y, z int) world.Block {
	return ls.blocks[localIndex(x, y, z)]
}

// Biome reads the center section's biome grid at cell coordinates 0..3.
func (ls *LocalSection) Biome(x, y, z int) world.Biome {
	return ls.biomes[world.BiomeIndex(x, y, z)]
}

// BiomeAtBlock resolves the biome for a block at section coordinates 0..15.
func (ls *LocalSection) BiomeAtBlock(x, y, z int) world.Biome {
	return ls.Biome(x/world.BiomeCellSize, y/world.BiomeCellSize, z/world.BiomeCellSize)
}

// BuildLocalSection snapshots the section at pos together with a 1-block
// halo from its neighbors. Returns false when the center chunk is not
// loaded. Each contributing chunk is read-locked only while its blocks are
// copied; unloaded neighbors and out-of-world rows read as air.
func BuildLocalSection(src ChunkSource, pos world.SectionPos) (*LocalSection, bool) {
	center := src.Chunk(pos.Chunk())
	if center == nil {
		return nil, false
	}

	ls := &LocalSection{pos: pos}
	for dcx := -1; dcx <= 1; dcx++ {
		for dcz := -1; dcz <= 1; dcz++ {
			var ch *world.Chunk
			if dcx == 0 && dcz == 0 {
				ch = center
			} else {
				ch = src.Chunk(world.ChunkPos{X: pos.X + dcx, Z: pos.Z + dcz})
			}
			if ch == nil {
				continue
			}
			copyChunkInto(ls, ch, pos, dcx, dcz)
		}
	}

	center.RLock()
	if sec := center.Section(pos.Y); sec != nil {
		for by := 0; by < world.BiomeCellSize; by++ {
			for bz := 0; bz < world.BiomeCellSize; bz++ {
				for bx := 0; bx < world.BiomeCellSize; bx++ {
					ls.biomes[world.BiomeIndex(bx, by, bz)] = sec.Biome(bx, by, bz)
				}
			}
		}
	}
	center.RUnlock()

	return ls, true
}

// haloRange returns the local coordinate span a neighbor at chunk offset d
// contributes: the single halo row for -1/+1, the full center span for 0.
func haloRange(d int) (int, int) {
	switch d {
	case -1:
		return -1, -1
	case 1:
		return world.SectionSize, world.SectionSize
	default:
		return 0, world.SectionSize - 1
	}
}

// copyChunkInto copies the halo voxels owned by ch. The read lock is held
// for the duration of the copy only.
func copyChunkInto(ls *LocalSection, ch *world.Chunk, pos world.SectionPos, dcx, dcz int) {
	x0, x1 := haloRange(dcx)
	z0, z1 := haloRange(dcz)
	baseY := pos.Y * world.SectionSize

	ch.RLock()
	for sy := pos.Y - 1; sy <= pos.Y+1; sy++ {
		sec := ch.Section(sy)
		if sec == nil || sec.Empty() {
			continue
		}
		secBase := sy * world.SectionSize
		ly0 := secBase - baseY
		y0, y1 := ly0, ly0+world.SectionSize-1
		if y0 < -1 {
			y0 = -1
		}
		if y1 > world.SectionSize {
			y1 = world.SectionSize
		}
		for lx := x0; lx <= x1; lx++ {
			bx := lx - dcx*world.SectionSize
			for ly := y0; ly <= y1; ly++ {
				by := baseY + ly - secBase
				for lz := z0; lz <= z1; lz++ {
					bz := lz - dcz*world.SectionSize
					ls.blocks[localIndex(lx, ly, lz)] = sec.Block(bx, by, bz)
				}
			}
		}
	}
	ch.RUnlock()
}
