package world

import "sync"

const (
	// SectionSize is the block edge length of a section (and chunk footprint).
	SectionSize   = 16
	SectionVolume = SectionSize * SectionSize * SectionSize
)

// Section is a 16x16x16 block volume plus its 4x4x4 biome grid. Sections are
// allocated lazily; a nil section reads as all air.
type Section struct {
	blocks [SectionVolume]Block
	biomes [BiomeGridVolume]Biome
	nonAir int
}

// blockIndex converts local coordinates (0..15 each) to a flat index.
func blockIndex(x, y, z int) int {
	return (x*SectionSize+y)*SectionSize + z
}

// Block returns the block at local section coordinates.
func (s *Section) Block(x, y, z int) Block {
	if s == nil {
		return BlockAir
	}
	return s.blocks[blockIndex(x, y, z)]
}

// SetBlock stores a block at local section coordinates and returns whether
// the stored value changed.
func (s *Section) SetBlock(x, y, z int, b Block) bool {
	idx := blockIndex(x, y, z)
	old := s.blocks[idx]
	if old == b {
		return false
	}
	s.blocks[idx] = b
	if old == BlockAir {
		s.nonAir++
	} else if b == BlockAir {
		s.nonAir--
	}
	return true
}

// Biome returns the biome at biome-grid coordinates (0..3 each).
func (s *Section) Biome(x, y, z int) Biome {
	if s == nil {
		return BiomeOcean
	}
	return s.biomes[BiomeIndex(x, y, z)]
}

// SetBiome stores a biome at biome-grid coordinates.
func (s *Section) SetBiome(x, y, z int, b Biome) {
	s.biomes[BiomeIndex(x, y, z)] = b
}

// Empty reports whether the section contains no non-air blocks.
func (s *Section) Empty() bool {
	return s == nil || s.nonAir == 0
}

// Chunk is a full vertical column of sections. Readers from other goroutines
// take RLock around their accesses; the embedded lock is held only while
// copying, never while meshing.
type Chunk struct {
	sync.RWMutex
	pos      ChunkPos
	minY     int // world block y of the column floor, multiple of 16
	sections []*Section
}

// NewChunk creates an empty column spanning minY..minY+height blocks.
// minY and height must be multiples of 16.
func NewChunk(pos ChunkPos, minY, height int) *Chunk {
	return &Chunk{
		pos:      pos,
		minY:     minY,
		sections: make([]*Section, height/SectionSize),
	}
}

// Pos returns the column's chunk coordinates.
func (c *Chunk) Pos() ChunkPos { return c.pos }

// MinY returns the world block y of the column floor.
func (c *Chunk) MinY() int { return c.minY }

// Height returns the column height in blocks.
func (c *Chunk) Height() int { return len(c.sections) * SectionSize }

// SectionCount returns the number of vertical sections.
func (c *Chunk) SectionCount() int { return len(c.sections) }

// MinSectionY returns the world section y of the lowest section.
func (c *Chunk) MinSectionY() int { return c.minY / SectionSize }

// Section returns the section at world section y, or nil when out of range
// or never written. Callers on other goroutines must hold the read lock.
func (c *Chunk) Section(sy int) *Section {
	i := sy - c.MinSectionY()
	if i < 0 || i >= len(c.sections) {
		return nil
	}
	return c.sections[i]
}

// Block returns the block at local column coordinates: x,z in 0..15 and y a
// world block coordinate. Callers on other goroutines must hold the read lock.
func (c *Chunk) Block(x, y, z int) Block {
	i := floorDiv(y, SectionSize) - c.MinSectionY()
	if i < 0 || i >= len(c.sections) {
		return BlockAir
	}
	return c.sections[i].Block(x, mod(y, SectionSize), z)
}

// SetBlock stores a block at local column coordinates, allocating the owning
// section on first write. Returns whether the stored value changed. Callers
// on other goroutines must hold the write lock.
func (c *Chunk) SetBlock(x, y, z int, b Block) bool {
	i := floorDiv(y, SectionSize) - c.MinSectionY()
	if i < 0 || i >= len(c.sections) {
		return false
	}
	sec := c.sections[i]
	if sec == nil {
		if b == BlockAir {
			return false
		}
		sec = &Section{}
		c.sections[i] = sec
	}
	return sec.SetBlock(x, mod(y, SectionSize), z, b)
}

// OrCreateSection returns the section at world section y, allocating it when
// absent. Returns nil only when sy is outside the column's vertical range.
func (c *Chunk) OrCreateSection(sy int) *Section {
	i := sy - c.MinSectionY()
	if i < 0 || i >= len(c.sections) {
		return nil
	}
	if c.sections[i] == nil {
		c.sections[i] = &Section{}
	}
	return c.sections[i]
}
