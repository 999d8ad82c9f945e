package world

// ChunkPos identifies a chunk column in chunk units.
type ChunkPos struct {
	X, Z int
}

// SectionPos identifies a 16x16x16 section in section units. Y may be
// negative for worlds whose floor sits below zero.
type SectionPos struct {
	X, Y, Z int
}

// Chunk returns the column the section belongs to.
func (p SectionPos) Chunk() ChunkPos {
	return ChunkPos{X: p.X, Z: p.Z}
}

// MinBlock returns the world-space block coordinate of the section's minimum corner.
func (p SectionPos) MinBlock() (int, int, int) {
	return p.X * SectionSize, p.Y * SectionSize, p.Z * SectionSize
}

// floorDiv divides rounding toward negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// mod returns the Euclidean remainder, always in [0, b).
func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

// ChunkPosAt returns the chunk column containing the world block coordinate.
func ChunkPosAt(x, z int) ChunkPos {
	return ChunkPos{X: floorDiv(x, SectionSize), Z: floorDiv(z, SectionSize)}
}

// SectionPosAt returns the section containing the world block coordinate.
func SectionPosAt(x, y, z int) SectionPos {
	return SectionPos{
		X: floorDiv(x, SectionSize),
		Y: floorDiv(y, SectionSize),
		Z: floorDiv(z, SectionSize),
	}
}
