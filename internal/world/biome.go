package world

// Biome is a biome id. Tint colors and names live in the registry; the world
// package only stores and hands out ids.
type Biome uint8

const (
	BiomeOcean Biome = iota
	BiomePlains
	BiomeForest
	BiomeDesert
	BiomeMountains
)

const (
	// BiomeGridSize is the per-axis resolution of a section's biome grid.
	// Biomes are stored every 4 blocks, matching the meshing tint lookup.
	BiomeGridSize   = 4
	BiomeGridVolume = BiomeGridSize * BiomeGridSize * BiomeGridSize
	// BiomeCellSize is the block edge length of one biome cell.
	BiomeCellSize = SectionSize / BiomeGridSize
)

// BiomeIndex converts biome-grid coordinates (0..3 each) to a flat index.
func BiomeIndex(x, y, z int) int {
	return (y*BiomeGridSize+z)*BiomeGridSize + x
}
