package world

import (
	"github.com/chewxy/math32"
	opensimplex "github.com/ojrac/opensimplex-go"
)

// Generator handles terrain generation logic.
type Generator interface {
	// Populate fills an empty column with terrain.
	Populate(c *Chunk)
	// HeightAt computes the world surface height (block y) at world x,z.
	HeightAt(worldX, worldZ int) int
}

// Palette names the block ids the generator places. Ids come from the block
// registry; the world package stays id-agnostic.
type Palette struct {
	Stone Block
	Dirt  Block
	Grass Block
	Sand  Block
	Water Block
	Snow  Block
}

// SimplexGenerator builds rolling terrain from layered simplex noise with a
// biome field driving the surface cover.
type SimplexGenerator struct {
	height   opensimplex.Noise32
	detail   opensimplex.Noise32
	moisture opensimplex.Noise32

	palette  Palette
	seaLevel int
	snowLine int
}

// NewSimplexGenerator creates a generator for the given seed.
func NewSimplexGenerator(seed int64, seaLevel int, palette Palette) *SimplexGenerator {
	return &SimplexGenerator{
		height:   opensimplex.New32(seed),
		detail:   opensimplex.New32(seed + 1),
		moisture: opensimplex.New32(seed + 2),
		palette:  palette,
		seaLevel: seaLevel,
		snowLine: seaLevel + 58,
	}
}

// HeightAt computes the world surface height (block y) at world x,z.
func (g *SimplexGenerator) HeightAt(worldX, worldZ int) int {
	x := float32(worldX)
	z := float32(worldZ)
	base := g.height.Eval2(x/340, z/340)            // continent shape, -1..1
	hills := g.detail.Eval2(x/60, z/60) * 0.35      // rolling hills
	rough := g.detail.Eval2(x/18, z/18) * 0.06      // small bumps
	n := base + hills + rough
	h := float32(g.seaLevel) + 6 + n*42
	if base > 0.42 {
		// mountain uplift grows quadratically past the threshold
		t := (base - 0.42) / 0.58
		h += t * t * 90
	}
	return int(math32.Floor(h))
}

// BiomeAt picks the column biome from height and moisture.
func (g *SimplexGenerator) BiomeAt(worldX, worldZ int) Biome {
	h := g.HeightAt(worldX, worldZ)
	if h < g.seaLevel-1 {
		return BiomeOcean
	}
	if h > g.snowLine-18 {
		return BiomeMountains
	}
	m := g.moisture.Eval2(float32(worldX)/480, float32(worldZ)/480)
	switch {
	case m < -0.35:
		return BiomeDesert
	case m > 0.25:
		return BiomeForest
	default:
		return BiomePlains
	}
}

// Populate fills a column using the noise heightmap. The column is not yet
// shared when this runs, so no locking is needed.
func (g *SimplexGenerator) Populate(c *Chunk) {
	minY := c.MinY()
	topY := minY + c.Height() - 1
	baseX := c.Pos().X * SectionSize
	baseZ := c.Pos().Z * SectionSize

	for lx := 0; lx < SectionSize; lx++ {
		for lz := 0; lz < SectionSize; lz++ {
			wx := baseX + lx
			wz := baseZ + lz
			h := g.HeightAt(wx, wz)
			if h > topY {
				h = topY
			}
			biome := g.BiomeAt(wx, wz)

			top, filler := g.surface(biome, h)
			for y := minY; y <= h; y++ {
				var b Block
				switch {
				case y == h:
					b = top
				case y >= h-3:
					b = filler
				default:
					b = g.palette.Stone
				}
				c.SetBlock(lx, y, lz, b)
			}
			for y := h + 1; y <= g.seaLevel && y <= topY; y++ {
				c.SetBlock(lx, y, lz, g.palette.Water)
			}
		}
	}

	g.populateBiomes(c)
}

// surface picks the top and filler blocks for a column.
func (g *SimplexGenerator) surface(biome Biome, h int) (top, filler Block) {
	switch {
	case h >= g.snowLine:
		return g.palette.Snow, g.palette.Stone
	case biome == BiomeMountains:
		return g.palette.Stone, g.palette.Stone
	case biome == BiomeDesert:
		return g.palette.Sand, g.palette.Sand
	case h <= g.seaLevel:
		return g.palette.Sand, g.palette.Sand
	default:
		return g.palette.Grass, g.palette.Dirt
	}
}

// populateBiomes fills every non-empty section's 4x4x4 biome grid, sampling
// at the center of each 4-block cell.
func (g *SimplexGenerator) populateBiomes(c *Chunk) {
	baseX := c.Pos().X * SectionSize
	baseZ := c.Pos().Z * SectionSize
	minSY := c.MinSectionY()
	for i := 0; i < c.SectionCount(); i++ {
		sec := c.Section(minSY + i)
		if sec == nil {
			continue
		}
		for bx := 0; bx < BiomeGridSize; bx++ {
			for bz := 0; bz < BiomeGridSize; bz++ {
				biome := g.BiomeAt(baseX+bx*4+2, baseZ+bz*4+2)
				for by := 0; by < BiomeGridSize; by++ {
					sec.SetBiome(bx, by, bz, biome)
				}
			}
		}
	}
}

// FlatGenerator produces a flat world at a fixed height. Used by tests and
// as a degenerate baseline.
type FlatGenerator struct {
	surfaceY int
	palette  Palette
}

// NewFlatGenerator creates a flat generator with the surface at the given y.
func NewFlatGenerator(surfaceY int, palette Palette) *FlatGenerator {
	return &FlatGenerator{surfaceY: surfaceY, palette: palette}
}

// HeightAt computes the world surface height (block y) at world x,z.
func (g *FlatGenerator) HeightAt(worldX, worldZ int) int { return g.surfaceY }

// Populate fills a column with stone, dirt and a grass surface.
func (g *FlatGenerator) Populate(c *Chunk) {
	minY := c.MinY()
	h := g.surfaceY
	if h > minY+c.Height()-1 {
		h = minY + c.Height() - 1
	}
	for lx := 0; lx < SectionSize; lx++ {
		for lz := 0; lz < SectionSize; lz++ {
			for y := minY; y <= h; y++ {
				switch {
				case y == h:
					c.SetBlock(lx, y, lz, g.palette.Grass)
				case y >= h-3:
					c.SetBlock(lx, y, lz, g.palette.Dirt)
				default:
					c.SetBlock(lx, y, lz, g.palette.Stone)
				}
			}
		}
	}
	minSY := c.MinSectionY()
	for i := 0; i < c.SectionCount(); i++ {
		sec := c.Section(minSY + i)
		if sec == nil {
			continue
		}
		for bx := 0; bx < BiomeGridSize; bx++ {
			for by := 0; by < BiomeGridSize; by++ {
				for bz := 0; bz < BiomeGridSize; bz++ {
					sec.SetBiome(bx, by, bz, BiomePlains)
				}
			}
		}
	}
}
