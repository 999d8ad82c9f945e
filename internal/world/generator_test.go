package world

import (
	"crypto/sha256"
	"testing"
)

func TestSimplexGeneratorImplementsInterface(t *testing.T) {
	var _ Generator = NewSimplexGenerator(123, 62, testPalette())
}

func TestFlatGeneratorImplementsInterface(t *testing.T) {
	var _ Generator = NewFlatGenerator(10, testPalette())
}

func TestFlatGeneratorHeight(t *testing.T) {
	g := NewFlatGenerator(10, testPalette())
	if h := g.HeightAt(0, 0); h != 10 {
		t.Errorf("HeightAt(0,0): got %d, want 10", h)
	}
	if h := g.HeightAt(100, -50); h != 10 {
		t.Errorf("HeightAt(100,-50): got %d, want 10", h)
	}
}

func TestFlatGeneratorPopulate(t *testing.T) {
	p := testPalette()
	c := NewChunk(ChunkPos{}, 0, 256)
	NewFlatGenerator(5, p).Populate(c)

	if b := c.Block(0, 0, 0); b != p.Stone {
		t.Errorf("bottom: got %d, want stone", b)
	}
	for y := 2; y < 5; y++ {
		if b := c.Block(0, y, 0); b != p.Dirt {
			t.Errorf("filler at y=%d: got %d, want dirt", y, b)
		}
	}
	if b := c.Block(0, 5, 0); b != p.Grass {
		t.Errorf("surface: got %d, want grass", b)
	}
	if b := c.Block(0, 6, 0); b != BlockAir {
		t.Errorf("above surface: got %d, want air", b)
	}
}

// hashChunkBlocks computes a SHA-256 hash of all blocks in a column.
func hashChunkBlocks(c *Chunk) [32]byte {
	h := sha256.New()
	buf := make([]byte, 2)
	for y := c.MinY(); y < c.MinY()+c.Height(); y++ {
		for lx := 0; lx < SectionSize; lx++ {
			for lz := 0; lz < SectionSize; lz++ {
				b := c.Block(lx, y, lz)
				buf[0] = byte(b)
				buf[1] = byte(b >> 8)
				h.Write(buf)
			}
		}
	}
	var result [32]byte
	copy(result[:], h.Sum(nil))
	return result
}

func TestSimplexDeterminism(t *testing.T) {
	seed := int64(12345)
	var hashes [16][32]byte
	for i := range hashes {
		g := NewSimplexGenerator(seed, 62, testPalette())
		c := NewChunk(ChunkPos{X: 3, Z: -7}, 0, 256)
		g.Populate(c)
		hashes[i] = hashChunkBlocks(c)
	}
	for i := 1; i < len(hashes); i++ {
		if hashes[i] != hashes[0] {
			t.Fatalf("generation not deterministic: hash[0] != hash[%d]", i)
		}
	}
}

func TestSimplexSeedsDiffer(t *testing.T) {
	c1 := NewChunk(ChunkPos{}, 0, 256)
	NewSimplexGenerator(1, 62, testPalette()).Populate(c1)
	c2 := NewChunk(ChunkPos{}, 0, 256)
	NewSimplexGenerator(2, 62, testPalette()).Populate(c2)
	if hashChunkBlocks(c1) == hashChunkBlocks(c2) {
		t.Fatal("different seeds produced identical terrain")
	}
}

func TestSimplexColumnShape(t *testing.T) {
	p := testPalette()
	g := NewSimplexGenerator(99, 62, p)
	c := NewChunk(ChunkPos{}, 0, 256)
	g.Populate(c)

	for lx := 0; lx < SectionSize; lx++ {
		for lz := 0; lz < SectionSize; lz++ {
			h := g.HeightAt(lx, lz)
			if h >= 256 {
				continue
			}
			if b := c.Block(lx, h, lz); b == BlockAir {
				t.Fatalf("air at surface (%d,%d,%d)", lx, h, lz)
			}
			// Everything above the surface is air or sea water.
			for y := h + 1; y < 256; y++ {
				b := c.Block(lx, y, lz)
				if b != BlockAir && b != p.Water {
					t.Fatalf("unexpected block %d above surface at (%d,%d,%d)", b, lx, y, lz)
				}
				if b == p.Water && y > 62 {
					t.Fatalf("water above sea level at (%d,%d,%d)", lx, y, lz)
				}
			}
		}
	}
}

func TestSimplexBiomeGridPopulated(t *testing.T) {
	g := NewSimplexGenerator(7, 62, testPalette())
	c := NewChunk(ChunkPos{}, 0, 256)
	g.Populate(c)

	found := false
	for sy := 0; sy < c.SectionCount() && !found; sy++ {
		sec := c.Section(sy)
		if sec == nil || sec.Empty() {
			continue
		}
		found = true
		// A non-empty section carries a fully populated biome grid; every
		// cell of a column shares the column biome.
		for bx := 0; bx < BiomeGridSize; bx++ {
			for bz := 0; bz < BiomeGridSize; bz++ {
				b0 := sec.Biome(bx, 0, bz)
				for by := 1; by < BiomeGridSize; by++ {
					if got := sec.Biome(bx, by, bz); got != b0 {
						t.Fatalf("biome varies vertically within a column: %d vs %d", got, b0)
					}
				}
			}
		}
	}
	if !found {
		t.Fatal("generated chunk has no non-empty sections")
	}
}
