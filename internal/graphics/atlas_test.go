package graphics

import (
	"bytes"
	"testing"

	"voxview/internal/registry"
)

func loadRegistry(t testing.TB) *registry.Registry {
	t.Helper()
	reg, err := registry.Load()
	if err != nil {
		t.Fatalf("registry.Load: %v", err)
	}
	return reg
}

func TestAtlasImageSize(t *testing.T) {
	reg := loadRegistry(t)
	img := BuildAtlasImage(reg)

	want := reg.TilesPerRow() * registry.TilePixels
	if img.Bounds().Dx() != want || img.Bounds().Dy() != want {
		t.Fatalf("atlas size: got %dx%d, want %dx%d",
			img.Bounds().Dx(), img.Bounds().Dy(), want, want)
	}
}

func TestAtlasDeterministic(t *testing.T) {
	reg := loadRegistry(t)
	a := BuildAtlasImage(reg)
	b := BuildAtlasImage(reg)

	if !bytes.Equal(a.Pix, b.Pix) {
		t.Fatalf("two atlas builds differ")
	}
}

func TestAtlasJitterStaysNearBaseColor(t *testing.T) {
	reg := loadRegistry(t)
	img := BuildAtlasImage(reg)
	perRow := reg.TilesPerRow()

	for i, tile := range reg.Tiles() {
		cellX := (i % perRow) * registry.TilePixels
		cellY := (i / perRow) * registry.TilePixels
		noise := int(tile.Noise)
		for y := 0; y < registry.TilePixels; y++ {
			for x := 0; x < registry.TilePixels; x++ {
				off := img.PixOffset(cellX+x, cellY+y)
				for ch := 0; ch < 3; ch++ {
					base := int(tile.Color[ch])
					got := int(img.Pix[off+ch])
					lo, hi := base-noise, base+noise
					if lo < 0 {
						lo = 0
					}
					if hi > 255 {
						hi = 255
					}
					if got < lo || got > hi {
						t.Fatalf("tile %s texel (%d,%d) channel %d: got %d, want within [%d,%d]",
							tile.Name, x, y, ch, got, lo, hi)
					}
				}
				if img.Pix[off+3] != 255 {
					t.Fatalf("tile %s texel (%d,%d): alpha %d, want 255", tile.Name, x, y, img.Pix[off+3])
				}
			}
		}
	}
}

func TestAtlasTilesAreTextured(t *testing.T) {
	reg := loadRegistry(t)
	img := BuildAtlasImage(reg)
	perRow := reg.TilesPerRow()

	// Every tile with a nonzero noise amplitude should actually vary.
	for i, tile := range reg.Tiles() {
		if tile.Noise == 0 {
			continue
		}
		cellX := (i % perRow) * registry.TilePixels
		cellY := (i / perRow) * registry.TilePixels
		first := img.Pix[img.PixOffset(cellX, cellY)]
		varies := false
		for y := 0; y < registry.TilePixels && !varies; y++ {
			for x := 0; x < registry.TilePixels; x++ {
				if img.Pix[img.PixOffset(cellX+x, cellY+y)] != first {
					varies = true
					break
				}
			}
		}
		if !varies {
			t.Errorf("tile %s: expected jitter, every texel identical", tile.Name)
		}
	}
}

func TestAtlasUVRectsSampleOwnCell(t *testing.T) {
	reg := loadRegistry(t)
	img := BuildAtlasImage(reg)
	size := float32(img.Bounds().Dx())
	perRow := reg.TilesPerRow()

	stone := reg.MustBlock("stone")
	rect := reg.UV(stone, 0)

	// Center of the rect must land inside the stone tile's cell.
	cx := int((rect.U0 + rect.U1) / 2 * size)
	cy := int((rect.V0 + rect.V1) / 2 * size)
	cellX := cx / registry.TilePixels
	cellY := cy / registry.TilePixels
	idx := cellY*perRow + cellX
	if idx < 0 || idx >= len(reg.Tiles()) || reg.Tiles()[idx].Name != "stone" {
		t.Fatalf("stone UV rect center maps to tile index %d, want the stone cell", idx)
	}
}

func BenchmarkBuildAtlasImage(b *testing.B) {
	reg := loadRegistry(b)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		BuildAtlasImage(reg)
	}
}
