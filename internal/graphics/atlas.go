package graphics

import (
	"image"

	"voxview/internal/registry"
)

// BuildAtlasImage paints the block texture atlas from the registry's tile
// table: a square grid of TilePixels-sized cells, each filled with the
// tile's base color plus hash-seeded luminance jitter. The output depends
// only on the registry contents, so rebuilding always yields the same
// pixels.
func BuildAtlasImage(reg *registry.Registry) *image.RGBA {
	perRow := reg.TilesPerRow()
	size := perRow * registry.TilePixels
	img := image.NewRGBA(image.Rect(0, 0, size, size))

	for i, tile := range reg.Tiles() {
		cellX := (i % perRow) * registry.TilePixels
		cellY := (i / perRow) * registry.TilePixels
		for y := 0; y < registry.TilePixels; y++ {
			for x := 0; x < registry.TilePixels; x++ {
				d := jitter(i, x, y, int(tile.Noise))
				off := img.PixOffset(cellX+x, cellY+y)
				img.Pix[off+0] = clampChannel(int(tile.Color[0]) + d)
				img.Pix[off+1] = clampChannel(int(tile.Color[1]) + d)
				img.Pix[off+2] = clampChannel(int(tile.Color[2]) + d)
				img.Pix[off+3] = 255
			}
		}
	}
	return img
}

// jitter returns a deterministic offset in [-noise, noise] for one texel.
// The same delta is applied to all three channels so hue is preserved.
func jitter(tile, x, y, noise int) int {
	if noise == 0 {
		return 0
	}
	h := uint32(tile)*0x9E3779B9 + uint32(x)*0x85EBCA6B + uint32(y)*0xC2B2AE35
	h ^= h >> 13
	h *= 0x5BD1E995
	h ^= h >> 15
	return int(h%uint32(2*noise+1)) - noise
}

func clampChannel(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
