package registry

import (
	"testing"

	"voxview/internal/world"
)

func TestLoadAssignsIDsInOrder(t *testing.T) {
	r, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := r.MustBlock("air"); got != world.BlockAir {
		t.Fatalf("air id: got %d, want %d", got, world.BlockAir)
	}
	if got := r.MustBlock("stone"); got != 1 {
		t.Fatalf("stone id: got %d, want 1", got)
	}
	if r.BlockCount() < 6 {
		t.Fatalf("block count: got %d, want at least 6", r.BlockCount())
	}
	if _, ok := r.Lookup("bedrock-of-lies"); ok {
		t.Fatalf("Lookup should miss on unknown names")
	}
}

func TestOpacityAndLiquidFlags(t *testing.T) {
	r, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if r.IsOpaque(world.BlockAir) {
		t.Fatalf("air must not be opaque")
	}
	if !r.IsOpaque(r.MustBlock("stone")) {
		t.Fatalf("stone must be opaque")
	}
	water := r.MustBlock("water")
	if r.IsOpaque(water) {
		t.Fatalf("water must not be opaque")
	}
	if !r.IsWater(water) {
		t.Fatalf("water must be liquid")
	}
	if r.IsWater(r.MustBlock("grass")) {
		t.Fatalf("grass must not be liquid")
	}
	// Out-of-range ids behave like air.
	if r.IsOpaque(world.Block(9999)) || r.IsWater(world.Block(9999)) {
		t.Fatalf("unknown ids must be non-opaque and non-liquid")
	}
}

func TestPerFaceTiles(t *testing.T) {
	r, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	grass := r.MustBlock("grass")
	top := r.UV(grass, world.FaceTop)
	bottom := r.UV(grass, world.FaceBottom)
	side := r.UV(grass, world.FaceNorth)
	if top == bottom {
		t.Fatalf("grass top and bottom should use different tiles")
	}
	if side == top {
		t.Fatalf("grass side and top should use different tiles")
	}
	if got := r.UV(grass, world.FaceSouth); got != side {
		t.Fatalf("all side faces should share a tile: got %+v, want %+v", got, side)
	}

	stone := r.MustBlock("stone")
	if r.UV(stone, world.FaceTop) != r.UV(stone, world.FaceBottom) {
		t.Fatalf("single-tile blocks should reuse the tile on every face")
	}

	for _, f := range []world.Face{world.FaceWest, world.FaceEast, world.FaceBottom, world.FaceTop, world.FaceNorth, world.FaceSouth} {
		rect := r.UV(grass, f)
		if rect.U0 < 0 || rect.V0 < 0 || rect.U1 > 1 || rect.V1 > 1 {
			t.Fatalf("face %d rect out of atlas bounds: %+v", f, rect)
		}
		if rect.U0 >= rect.U1 || rect.V0 >= rect.V1 {
			t.Fatalf("face %d rect degenerate: %+v", f, rect)
		}
	}

	if got := r.UV(world.BlockAir, world.FaceTop); got != (AtlasRect{}) {
		t.Fatalf("air must have an empty rect, got %+v", got)
	}
}

func TestBiomeTints(t *testing.T) {
	r, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	grass := r.MustBlock("grass")
	stone := r.MustBlock("stone")
	water := r.MustBlock("water")

	if got := r.Tint(stone, world.BiomePlains); got != [3]float32{1, 1, 1} {
		t.Fatalf("untinted block must be white, got %v", got)
	}
	plains := r.Tint(grass, world.BiomePlains)
	desert := r.Tint(grass, world.BiomeDesert)
	if plains == desert {
		t.Fatalf("grass tint should vary by biome")
	}
	if plains == [3]float32{1, 1, 1} {
		t.Fatalf("grass in plains should not be white")
	}
	if got := r.Tint(water, world.BiomeOcean); got == [3]float32{1, 1, 1} {
		t.Fatalf("water should carry a biome tint, got %v", got)
	}
	for _, c := range plains {
		if c < 0 || c > 1 {
			t.Fatalf("tint channel out of range: %v", plains)
		}
	}
}

func TestAtlasLayout(t *testing.T) {
	r, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	n := len(r.Tiles())
	if n == 0 {
		t.Fatalf("no tiles loaded")
	}
	per := r.TilesPerRow()
	if per*per < n {
		t.Fatalf("grid too small: %d tiles in %dx%d", n, per, per)
	}
	if (per-1)*(per-1) >= n {
		t.Fatalf("grid too big: %d tiles in %dx%d", n, per, per)
	}
}

func TestPaletteResolves(t *testing.T) {
	r, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	p := r.Palette()
	if p.Stone == world.BlockAir || p.Water == world.BlockAir {
		t.Fatalf("palette resolved to air: %+v", p)
	}
	if p.Stone == p.Water {
		t.Fatalf("palette ids must be distinct: %+v", p)
	}
}
