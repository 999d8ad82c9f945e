// Package registry holds the block, tile and biome definitions the mesher
// and the renderer share: per-face atlas placement, opacity, liquid flags and
// biome tint colors. Definitions live in an embedded YAML document so ids
// stay stable across runs.
package registry

import (
	_ "embed"
	"fmt"

	"github.com/chewxy/math32"
	"gopkg.in/yaml.v3"

	"voxview/internal/world"
)

//go:embed blocks.yaml
var blocksYAML []byte

// TintKind selects which biome color channel tints a block's vertices.
type TintKind int

const (
	TintNone TintKind = iota
	TintGrass
	TintFoliage
	TintWater
)

// AtlasRect is a block texture's UV rectangle within the atlas, in [0,1].
type AtlasRect struct {
	U0, V0, U1, V1 float32
}

// Tile is one atlas cell: a base color plus a jitter amplitude used by the
// procedural atlas painter.
type Tile struct {
	Name  string
	Color [3]uint8
	Noise uint8
}

// BlockDefinition defines the properties of one block state.
type BlockDefinition struct {
	ID     world.Block
	Name   string
	Solid  bool
	Liquid bool
	Tint   TintKind
	// tile index per face, -1 for faceless blocks (air)
	faceTiles [6]int
}

// BiomeTint holds a biome's tint colors, normalized to 0..1.
type BiomeTint struct {
	Grass   [3]float32
	Foliage [3]float32
	Water   [3]float32
}

// Registry is the loaded asset table.
type Registry struct {
	defs    []BlockDefinition
	byName  map[string]world.Block
	tiles   []Tile
	byTile  map[string]int
	biomes  map[world.Biome]BiomeTint
	perRow  int
	rectLUT []AtlasRect
}

type rawBlock struct {
	Name   string            `yaml:"name"`
	Solid  bool              `yaml:"solid"`
	Liquid bool              `yaml:"liquid"`
	Tint   string            `yaml:"tint"`
	Tiles  map[string]string `yaml:"tiles"`
}

type rawTile struct {
	Color [3]uint8 `yaml:"color"`
	Noise uint8    `yaml:"noise"`
}

type rawBiome struct {
	Grass   [3]uint8 `yaml:"grass"`
	Foliage [3]uint8 `yaml:"foliage"`
	Water   [3]uint8 `yaml:"water"`
}

type rawFile struct {
	Blocks []rawBlock          `yaml:"blocks"`
	Tiles  map[string]rawTile  `yaml:"tiles"`
	Biomes map[string]rawBiome `yaml:"biomes"`
}

var biomeNames = map[string]world.Biome{
	"ocean":     world.BiomeOcean,
	"plains":    world.BiomePlains,
	"forest":    world.BiomeForest,
	"desert":    world.BiomeDesert,
	"mountains": world.BiomeMountains,
}

// Load parses the embedded definitions into a Registry.
func Load() (*Registry, error) {
	var raw rawFile
	if err := yaml.Unmarshal(blocksYAML, &raw); err != nil {
		return nil, fmt.Errorf("parse block definitions: %w", err)
	}
	if len(raw.Blocks) == 0 || raw.Blocks[0].Name != "air" {
		return nil, fmt.Errorf("block list must start with air")
	}

	r := &Registry{
		byName: make(map[string]world.Block, len(raw.Blocks)),
		byTile: make(map[string]int, len(raw.Tiles)),
		biomes: make(map[world.Biome]BiomeTint, len(raw.Biomes)),
	}

	// Tiles get their atlas slots in block/face reference order so the
	// layout is deterministic.
	tileSlot := func(name string) (int, error) {
		if idx, ok := r.byTile[name]; ok {
			return idx, nil
		}
		t, ok := raw.Tiles[name]
		if !ok {
			return 0, fmt.Errorf("unknown tile %q", name)
		}
		idx := len(r.tiles)
		r.tiles = append(r.tiles, Tile{Name: name, Color: t.Color, Noise: t.Noise})
		r.byTile[name] = idx
		return idx, nil
	}

	for i, rb := range raw.Blocks {
		def := BlockDefinition{
			ID:     world.Block(i),
			Name:   rb.Name,
			Solid:  rb.Solid,
			Liquid: rb.Liquid,
		}
		switch rb.Tint {
		case "":
			def.Tint = TintNone
		case "grass":
			def.Tint = TintGrass
		case "foliage":
			def.Tint = TintFoliage
		case "water":
			def.Tint = TintWater
		default:
			return nil, fmt.Errorf("block %q: unknown tint %q", rb.Name, rb.Tint)
		}

		for f := range def.faceTiles {
			def.faceTiles[f] = -1
		}
		if len(rb.Tiles) > 0 {
			all, hasAll := rb.Tiles["all"]
			assign := func(face world.Face, key string) error {
				name, ok := rb.Tiles[key]
				if !ok {
					if !hasAll {
						return fmt.Errorf("block %q: face %q has no tile", rb.Name, key)
					}
					name = all
				}
				idx, err := tileSlot(name)
				if err != nil {
					return fmt.Errorf("block %q: %w", rb.Name, err)
				}
				def.faceTiles[face] = idx
				return nil
			}
			if err := assign(world.FaceTop, "top"); err != nil {
				return nil, err
			}
			if err := assign(world.FaceBottom, "bottom"); err != nil {
				return nil, err
			}
			for _, f := range []world.Face{world.FaceNorth, world.FaceSouth, world.FaceEast, world.FaceWest} {
				if err := assign(f, "side"); err != nil {
					return nil, err
				}
			}
		}

		if _, dup := r.byName[rb.Name]; dup {
			return nil, fmt.Errorf("duplicate block %q", rb.Name)
		}
		r.byName[rb.Name] = def.ID
		r.defs = append(r.defs, def)
	}

	for name, rb := range raw.Biomes {
		id, ok := biomeNames[name]
		if !ok {
			return nil, fmt.Errorf("unknown biome %q", name)
		}
		r.biomes[id] = BiomeTint{
			Grass:   normColor(rb.Grass),
			Foliage: normColor(rb.Foliage),
			Water:   normColor(rb.Water),
		}
	}
	for name, id := range biomeNames {
		if _, ok := r.biomes[id]; !ok {
			return nil, fmt.Errorf("biome %q has no tint entry", name)
		}
	}

	// Square grid large enough for all tiles.
	r.perRow = 1
	for r.perRow*r.perRow < len(r.tiles) {
		r.perRow++
	}
	r.rectLUT = make([]AtlasRect, len(r.tiles))
	step := 1 / float32(r.perRow)
	for i := range r.tiles {
		x := i % r.perRow
		y := i / r.perRow
		// Quarter-texel inset against bleeding at tile seams.
		inset := step / float32(TilePixels) / 4
		r.rectLUT[i] = AtlasRect{
			U0: float32(x)*step + inset,
			V0: float32(y)*step + inset,
			U1: float32(x+1)*step - inset,
			V1: float32(y+1)*step - inset,
		}
	}
	return r, nil
}

// TilePixels is the edge length of one atlas tile in texels.
const TilePixels = 16

// Lookup resolves a block name to its id.
func (r *Registry) Lookup(name string) (world.Block, bool) {
	id, ok := r.byName[name]
	return id, ok
}

// MustBlock resolves a block name and panics on a typo. Setup-time only.
func (r *Registry) MustBlock(name string) world.Block {
	id, ok := r.byName[name]
	if !ok {
		panic(fmt.Sprintf("registry: unknown block %q", name))
	}
	return id
}

// BlockCount returns the number of registered block states.
func (r *Registry) BlockCount() int { return len(r.defs) }

// Name returns a block's registered name.
func (r *Registry) Name(b world.Block) string {
	if int(b) >= len(r.defs) {
		return fmt.Sprintf("unknown(%d)", b)
	}
	return r.defs[b].Name
}

// IsOpaque reports whether a block fully hides the face behind it.
func (r *Registry) IsOpaque(b world.Block) bool {
	if int(b) >= len(r.defs) {
		return false
	}
	return r.defs[b].Solid
}

// IsWater reports whether a block belongs in the translucent liquid stream.
func (r *Registry) IsWater(b world.Block) bool {
	if int(b) >= len(r.defs) {
		return false
	}
	return r.defs[b].Liquid
}

// UV returns a block face's atlas rectangle.
func (r *Registry) UV(b world.Block, f world.Face) AtlasRect {
	if int(b) >= len(r.defs) {
		return AtlasRect{}
	}
	idx := r.defs[b].faceTiles[f]
	if idx < 0 {
		return AtlasRect{}
	}
	return r.rectLUT[idx]
}

// TintKindOf returns which biome channel tints the block, if any.
func (r *Registry) TintKindOf(b world.Block) TintKind {
	if int(b) >= len(r.defs) {
		return TintNone
	}
	return r.defs[b].Tint
}

// Tint resolves a block's vertex color for the given biome. Untinted blocks
// get white.
func (r *Registry) Tint(b world.Block, biome world.Biome) [3]float32 {
	kind := r.TintKindOf(b)
	if kind == TintNone {
		return [3]float32{1, 1, 1}
	}
	bt, ok := r.biomes[biome]
	if !ok {
		return [3]float32{1, 1, 1}
	}
	switch kind {
	case TintGrass:
		return bt.Grass
	case TintFoliage:
		return bt.Foliage
	default:
		return bt.Water
	}
}

// Tiles returns the atlas tiles in slot order.
func (r *Registry) Tiles() []Tile { return r.tiles }

// TilesPerRow returns the atlas grid dimension.
func (r *Registry) TilesPerRow() int { return r.perRow }

// Palette returns the generator's block palette.
func (r *Registry) Palette() world.Palette {
	return world.Palette{
		Stone: r.MustBlock("stone"),
		Dirt:  r.MustBlock("dirt"),
		Grass: r.MustBlock("grass"),
		Sand:  r.MustBlock("sand"),
		Water: r.MustBlock("water"),
		Snow:  r.MustBlock("snow"),
	}
}

func normColor(c [3]uint8) [3]float32 {
	return [3]float32{
		math32.Round(float32(c[0])/255*1000) / 1000,
		math32.Round(float32(c[1])/255*1000) / 1000,
		math32.Round(float32(c[2])/255*1000) / 1000,
	}
}
