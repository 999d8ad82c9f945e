package world

// World ties the chunk store, the generator and the streamer together and
// fans section/chunk change notifications out to listeners.
type World struct {
	store    *ChunkStore
	streamer *ChunkStreamer
	gen      Generator
	minY     int
	height   int

	// Listeners are registered once during setup, before streaming starts.
	onSectionChange func(SectionPos)
	onChunkLoad     func(ChunkPos)
}

// New creates a world spanning minY..minY+height blocks vertically. Both
// must be multiples of 16. Streaming workers start immediately.
func New(minY, height int, gen Generator) *World {
	w := &World{
		store:  NewChunkStore(),
		gen:    gen,
		minY:   minY,
		height: height,
	}
	w.streamer = NewChunkStreamer(w.store, gen, minY, height, func(pos ChunkPos) {
		if w.onChunkLoad != nil {
			w.onChunkLoad(pos)
		}
	})
	return w
}

// MinY returns the world floor in block coordinates.
func (w *World) MinY() int { return w.minY }

// Height returns the world height in blocks.
func (w *World) Height() int { return w.height }

// MinSectionY returns the world floor in section coordinates.
func (w *World) MinSectionY() int { return w.minY / SectionSize }

// SectionCount returns the number of vertical sections per column.
func (w *World) SectionCount() int { return w.height / SectionSize }

// SetSectionChangeListener registers the callback fired when a block edit
// dirties a section. Must be called before edits begin.
func (w *World) SetSectionChangeListener(fn func(SectionPos)) {
	w.onSectionChange = fn
}

// SetChunkLoadListener registers the callback fired when a generated column
// lands in the store. Runs on a streamer worker goroutine; must be called
// before streaming begins.
func (w *World) SetChunkLoadListener(fn func(ChunkPos)) {
	w.onChunkLoad = fn
}

// Chunk returns the column at the given position, or nil when not loaded.
func (w *World) Chunk(pos ChunkPos) *Chunk {
	return w.store.Chunk(pos)
}

// ChunkCount returns the number of loaded columns.
func (w *World) ChunkCount() int { return w.store.Count() }

// Block returns the block at world coordinates, air when unloaded.
func (w *World) Block(x, y, z int) Block {
	c := w.store.Chunk(ChunkPosAt(x, z))
	if c == nil {
		return BlockAir
	}
	c.RLock()
	defer c.RUnlock()
	return c.Block(mod(x, SectionSize), y, mod(z, SectionSize))
}

// SetBlock stores a block at world coordinates and notifies the owning
// section plus any sections sharing the touched border. Writes into unloaded
// columns are dropped.
func (w *World) SetBlock(x, y, z int, b Block) {
	c := w.store.Chunk(ChunkPosAt(x, z))
	if c == nil {
		return
	}
	c.Lock()
	changed := c.SetBlock(mod(x, SectionSize), y, mod(z, SectionSize), b)
	c.Unlock()
	if !changed || w.onSectionChange == nil {
		return
	}

	pos := SectionPosAt(x, y, z)
	w.onSectionChange(pos)

	// A border edit invalidates the neighbor's halo too.
	for _, d := range borderNeighbors(x, y, z) {
		n := SectionPos{X: pos.X + d[0], Y: pos.Y + d[1], Z: pos.Z + d[2]}
		if n.Y < w.MinSectionY() || n.Y >= w.MinSectionY()+w.SectionCount() {
			continue
		}
		w.onSectionChange(n)
	}
}

// borderNeighbors returns the section offsets whose halos include the block.
func borderNeighbors(x, y, z int) [][3]int {
	var out [][3]int
	switch mod(x, SectionSize) {
	case 0:
		out = append(out, [3]int{-1, 0, 0})
	case SectionSize - 1:
		out = append(out, [3]int{1, 0, 0})
	}
	switch mod(y, SectionSize) {
	case 0:
		out = append(out, [3]int{0, -1, 0})
	case SectionSize - 1:
		out = append(out, [3]int{0, 1, 0})
	}
	switch mod(z, SectionSize) {
	case 0:
		out = append(out, [3]int{0, 0, -1})
	case SectionSize - 1:
		out = append(out, [3]int{0, 0, 1})
	}
	return out
}

// StreamAroundSync loads every column within radius before returning.
func (w *World) StreamAroundSync(x, z float32, radius int) {
	w.streamer.StreamAroundSync(x, z, radius)
}

// StreamAroundAsync queues missing columns around the camera for background
// generation.
func (w *World) StreamAroundAsync(x, z float32, radius int) {
	w.streamer.StreamAroundAsync(x, z, radius)
}

// PendingChunks returns the number of columns queued or generating.
func (w *World) PendingChunks() int { return w.streamer.PendingCount() }

// EvictFarChunks drops columns outside radius around the given position.
func (w *World) EvictFarChunks(x, z float32, radius int) int {
	center := centerChunk(x, z)
	return w.store.EvictFarChunks(center.X, center.Z, radius)
}

// HeightAt returns the generator's surface height at world x,z.
func (w *World) HeightAt(x, z int) int { return w.gen.HeightAt(x, z) }

// Close stops the streaming workers.
func (w *World) Close() { w.streamer.Close() }
