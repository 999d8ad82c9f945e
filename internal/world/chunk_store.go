package world

import (
	"sync"

	"voxview/internal/profiling"
)

// ChunkStore manages the storage and retrieval of chunk columns.
type ChunkStore struct {
	mu     sync.RWMutex
	chunks map[ChunkPos]*Chunk
}

// NewChunkStore creates an empty chunk store.
func NewChunkStore() *ChunkStore {
	return &ChunkStore{chunks: make(map[ChunkPos]*Chunk)}
}

// Chunk returns the column at the given position, or nil when not loaded.
func (cs *ChunkStore) Chunk(pos ChunkPos) *Chunk {
	cs.mu.RLock()
	c := cs.chunks[pos]
	cs.mu.RUnlock()
	return c
}

// Has reports whether a column is loaded without creating it.
func (cs *ChunkStore) Has(pos ChunkPos) bool {
	cs.mu.RLock()
	_, ok := cs.chunks[pos]
	cs.mu.RUnlock()
	return ok
}

// Add installs a pre-generated column. Returns false when the position was
// already occupied (the existing column wins; concurrent generators race here).
func (cs *ChunkStore) Add(c *Chunk) bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if _, ok := cs.chunks[c.Pos()]; ok {
		return false
	}
	cs.chunks[c.Pos()] = c
	return true
}

// Count returns the number of loaded columns.
func (cs *ChunkStore) Count() int {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return len(cs.chunks)
}

// All returns every loaded column position.
func (cs *ChunkStore) All() []ChunkPos {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	out := make([]ChunkPos, 0, len(cs.chunks))
	for pos := range cs.chunks {
		out = append(out, pos)
	}
	return out
}

// EvictFarChunks removes columns outside the given radius around a center
// chunk. Returns the number of removed columns.
func (cs *ChunkStore) EvictFarChunks(cx, cz, radius int) int {
	defer profiling.Track("world.EvictFarChunks")()
	removed := 0
	cs.mu.Lock()
	for pos := range cs.chunks {
		dx := pos.X - cx
		dz := pos.Z - cz
		if dx*dx+dz*dz > radius*radius {
			delete(cs.chunks, pos)
			removed++
		}
	}
	cs.mu.Unlock()
	return removed
}
