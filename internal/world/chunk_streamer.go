package world

import (
	"math"
	"runtime"
	"sync"

	"voxview/internal/profiling"
)

// ChunkStreamer manages asynchronous chunk generation and loading.
type ChunkStreamer struct {
	jobs      chan ChunkPos
	pending   map[ChunkPos]struct{}
	pendingMu sync.Mutex

	maxPending     int
	maxJobsPerCall int

	store  *ChunkStore
	gen    Generator
	minY   int
	height int

	// onLoad fires after a generated column is installed in the store.
	// Runs on a streamer worker goroutine.
	onLoad func(ChunkPos)

	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewChunkStreamer creates a streamer and starts its generation workers.
func NewChunkStreamer(store *ChunkStore, gen Generator, minY, height int, onLoad func(ChunkPos)) *ChunkStreamer {
	cs := &ChunkStreamer{
		jobs:           make(chan ChunkPos, 4096),
		pending:        make(map[ChunkPos]struct{}),
		maxJobsPerCall: 512,
		maxPending:     4096,
		store:          store,
		gen:            gen,
		minY:           minY,
		height:         height,
		onLoad:         onLoad,
	}

	workers := max(runtime.NumCPU()/2, 1)
	cs.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go cs.worker()
	}
	return cs
}

// Close stops the background generation workers and waits for them.
func (cs *ChunkStreamer) Close() {
	cs.closeOnce.Do(func() { close(cs.jobs) })
	cs.wg.Wait()
}

func (cs *ChunkStreamer) worker() {
	defer cs.wg.Done()
	for pos := range cs.jobs {
		cs.generateSync(pos)
		cs.pendingMu.Lock()
		delete(cs.pending, pos)
		cs.pendingMu.Unlock()
	}
}

// generateSync builds and installs a column if missing.
func (cs *ChunkStreamer) generateSync(pos ChunkPos) {
	if cs.store.Has(pos) {
		return
	}
	c := NewChunk(pos, cs.minY, cs.height)
	cs.gen.Populate(c)
	if cs.store.Add(c) && cs.onLoad != nil {
		cs.onLoad(pos)
	}
}

// StreamAroundSync loads every column within radius before returning.
func (cs *ChunkStreamer) StreamAroundSync(x, z float32, radius int) {
	defer profiling.Track("world.StreamAroundSync")()
	center := centerChunk(x, z)
	for dx := -radius; dx <= radius; dx++ {
		for dz := -radius; dz <= radius; dz++ {
			cs.generateSync(ChunkPos{X: center.X + dx, Z: center.Z + dz})
		}
	}
}

// StreamAroundAsync queues missing columns for async generation, walking
// rings outward from the center so close terrain appears first.
func (cs *ChunkStreamer) StreamAroundAsync(x, z float32, radius int) {
	defer profiling.Track("world.StreamAroundAsync")()
	center := centerChunk(x, z)

	pushed := 0
	for r := 0; r <= radius && pushed < cs.maxJobsPerCall; r++ {
		if r == 0 {
			if cs.request(center) {
				pushed++
			}
			continue
		}
		x0, x1 := center.X-r, center.X+r
		z0, z1 := center.Z-r, center.Z+r
		for xk := x0; xk <= x1 && pushed < cs.maxJobsPerCall; xk++ {
			if cs.request(ChunkPos{X: xk, Z: z0}) {
				pushed++
			}
		}
		for zk := z0 + 1; zk <= z1-1 && pushed < cs.maxJobsPerCall; zk++ {
			if cs.request(ChunkPos{X: x1, Z: zk}) {
				pushed++
			}
		}
		for xk := x1; xk >= x0 && pushed < cs.maxJobsPerCall; xk-- {
			if cs.request(ChunkPos{X: xk, Z: z1}) {
				pushed++
			}
		}
		for zk := z1 - 1; zk >= z0+1 && pushed < cs.maxJobsPerCall; zk-- {
			if cs.request(ChunkPos{X: x0, Z: zk}) {
				pushed++
			}
		}
	}
}

// request enqueues a column respecting the pending cap. Returns true if enqueued.
func (cs *ChunkStreamer) request(pos ChunkPos) bool {
	if cs.store.Has(pos) {
		return false
	}

	cs.pendingMu.Lock()
	if _, ok := cs.pending[pos]; ok {
		cs.pendingMu.Unlock()
		return false
	}
	if cs.maxPending > 0 && len(cs.pending) >= cs.maxPending {
		cs.pendingMu.Unlock()
		return false
	}
	cs.pending[pos] = struct{}{}
	cs.pendingMu.Unlock()

	select {
	case cs.jobs <- pos:
		return true
	default:
		// queue full: rollback
		cs.pendingMu.Lock()
		delete(cs.pending, pos)
		cs.pendingMu.Unlock()
		return false
	}
}

// PendingCount returns the number of columns queued or generating.
func (cs *ChunkStreamer) PendingCount() int {
	cs.pendingMu.Lock()
	defer cs.pendingMu.Unlock()
	return len(cs.pending)
}

func centerChunk(x, z float32) ChunkPos {
	return ChunkPos{
		X: floorDiv(int(math.Floor(float64(x))), SectionSize),
		Z: floorDiv(int(math.Floor(float64(z))), SectionSize),
	}
}
