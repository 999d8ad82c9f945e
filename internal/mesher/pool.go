package mesher

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"voxview/internal/logging"
	"voxview/internal/vis"
	"voxview/internal/world"
)

// resultBacklog bounds the result channel. Workers sending into a full
// channel block until the render thread drains, which is the intended
// backpressure when meshing outruns uploads.
const resultBacklog = 256

type worker struct {
	stop atomic.Bool
}

// Stats is a point-in-time view of the pipeline for the debug overlay.
type Stats struct {
	Dirty       int
	Queued      int
	Workers     int
	Meshed      int64
	Dropped     int64
	Discarded   int64
	AverageMesh time.Duration
}

// Mesher drives the full pipeline: dirty tracking, visibility-prioritized
// scheduling, a resizable worker pool and the result channel the render
// thread polls. All exported methods are safe for concurrent use; Poll and
// UpdateVisibility are expected on the render thread.
type Mesher struct {
	src    ChunkSource
	assets Assets
	sched  *scheduler

	results chan MeshResult
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	workersMu sync.Mutex
	workers   []*worker

	meshNanos atomic.Int64
	meshed    atomic.Int64
	dropped   atomic.Int64
	discarded atomic.Int64

	closeOnce sync.Once
}

// New starts a mesher over the given chunk source with the given worker
// count and visibility grid radius. The grid height follows the source's
// vertical section count.
func New(src ChunkSource, assets Assets, workers, radius int) *Mesher {
	ctx, cancel := context.WithCancel(context.Background())
	m := &Mesher{
		src:     src,
		assets:  assets,
		sched:   newScheduler(radius, src.SectionCount()),
		results: make(chan MeshResult, resultBacklog),
		ctx:     ctx,
		cancel:  cancel,
	}
	m.SetWorkerThreads(workers)
	return m
}

// SubmitSection marks one section dirty. Submitting a position that is
// already dirty has no further effect.
func (m *Mesher) SubmitSection(pos world.SectionPos) {
	m.sched.markDirty(pos)
}

// SubmitChunk marks every section of a chunk column dirty.
func (m *Mesher) SubmitChunk(cx, cz int) {
	minY := m.src.MinSectionY()
	for sy := minY; sy < minY+m.src.SectionCount(); sy++ {
		m.sched.markDirty(world.SectionPos{X: cx, Y: sy, Z: cz})
	}
}

// Poll returns one finished mesh without blocking. The second return is
// false when no result is pending.
func (m *Mesher) Poll() (MeshResult, bool) {
	select {
	case r := <-m.results:
		return r, true
	default:
		return MeshResult{}, false
	}
}

// UpdateVisibility rebuilds the job list from the dirty set and the given
// snapshot. Snapshots whose grid does not match the configured one are
// discarded whole. Returns whether the snapshot was accepted.
func (m *Mesher) UpdateVisibility(snap *vis.Snapshot) bool {
	if snap == nil {
		return false
	}
	return m.sched.rebuild(snap)
}

// SetGrid reconfigures the expected snapshot shape. Call when the render
// distance changes; in-flight snapshots against the old shape stop
// matching from here on.
func (m *Mesher) SetGrid(radius, height int) {
	m.sched.setGrid(radius, height)
}

// SetWorkerThreads resizes the pool to n workers. Growing spawns
// immediately; shrinking flags the surplus workers, which exit after their
// current job rather than dropping it.
func (m *Mesher) SetWorkerThreads(n int) {
	if n < 1 {
		n = 1
	}
	m.workersMu.Lock()
	defer m.workersMu.Unlock()

	for len(m.workers) < n {
		w := &worker{}
		m.workers = append(m.workers, w)
		m.wg.Add(1)
		go m.run(w)
	}
	if len(m.workers) > n {
		for _, w := range m.workers[n:] {
			w.stop.Store(true)
		}
		m.workers = m.workers[:n]
		m.sched.wake()
	}
	logging.Debug("mesh worker pool resized", "workers", n)
}

// WorkerCount returns the current pool size.
func (m *Mesher) WorkerCount() int {
	m.workersMu.Lock()
	defer m.workersMu.Unlock()
	return len(m.workers)
}

// AverageMeshTime returns the mean wall time of one mesh build, zero before
// the first result.
func (m *Mesher) AverageMeshTime() time.Duration {
	n := m.meshed.Load()
	if n == 0 {
		return 0
	}
	return time.Duration(m.meshNanos.Load() / n)
}

// Stats snapshots the pipeline counters.
func (m *Mesher) Stats() Stats {
	return Stats{
		Dirty:       m.sched.dirtyCount(),
		Queued:      m.sched.queued(),
		Workers:     m.WorkerCount(),
		Meshed:      m.meshed.Load(),
		Dropped:     m.dropped.Load(),
		Discarded:   m.discarded.Load(),
		AverageMesh: m.AverageMeshTime(),
	}
}

// Close stops the scheduler and waits for every worker to exit. In-flight
// results are abandoned.
func (m *Mesher) Close() {
	m.closeOnce.Do(func() {
		m.sched.close()
		m.cancel()
		m.wg.Wait()
	})
}

// run is one worker's life: claim, re-check dirtiness, snapshot, mesh,
// deliver. A claim whose position left the dirty set in the meantime is
// discarded; a claim over an unloaded chunk is dropped silently and comes
// back through a later submit.
func (m *Mesher) run(w *worker) {
	defer m.wg.Done()

	for {
		job, ok := m.sched.pop(&w.stop)
		if !ok {
			return
		}
		if !m.sched.takeDirty(job.Pos) {
			m.discarded.Add(1)
			continue
		}
		ls, ok := BuildLocalSection(m.src, job.Pos)
		if !ok {
			m.dropped.Add(1)
			continue
		}

		start := time.Now()
		res := MeshSection(ls, m.assets)
		m.meshNanos.Add(time.Since(start).Nanoseconds())
		m.meshed.Add(1)

		select {
		case m.results <- res:
		case <-m.ctx.Done():
			return
		}
	}
}
