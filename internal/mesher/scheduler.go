package mesher

import (
	"sort"
	"sync"
	"sync/atomic"

	"voxview/internal/logging"
	"voxview/internal/profiling"
	"voxview/internal/vis"
	"voxview/internal/world"
)

// Job is one prioritized meshing task. Higher priority runs first; priority
// is 1 minus the section's visibility depth, so near sections sort ahead of
// far ones.
type Job struct {
	Priority float32
	Pos      world.SectionPos
}

// jobSnapshot is one immutable rebuild of the job list. Workers advance the
// shared cursor with a single atomic add; nobody ever mutates jobs after
// publication, so claims take no lock.
type jobSnapshot struct {
	jobs   []Job
	cursor atomic.Uint64
}

// scheduler owns the dirty set and the prioritized job list. The dirty set
// is guarded by one mutex held only for map operations; the job list is
// replaced wholesale on every visibility update.
type scheduler struct {
	mu     sync.Mutex
	dirty  map[world.SectionPos]struct{}
	radius int
	height int

	snap atomic.Pointer[jobSnapshot]

	parkMu sync.Mutex
	parked *sync.Cond
	closed atomic.Bool
}

func newScheduler(radius, height int) *scheduler {
	s := &scheduler{
		dirty:  make(map[world.SectionPos]struct{}),
		radius: radius,
		height: height,
	}
	s.parked = sync.NewCond(&s.parkMu)
	return s
}

// markDirty inserts a position into the dirty set. Inserting an already
// dirty position is a no-op, which makes submission idempotent.
func (s *scheduler) markDirty(pos world.SectionPos) {
	s.mu.Lock()
	s.dirty[pos] = struct{}{}
	s.mu.Unlock()
}

// takeDirty atomically claims a position: it reports whether the position
// was still dirty and removes it in the same critical section. Two workers
// holding the same position can never both see true.
func (s *scheduler) takeDirty(pos world.SectionPos) bool {
	s.mu.Lock()
	_, ok := s.dirty[pos]
	if ok {
		delete(s.dirty, pos)
	}
	s.mu.Unlock()
	return ok
}

// dirtyCount returns the dirty set size.
func (s *scheduler) dirtyCount() int {
	s.mu.Lock()
	n := len(s.dirty)
	s.mu.Unlock()
	return n
}

// setGrid reconfigures the expected snapshot shape. Snapshots from before
// the change no longer match and fall through rebuild untouched.
func (s *scheduler) setGrid(radius, height int) {
	s.mu.Lock()
	s.radius = radius
	s.height = height
	s.mu.Unlock()
}

// rebuild replaces the job list with the sorted projection of
// dirty ∩ visible. Returns false when the snapshot's grid does not match
// the configured one, in which case the previous job list stays live.
func (s *scheduler) rebuild(snap *vis.Snapshot) bool {
	defer profiling.Track("mesher.rebuild_jobs")()

	s.mu.Lock()
	if snap.Radius != s.radius || snap.Height != s.height {
		s.mu.Unlock()
		logging.Debug("discarding stale visibility snapshot",
			"radius", snap.Radius, "height", snap.Height,
			"want_radius", s.radius, "want_height", s.height)
		return false
	}
	jobs := make([]Job, 0, len(s.dirty))
	for pos := range s.dirty {
		if d := snap.SectionDepth(pos); d > 0 {
			jobs = append(jobs, Job{Priority: 1 - d, Pos: pos})
		}
	}
	s.mu.Unlock()

	sort.Slice(jobs, func(i, j int) bool {
		if jobs[i].Priority != jobs[j].Priority {
			return jobs[i].Priority > jobs[j].Priority
		}
		a, b := jobs[i].Pos, jobs[j].Pos
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		if a.X != b.X {
			return a.X < b.X
		}
		return a.Z < b.Z
	})
	s.publish(jobs)
	return true
}

// publish swaps in a new job snapshot and wakes every parked worker. The
// pointer store happens under the park lock so a worker checking for a new
// snapshot before sleeping cannot miss the wakeup.
func (s *scheduler) publish(jobs []Job) {
	next := &jobSnapshot{jobs: jobs}
	s.parkMu.Lock()
	s.snap.Store(next)
	s.parked.Broadcast()
	s.parkMu.Unlock()
}

// pop claims the next job. It blocks while the current snapshot is
// exhausted and returns false once the scheduler closes or the worker's
// stop flag is set. Parked workers burn no CPU.
func (s *scheduler) pop(stop *atomic.Bool) (Job, bool) {
	for {
		if s.closed.Load() || stop.Load() {
			return Job{}, false
		}
		snap := s.snap.Load()
		if snap != nil {
			if i := snap.cursor.Add(1) - 1; i < uint64(len(snap.jobs)) {
				return snap.jobs[i], true
			}
		}
		s.parkMu.Lock()
		for s.snap.Load() == snap && !s.closed.Load() && !stop.Load() {
			s.parked.Wait()
		}
		s.parkMu.Unlock()
	}
}

// queued returns how many jobs of the current snapshot are still unclaimed.
func (s *scheduler) queued() int {
	snap := s.snap.Load()
	if snap == nil {
		return 0
	}
	taken := snap.cursor.Load()
	if taken > uint64(len(snap.jobs)) {
		return 0
	}
	return len(snap.jobs) - int(taken)
}

// wake broadcasts to parked workers without publishing, for stop-flag and
// shutdown delivery.
func (s *scheduler) wake() {
	s.parkMu.Lock()
	s.parked.Broadcast()
	s.parkMu.Unlock()
}

// close permanently stops job handout.
func (s *scheduler) close() {
	s.closed.Store(true)
	s.wake()
}
