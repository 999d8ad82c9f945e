package mesher

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"voxview/internal/vis"
	"voxview/internal/world"
)

// allVisible builds a snapshot marking every cell visible at the given depth.
func allVisible(radius, height int, depth float32) *vis.Snapshot {
	s := vis.NewSnapshot(radius, height, 0, 0, 0)
	for i := range s.Data {
		s.Data[i] = depth
	}
	return s
}

func jobPositions(s *scheduler) []world.SectionPos {
	snap := s.snap.Load()
	if snap == nil {
		return nil
	}
	out := make([]world.SectionPos, len(snap.jobs))
	for i, j := range snap.jobs {
		out[i] = j.Pos
	}
	return out
}

func TestRebuildProjectsDirtyThroughVisibility(t *testing.T) {
	s := newScheduler(4, 4)
	snap := vis.NewSnapshot(4, 4, 0, 0, 0)
	snap.Set(0, 0, 0, 0.5)
	snap.Set(1, 0, 0, 0.25)
	snap.Set(0, 1, 0, 0.75)

	s.markDirty(world.SectionPos{X: 0, Y: 0, Z: 0})
	s.markDirty(world.SectionPos{X: 1, Y: 0, Z: 0})
	s.markDirty(world.SectionPos{X: 0, Y: 1, Z: 0})
	s.markDirty(world.SectionPos{X: 2, Y: 0, Z: 0})  // in grid, invisible
	s.markDirty(world.SectionPos{X: 9, Y: 0, Z: 0})  // outside the grid
	s.markDirty(world.SectionPos{X: 0, Y: -1, Z: 0}) // below the grid

	if !s.rebuild(snap) {
		t.Fatalf("matching snapshot rejected")
	}
	want := []world.SectionPos{
		{X: 1, Y: 0, Z: 0}, // depth 0.25
		{X: 0, Y: 0, Z: 0}, // depth 0.5
		{X: 0, Y: 1, Z: 0}, // depth 0.75
	}
	got := jobPositions(s)
	if len(got) != len(want) {
		t.Fatalf("job list: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("job %d: got %v, want %v", i, got[i], want[i])
		}
	}
	// The rebuild is a projection; nothing leaves the dirty set until a
	// worker claims it.
	if got := s.dirtyCount(); got != 6 {
		t.Fatalf("dirty after rebuild: got %d, want 6", got)
	}
}

func TestRebuildTieBreakIsStable(t *testing.T) {
	s := newScheduler(2, 4)
	snap := allVisible(2, 4, 0.5)
	for _, p := range []world.SectionPos{
		{X: 1, Y: 0, Z: -1}, {X: -1, Y: 0, Z: 1}, {X: 0, Y: 2, Z: 0}, {X: 1, Y: 0, Z: 1},
	} {
		s.markDirty(p)
	}
	if !s.rebuild(snap) {
		t.Fatalf("matching snapshot rejected")
	}
	want := []world.SectionPos{
		{X: -1, Y: 0, Z: 1},
		{X: 1, Y: 0, Z: -1},
		{X: 1, Y: 0, Z: 1},
		{X: 0, Y: 2, Z: 0},
	}
	got := jobPositions(s)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("tie-broken job %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestRebuildRejectsMismatchedGrid(t *testing.T) {
	s := newScheduler(4, 4)
	s.markDirty(world.SectionPos{X: 0, Y: 0, Z: 0})

	if s.rebuild(allVisible(3, 4, 0.5)) {
		t.Fatalf("snapshot with wrong radius accepted")
	}
	if s.rebuild(allVisible(4, 8, 0.5)) {
		t.Fatalf("snapshot with wrong height accepted")
	}
	if s.snap.Load() != nil {
		t.Fatalf("rejected snapshot still replaced the job list")
	}

	s.setGrid(3, 4)
	if !s.rebuild(allVisible(3, 4, 0.5)) {
		t.Fatalf("snapshot rejected after matching reconfiguration")
	}
	if got := len(jobPositions(s)); got != 1 {
		t.Fatalf("job list after reconfiguration: got %d jobs, want 1", got)
	}
}

func TestTakeDirtyClaimsOnce(t *testing.T) {
	s := newScheduler(2, 2)
	p := world.SectionPos{X: 1, Y: 0, Z: 1}
	s.markDirty(p)
	s.markDirty(p)
	if got := s.dirtyCount(); got != 1 {
		t.Fatalf("duplicate submit: got %d dirty, want 1", got)
	}
	if !s.takeDirty(p) {
		t.Fatalf("first claim failed")
	}
	if s.takeDirty(p) {
		t.Fatalf("second claim succeeded for the same insertion")
	}
	if got := s.dirtyCount(); got != 0 {
		t.Fatalf("dirty after claim: got %d, want 0", got)
	}
}

// Hammer the claim path with many workers over several rebuild rounds; every
// position must be claimed exactly once per round.
func TestNoDuplicateClaimsUnderLoad(t *testing.T) {
	const (
		workers   = 8
		positions = 200
		rounds    = 5
	)
	s := newScheduler(20, 8)
	var (
		mu     sync.Mutex
		counts map[world.SectionPos]int
		stop   atomic.Bool
		done   sync.WaitGroup
	)

	for w := 0; w < workers; w++ {
		done.Add(1)
		go func() {
			defer done.Done()
			for {
				job, ok := s.pop(&stop)
				if !ok {
					return
				}
				if s.takeDirty(job.Pos) {
					mu.Lock()
					counts[job.Pos]++
					mu.Unlock()
				}
			}
		}()
	}

	snap := allVisible(20, 8, 0.5)
	for round := 0; round < rounds; round++ {
		mu.Lock()
		counts = make(map[world.SectionPos]int, positions)
		mu.Unlock()

		for i := 0; i < positions; i++ {
			s.markDirty(world.SectionPos{X: i % 20, Y: i / 40, Z: (i / 20) % 2})
		}
		if !s.rebuild(snap) {
			t.Fatalf("round %d: snapshot rejected", round)
		}

		deadline := time.Now().Add(5 * time.Second)
		claimed := 0
		for time.Now().Before(deadline) {
			mu.Lock()
			claimed = len(counts)
			mu.Unlock()
			if claimed == positions {
				break
			}
			time.Sleep(time.Millisecond)
		}
		if claimed != positions {
			t.Fatalf("round %d: claimed %d positions, want %d", round, claimed, positions)
		}

		mu.Lock()
		for pos, n := range counts {
			if n != 1 {
				t.Errorf("round %d: position %v claimed %d times", round, pos, n)
			}
		}
		mu.Unlock()
	}

	s.close()
	done.Wait()
}

func TestPopParksUntilPublish(t *testing.T) {
	s := newScheduler(2, 2)
	var stop atomic.Bool
	got := make(chan Job, 1)

	go func() {
		if job, ok := s.pop(&stop); ok {
			got <- job
		}
	}()

	select {
	case j := <-got:
		t.Fatalf("pop returned %v with no jobs published", j)
	case <-time.After(50 * time.Millisecond):
	}

	p := world.SectionPos{X: 0, Y: 0, Z: 0}
	s.markDirty(p)
	if !s.rebuild(allVisible(2, 2, 0.5)) {
		t.Fatalf("snapshot rejected")
	}

	select {
	case j := <-got:
		if j.Pos != p {
			t.Fatalf("popped job: got %v, want %v", j.Pos, p)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("pop did not wake after publish")
	}
}

func TestPopReturnsOnClose(t *testing.T) {
	s := newScheduler(2, 2)
	var stop atomic.Bool
	done := make(chan bool, 1)

	go func() {
		_, ok := s.pop(&stop)
		done <- ok
	}()

	time.Sleep(10 * time.Millisecond)
	s.close()

	select {
	case ok := <-done:
		if ok {
			t.Fatalf("pop reported a job after close")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("pop did not return after close")
	}
}

func TestPopReturnsOnStopFlag(t *testing.T) {
	s := newScheduler(2, 2)
	var stop atomic.Bool
	done := make(chan bool, 1)

	go func() {
		_, ok := s.pop(&stop)
		done <- ok
	}()

	time.Sleep(10 * time.Millisecond)
	stop.Store(true)
	s.wake()

	select {
	case ok := <-done:
		if ok {
			t.Fatalf("pop reported a job after its stop flag was set")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("pop did not return after stop")
	}
}

// A position re-dirtied while a worker holds its claim must come back with
// the next rebuild; the in-flight claim does not swallow the new insertion.
func TestResubmitWhileClaimedRequeues(t *testing.T) {
	s := newScheduler(2, 2)
	p := world.SectionPos{X: 0, Y: 0, Z: 0}
	var stop atomic.Bool
	snap := allVisible(2, 2, 0.5)

	s.markDirty(p)
	s.rebuild(snap)
	job, ok := s.pop(&stop)
	if !ok || job.Pos != p {
		t.Fatalf("first claim: got (%v,%v), want %v", job.Pos, ok, p)
	}
	if !s.takeDirty(p) {
		t.Fatalf("first takeDirty failed")
	}

	// The worker is now meshing; the same position gets dirtied again.
	s.markDirty(p)
	s.rebuild(snap)

	job, ok = s.pop(&stop)
	if !ok || job.Pos != p {
		t.Fatalf("reclaim after resubmit: got (%v,%v), want %v", job.Pos, ok, p)
	}
	if !s.takeDirty(p) {
		t.Fatalf("second insertion was not claimable")
	}
}

func TestQueuedCountsRemainingJobs(t *testing.T) {
	s := newScheduler(2, 2)
	if got := s.queued(); got != 0 {
		t.Fatalf("queued before first rebuild: got %d, want 0", got)
	}
	for i := 0; i < 3; i++ {
		s.markDirty(world.SectionPos{X: i - 1, Y: 0, Z: 0})
	}
	s.rebuild(allVisible(2, 2, 0.5))
	if got := s.queued(); got != 3 {
		t.Fatalf("queued after rebuild: got %d, want 3", got)
	}
	var stop atomic.Bool
	if _, ok := s.pop(&stop); !ok {
		t.Fatalf("pop failed with jobs queued")
	}
	if got := s.queued(); got != 2 {
		t.Fatalf("queued after one claim: got %d, want 2", got)
	}
}
