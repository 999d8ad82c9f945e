package world

import "testing"

func TestChunkSectionLayout(t *testing.T) {
	c := NewChunk(ChunkPos{X: 2, Z: -3}, -64, 384)
	if got := c.MinSectionY(); got != -4 {
		t.Fatalf("MinSectionY: got %d, want -4", got)
	}
	if got := c.SectionCount(); got != 24 {
		t.Fatalf("SectionCount: got %d, want 24", got)
	}
	if sec := c.Section(-4); sec != nil {
		t.Fatal("unwritten section should be nil")
	}
	if sec := c.Section(-5); sec != nil {
		t.Fatal("below-range section should be nil")
	}
	if sec := c.Section(20); sec != nil {
		t.Fatal("above-range section should be nil")
	}
}

func TestChunkSetBlockAllocatesSection(t *testing.T) {
	c := NewChunk(ChunkPos{}, -64, 384)

	if !c.SetBlock(5, -60, 7, 1) {
		t.Fatal("SetBlock reported no change")
	}
	sec := c.Section(-4)
	if sec == nil {
		t.Fatal("section not allocated")
	}
	if got := c.Block(5, -60, 7); got != 1 {
		t.Fatalf("read back: got %d, want 1", got)
	}
	if sec.Empty() {
		t.Fatal("section with one block reports empty")
	}

	// Writing air into a nil section allocates nothing.
	if c.SetBlock(0, 100, 0, BlockAir) {
		t.Fatal("air into empty space reported a change")
	}
	if c.Section(6) != nil {
		t.Fatal("air write allocated a section")
	}
}

func TestChunkSetBlockOutOfRange(t *testing.T) {
	c := NewChunk(ChunkPos{}, 0, 256)
	if c.SetBlock(0, -1, 0, 1) {
		t.Fatal("below-floor write reported a change")
	}
	if c.SetBlock(0, 256, 0, 1) {
		t.Fatal("above-ceiling write reported a change")
	}
	if got := c.Block(0, -1, 0); got != BlockAir {
		t.Fatalf("below-floor read: got %d, want air", got)
	}
}

func TestSectionNonAirCounter(t *testing.T) {
	var s Section
	if !s.Empty() {
		t.Fatal("fresh section not empty")
	}
	s.SetBlock(0, 0, 0, 1)
	s.SetBlock(1, 0, 0, 2)
	if s.Empty() {
		t.Fatal("section with blocks reports empty")
	}
	s.SetBlock(0, 0, 0, BlockAir)
	s.SetBlock(1, 0, 0, BlockAir)
	if !s.Empty() {
		t.Fatal("cleared section not empty")
	}
	// Overwrites keep the counter balanced.
	s.SetBlock(2, 2, 2, 1)
	s.SetBlock(2, 2, 2, 3)
	s.SetBlock(2, 2, 2, BlockAir)
	if !s.Empty() {
		t.Fatal("counter drifted after overwrite")
	}
}

func TestFloorDivMod(t *testing.T) {
	cases := []struct {
		a, div, rem int
	}{
		{0, 0, 0},
		{15, 0, 15},
		{16, 1, 0},
		{-1, -1, 15},
		{-16, -1, 0},
		{-17, -2, 15},
		{33, 2, 1},
	}
	for _, tc := range cases {
		if got := floorDiv(tc.a, 16); got != tc.div {
			t.Errorf("floorDiv(%d,16): got %d, want %d", tc.a, got, tc.div)
		}
		if got := mod(tc.a, 16); got != tc.rem {
			t.Errorf("mod(%d,16): got %d, want %d", tc.a, got, tc.rem)
		}
	}
}

func TestSectionPosAt(t *testing.T) {
	if got := SectionPosAt(-1, -1, 16); (got != SectionPos{X: -1, Y: -1, Z: 1}) {
		t.Fatalf("SectionPosAt(-1,-1,16): got %v", got)
	}
	if got := ChunkPosAt(-16, 31); (got != ChunkPos{X: -1, Z: 1}) {
		t.Fatalf("ChunkPosAt(-16,31): got %v", got)
	}
}
