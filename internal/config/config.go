package config

import (
	"runtime"
	"sync"
)

// Settings holds every runtime-tunable knob. Zero value is not usable;
// call Reset or Load first.
type Settings struct {
	Window struct {
		Width  int  `toml:"width"`
		Height int  `toml:"height"`
		VSync  bool `toml:"vsync"`
	} `toml:"window"`
	Render struct {
		Distance     int     `toml:"distance"` // visibility grid radius, in chunks
		FOV          float32 `toml:"fov"`
		UploadBudget int     `toml:"upload_budget"` // mesh uploads per frame
		FPSLimit     int     `toml:"fps_limit"`     // 0 = uncapped; only useful with vsync off
	} `toml:"render"`
	Mesher struct {
		Workers int `toml:"workers"` // 0 = half the CPUs
	} `toml:"mesher"`
	World struct {
		Seed     int64 `toml:"seed"`
		SeaLevel int   `toml:"sea_level"`
	} `toml:"world"`
	Debug struct {
		Overlay bool `toml:"overlay"`
		Boxes   bool `toml:"boxes"`
		Verbose bool `toml:"verbose"`
	} `toml:"debug"`
}

var (
	mu     sync.RWMutex
	global Settings
)

func init() {
	global = defaults()
}

func defaults() Settings {
	var s Settings
	s.Window.Width = 1280
	s.Window.Height = 720
	s.Window.VSync = true
	s.Render.Distance = 12
	s.Render.FOV = 70
	s.Render.UploadBudget = 32
	s.Mesher.Workers = 0
	s.World.Seed = 1405
	s.World.SeaLevel = 62
	s.Debug.Overlay = true
	return s
}

// Get returns a copy of the current settings.
func Get() Settings {
	mu.RLock()
	defer mu.RUnlock()
	return global
}

// GetRenderDistance returns the current visibility grid radius in chunks.
func GetRenderDistance() int {
	mu.RLock()
	defer mu.RUnlock()
	return global.Render.Distance
}

// SetRenderDistance sets the grid radius, clamped to sane bounds.
func SetRenderDistance(distance int) {
	mu.Lock()
	defer mu.Unlock()
	global.Render.Distance = clampInt(distance, 2, 32)
}

// GetWorkers returns the configured mesh worker count (0 = auto).
func GetWorkers() int {
	mu.RLock()
	defer mu.RUnlock()
	return global.Mesher.Workers
}

// SetWorkers sets the mesh worker count, clamped to sane bounds.
func SetWorkers(n int) {
	mu.Lock()
	defer mu.Unlock()
	global.Mesher.Workers = clampInt(n, 1, 64)
}

// ResolveWorkers maps a configured worker count to a concrete pool size;
// 0 means half the CPUs, never less than one.
func ResolveWorkers(configured int) int {
	if configured == 0 {
		if n := runtime.NumCPU() / 2; n > 1 {
			return n
		}
		return 1
	}
	return configured
}

// SetVSync toggles vertical sync. The render loop applies the change.
func SetVSync(on bool) {
	mu.Lock()
	defer mu.Unlock()
	global.Window.VSync = on
}

// GetChunkLoadRadius returns the radius for chunk streaming (one chunk of
// slack past the visibility grid so border sections have halo neighbors).
func GetChunkLoadRadius() int {
	return GetRenderDistance() + 1
}

// GetChunkEvictRadius returns the radius past which chunks are dropped.
func GetChunkEvictRadius() int {
	return GetRenderDistance() + 4
}

// GetUploadBudget returns the per-frame mesh upload cap.
func GetUploadBudget() int {
	mu.RLock()
	defer mu.RUnlock()
	return global.Render.UploadBudget
}

// GetFPSLimit returns the frame rate cap, 0 meaning uncapped.
func GetFPSLimit() int {
	mu.RLock()
	defer mu.RUnlock()
	return global.Render.FPSLimit
}

// SetDebugOverlay toggles the stats overlay.
func SetDebugOverlay(on bool) {
	mu.Lock()
	defer mu.Unlock()
	global.Debug.Overlay = on
}

// SetDebugBoxes toggles the visible-cell box rendering.
func SetDebugBoxes(on bool) {
	mu.Lock()
	defer mu.Unlock()
	global.Debug.Boxes = on
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampSettings(s *Settings) {
	s.Window.Width = clampInt(s.Window.Width, 320, 7680)
	s.Window.Height = clampInt(s.Window.Height, 240, 4320)
	s.Render.Distance = clampInt(s.Render.Distance, 2, 32)
	if s.Render.FOV < 30 {
		s.Render.FOV = 30
	}
	if s.Render.FOV > 120 {
		s.Render.FOV = 120
	}
	s.Render.UploadBudget = clampInt(s.Render.UploadBudget, 1, 512)
	if s.Render.FPSLimit != 0 {
		s.Render.FPSLimit = clampInt(s.Render.FPSLimit, 15, 1000)
	}
	if s.Mesher.Workers != 0 {
		s.Mesher.Workers = clampInt(s.Mesher.Workers, 1, 64)
	}
}
