package main

import (
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"

	"voxview/internal/config"
	"voxview/internal/input"
	"voxview/internal/logging"
	"voxview/internal/profiling"
)

// pruneInterval is how often far chunks are evicted from memory.
const pruneInterval = 750 * time.Millisecond

// Loop drives the frame cycle: input, settings, world streaming and
// rendering.
type Loop struct {
	app     *App
	manager *input.Manager

	// Cursor capture state; released via Escape so the window can be left.
	captured   bool
	firstMouse bool
	lastX      float64
	lastY      float64

	// Applied settings, compared against the config each frame so changes
	// from keys or the file watcher take effect exactly once.
	appliedWorkers  int
	appliedDistance int
	appliedVSync    bool

	// Timing
	limiter   *FPSLimiter
	lastTime  time.Time
	lastPrune time.Time
}

func NewLoop(app *App, m *input.Manager) *Loop {
	s := config.Get()
	return &Loop{
		app:             app,
		manager:         m,
		captured:        true,
		firstMouse:      true,
		appliedWorkers:  s.Mesher.Workers,
		appliedDistance: s.Render.Distance,
		appliedVSync:    s.Window.VSync,
		limiter:         NewFPSLimiter(),
		lastTime:        time.Now(),
		lastPrune:       time.Now(),
	}
}

// Run blocks until the window closes.
func (l *Loop) Run() {
	for !l.app.Window.ShouldClose() {
		l.tick()
	}
}

func (l *Loop) tick() {
	profiling.ResetFrame()
	now := time.Now()
	dt := now.Sub(l.lastTime).Seconds()
	l.lastTime = now

	func() { defer profiling.Track("glfw.PollEvents")(); glfw.PollEvents() }()

	l.handleActions()
	l.moveCamera(dt)
	l.applySettings()
	l.streamWorld()

	l.app.Renderer.Render(l.app.World, dt)

	func() { defer profiling.Track("glfw.SwapBuffers")(); l.app.Window.SwapBuffers() }()

	// Clear edge flags at end of frame
	l.manager.PostUpdate()

	l.limiter.Wait()
}

func (l *Loop) handleActions() {
	m := l.manager

	if m.JustPressed(input.ActionReleaseCursor) {
		l.setCaptured(!l.captured)
	}
	if m.JustPressed(input.ActionToggleOverlay) {
		config.SetDebugOverlay(!config.Get().Debug.Overlay)
	}
	if m.JustPressed(input.ActionToggleBoxes) {
		config.SetDebugBoxes(!config.Get().Debug.Boxes)
	}
	if m.JustPressed(input.ActionToggleVSync) {
		config.SetVSync(!config.Get().Window.VSync)
	}

	// Pool and distance tuning; applySettings picks the changes up.
	if m.JustPressed(input.ActionWorkersUp) {
		config.SetWorkers(l.app.Mesher.WorkerCount() + 1)
	}
	if m.JustPressed(input.ActionWorkersDown) {
		config.SetWorkers(l.app.Mesher.WorkerCount() - 1)
	}
	if m.JustPressed(input.ActionDistanceUp) {
		config.SetRenderDistance(config.GetRenderDistance() + 1)
	}
	if m.JustPressed(input.ActionDistanceDown) {
		config.SetRenderDistance(config.GetRenderDistance() - 1)
	}
}

func (l *Loop) setCaptured(captured bool) {
	l.captured = captured
	if captured {
		l.app.Window.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
		l.firstMouse = true
	} else {
		l.app.Window.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
	}
}

// handleCursor turns cursor motion into camera look. Wired to the GLFW
// cursor position callback.
func (l *Loop) handleCursor(xpos, ypos float64) {
	if !l.captured {
		return
	}
	if l.firstMouse {
		l.lastX, l.lastY = xpos, ypos
		l.firstMouse = false
		return
	}
	dx := float32(xpos - l.lastX)
	dy := float32(l.lastY - ypos) // screen y grows downward
	l.lastX, l.lastY = xpos, ypos
	l.app.Renderer.GetCamera().HandleMouseMovement(dx, dy)
}

func (l *Loop) moveCamera(dt float64) {
	if !l.captured {
		return
	}
	m := l.manager
	boost := float32(1)
	if m.IsActive(input.ActionBoost) {
		boost = 4
	}
	l.app.Renderer.GetCamera().HandleMovement(
		m.Axis(input.ActionMoveForward, input.ActionMoveBackward),
		m.Axis(input.ActionMoveRight, input.ActionMoveLeft),
		m.Axis(input.ActionAscend, input.ActionDescend),
		boost,
		float32(dt),
	)
}

// applySettings pushes config changes to the systems that do not read the
// config themselves. Runs on the main thread so the GLFW call is safe.
func (l *Loop) applySettings() {
	s := config.Get()

	if s.Mesher.Workers != l.appliedWorkers {
		l.appliedWorkers = s.Mesher.Workers
		n := config.ResolveWorkers(s.Mesher.Workers)
		l.app.Mesher.SetWorkerThreads(n)
		logging.Info("worker pool resized", "workers", n)
	}
	if s.Render.Distance != l.appliedDistance {
		l.appliedDistance = s.Render.Distance
		l.app.Mesher.SetGrid(s.Render.Distance, l.app.World.SectionCount())
		logging.Info("render distance changed", "distance", s.Render.Distance)
	}
	if s.Window.VSync != l.appliedVSync {
		l.appliedVSync = s.Window.VSync
		if s.Window.VSync {
			glfw.SwapInterval(1)
		} else {
			glfw.SwapInterval(0)
		}
		logging.Info("vsync changed", "on", s.Window.VSync)
	}
}

func (l *Loop) streamWorld() {
	cam := l.app.Renderer.GetCamera()
	l.app.World.StreamAroundAsync(cam.Position.X(), cam.Position.Z(), config.GetChunkLoadRadius())

	// Periodically evict far chunks; the terrain pass retires their meshes
	// against the same radius.
	if time.Since(l.lastPrune) > pruneInterval {
		l.app.World.EvictFarChunks(cam.Position.X(), cam.Position.Z(), config.GetChunkEvictRadius())
		l.lastPrune = time.Now()
	}
}
