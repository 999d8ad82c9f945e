package main

import (
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/xlab/closer"

	"voxview/internal/config"
	"voxview/internal/input"
	"voxview/internal/logging"
)

const configPath = "voxview.toml"

func init() {
	runtime.LockOSThread()
}

func main() {
	if err := config.Load(configPath); err != nil {
		logging.Warn("config not loaded, using defaults", "path", configPath, "err", err)
	}
	logging.SetDebug(config.Get().Debug.Verbose)

	if err := glfw.Init(); err != nil {
		logging.Fatal("glfw init failed", "err", err)
	}
	closer.Bind(glfw.Terminate)

	window, err := setupWindow()
	if err != nil {
		logging.Fatal("window setup failed", "err", err)
	}

	app, err := setupApp(window)
	if err != nil {
		logging.Fatal("setup failed", "err", err)
	}
	closer.Bind(func() {
		logging.Info("shutting down")
		app.Mesher.Close()
		app.World.Close()
	})

	// Re-read the config file on change; the frame loop applies whatever
	// differs from the running state.
	stopWatch := make(chan struct{})
	closer.Bind(func() { close(stopWatch) })
	if err := config.Watch(configPath, stopWatch, func(s config.Settings) {
		logging.SetDebug(s.Debug.Verbose)
		logging.Info("config reloaded", "distance", s.Render.Distance, "workers", s.Mesher.Workers)
	}); err != nil {
		logging.Warn("config watch disabled", "err", err)
	}

	manager := input.NewManager()
	loop := NewLoop(app, manager)
	setupInputHandlers(window, loop, manager)

	logging.Info("starting",
		"distance", config.GetRenderDistance(),
		"workers", app.Mesher.WorkerCount(),
		"seed", config.Get().World.Seed)
	loop.Run()

	app.Renderer.Dispose()
	closer.Close()
}
