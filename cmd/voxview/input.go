package main

import (
	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"voxview/internal/input"
)

func setupInputHandlers(window *glfw.Window, loop *Loop, m *input.Manager) {
	m.SetKeyCallback(window)

	window.SetCursorPosCallback(func(w *glfw.Window, xpos, ypos float64) {
		loop.handleCursor(xpos, ypos)
	})

	window.SetFramebufferSizeCallback(func(w *glfw.Window, fbWidth, fbHeight int) {
		if fbWidth == 0 || fbHeight == 0 {
			return // minimized
		}
		gl.Viewport(0, 0, int32(fbWidth), int32(fbHeight))
		loop.app.Renderer.UpdateViewport(fbWidth, fbHeight)
	})
}
