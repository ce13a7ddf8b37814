package orrery

import (
	"fmt"

	"github.com/gekko3d/orrery/solarrt/rt/core"
	"github.com/gekko3d/orrery/solarrt/rt/gpu"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// GraphicsContext is the device the scene draws with and the current
// drawable size.
type GraphicsContext struct {
	Device core.Device
	Width  int
	Height int
}

func (g *GraphicsContext) Aspect() float32 {
	if g.Height <= 0 {
		return 1
	}
	return float32(g.Width) / float32(g.Height)
}

// ClientModule opens the window and the GPU device. Failures are recorded
// with Commands.Fail and returned by App.Run.
type ClientModule struct {
	WindowWidth  int
	WindowHeight int
	WindowTitle  string
}

type clientState struct {
	renderer *gpu.Renderer
}

func (mod ClientModule) Install(app *App, cmd *Commands) {
	win, err := createWindowState(mod.WindowWidth, mod.WindowHeight, mod.WindowTitle)
	if err != nil {
		cmd.Fail(err)
		return
	}
	cmd.Defer(win.release)

	renderer, err := createGpuState(win, appLogger{app: app})
	if err != nil {
		cmd.Fail(err)
		return
	}
	cmd.Defer(renderer.Release)

	width, height := win.FramebufferSize()
	cmd.AddResources(
		win,
		&clientState{renderer: renderer},
		&GraphicsContext{
			Device: renderer,
			Width:  width,
			Height: height,
		},
	)

	app.UseSystem(
		System(windowEventsSystem).
			InStage(PreUpdate).
			RunAlways(),
	)
}

func windowEventsSystem(cmd *Commands, win *WindowState, client *clientState, gfx *GraphicsContext) {
	glfw.PollEvents()
	if win.windowGlfw.ShouldClose() {
		cmd.Stop()
		return
	}

	if !win.resized {
		return
	}
	win.resized = false
	width, height := win.FramebufferSize()
	if width <= 0 || height <= 0 {
		return
	}
	if err := client.renderer.Resize(width, height); err != nil {
		cmd.Fail(fmt.Errorf("resize to %dx%d: %w", width, height, err))
		return
	}
	win.WindowWidth, win.WindowHeight = win.windowGlfw.GetSize()
	gfx.Width, gfx.Height = width, height
}
