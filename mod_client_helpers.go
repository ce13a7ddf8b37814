package orrery

import (
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/gekko3d/orrery/solarrt/rt/gpu"
	"github.com/go-gl/glfw/v3.3/glfw"
)

type WindowState struct {
	windowGlfw   *glfw.Window
	WindowWidth  int
	WindowHeight int
	windowTitle  string
	resized      bool
}

func createWindowState(windowWidth int, windowHeight int, windowTitle string) (*WindowState, error) {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("glfw init: %w", err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI) // wgpu owns the surface, no GL context
	glfw.WindowHint(glfw.Resizable, glfw.True)

	win, err := glfw.CreateWindow(windowWidth, windowHeight, windowTitle, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("create window: %w", err)
	}

	s := &WindowState{
		windowGlfw:   win,
		WindowWidth:  windowWidth,
		WindowHeight: windowHeight,
		windowTitle:  windowTitle,
	}
	win.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		s.resized = true
	})
	return s, nil
}

func (s *WindowState) release() {
	s.windowGlfw.Destroy()
	glfw.Terminate()
}

// FramebufferSize is the drawable size in pixels, which differs from the
// window size on high-DPI displays.
func (s *WindowState) FramebufferSize() (int, int) {
	return s.windowGlfw.GetFramebufferSize()
}

func (s *WindowState) Close() {
	s.windowGlfw.SetShouldClose(true)
}

func createGpuState(s *WindowState, log gpu.Logger) (*gpu.Renderer, error) {
	width, height := s.FramebufferSize()
	renderer, err := gpu.NewRenderer(wgpuglfw.GetSurfaceDescriptor(s.windowGlfw), width, height, log)
	if err != nil {
		return nil, fmt.Errorf("gpu: %w", err)
	}
	return renderer, nil
}

// appLogger resolves the app logger on every call so it follows a
// LoggingModule installed after the client.
type appLogger struct {
	app *App
}

func (l appLogger) Debugf(format string, args ...any) {
	l.app.Logger().Debugf(format, args...)
}

func (l appLogger) Infof(format string, args ...any) {
	l.app.Logger().Infof(format, args...)
}

func (l appLogger) Warnf(format string, args ...any) {
	l.app.Logger().Warnf(format, args...)
}

func (l appLogger) Errorf(format string, args ...any) {
	l.app.Logger().Errorf(format, args...)
}
