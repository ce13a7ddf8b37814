package orrery

import (
	"github.com/go-gl/glfw/v3.3/glfw"
)

type Key int

const (
	KeyEscape Key = iota
	KeyQ
	KeySpace
	KeyEnter
)

var keyToGlfw = map[Key]glfw.Key{
	KeyEscape: glfw.KeyEscape,
	KeyQ:      glfw.KeyQ,
	KeySpace:  glfw.KeySpace,
	KeyEnter:  glfw.KeyEnter,
}

type Input struct {
	Pressed      map[Key]bool
	JustPressed  map[Key]bool
	JustReleased map[Key]bool
}

func NewInput() *Input {
	return &Input{
		Pressed:      map[Key]bool{},
		JustPressed:  map[Key]bool{},
		JustReleased: map[Key]bool{},
	}
}

// Set records the state of key for this frame and derives the edge flags.
func (input *Input) Set(key Key, down bool) {
	input.JustPressed[key] = down && !input.Pressed[key]
	input.JustReleased[key] = !down && input.Pressed[key]
	input.Pressed[key] = down
}

// AnyJustPressed reports whether one of keys went down this frame.
func (input *Input) AnyJustPressed(keys ...Key) bool {
	for _, k := range keys {
		if input.JustPressed[k] {
			return true
		}
	}
	return false
}

// InputModule polls the keyboard and closes the window on CloseKeys
// (Escape by default). Requires ClientModule.
type InputModule struct {
	CloseKeys []Key
}

type inputConfig struct {
	closeKeys []Key
}

func (mod InputModule) Install(app *App, cmd *Commands) {
	closeKeys := mod.CloseKeys
	if len(closeKeys) == 0 {
		closeKeys = []Key{KeyEscape}
	}
	cmd.AddResources(NewInput(), &inputConfig{closeKeys: closeKeys})
	app.UseSystem(
		System(inputSystem).
			InStage(PreUpdate).
			RunAlways(),
	)
	app.UseSystem(
		System(closeOnKeySystem).
			InStage(PreUpdate).
			RunAlways(),
	)
}

func inputSystem(s *WindowState, input *Input) {
	for key, glfwKey := range keyToGlfw {
		input.Set(key, s.windowGlfw.GetKey(glfwKey) == glfw.Press)
	}
}

func closeOnKeySystem(s *WindowState, input *Input, conf *inputConfig) {
	if input.AnyJustPressed(conf.closeKeys...) {
		s.Close()
	}
}
