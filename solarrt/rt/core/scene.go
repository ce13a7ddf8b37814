package core

import (
	"fmt"

	"github.com/gekko3d/orrery/solarrt/rt/ephemeris"

	"github.com/go-gl/mathgl/mgl32"
)

type Scene struct {
	Objects       []*Body
	Projection    mgl32.Mat4
	LightPosition mgl32.Vec3
	ClearColor    mgl32.Vec4
	SimTime       float64
}

func NewScene() *Scene {
	return &Scene{
		Objects:    []*Body{},
		Projection: mgl32.Ident4(),
		ClearColor: mgl32.Vec4{0, 0, 0, 1},
	}
}

func (s *Scene) AddBody(b *Body) {
	s.Objects = append(s.Objects, b)
}

func (s *Scene) Body(name string) *Body {
	for _, b := range s.Objects {
		if b.Name == name {
			return b
		}
	}
	return nil
}

// Perspective sets the shared projection. fovDeg is the vertical field of
// view in degrees.
func (s *Scene) Perspective(fovDeg, aspect, near, far float32) {
	s.Projection = mgl32.Perspective(mgl32.DegToRad(fovDeg), aspect, near, far)
}

// PositionError reports a body the provider could not place.
type PositionError struct {
	Body string
	Err  error
}

func (e *PositionError) Error() string {
	return fmt.Sprintf("position of %s: %v", e.Body, e.Err)
}

func (e *PositionError) Unwrap() error {
	return e.Err
}

// UpdatePositions queries p for every object in order at SimTime. Bodies the
// provider fails on keep their previous position.
func (s *Scene) UpdatePositions(p ephemeris.Provider) []*PositionError {
	var errs []*PositionError
	for _, b := range s.Objects {
		pos, err := p.Position(b.Name, s.SimTime, ephemeris.FrameEclipJ2000, ephemeris.CorrectionNone, b.CentralBody)
		if err != nil {
			errs = append(errs, &PositionError{Body: b.Name, Err: err})
			continue
		}
		b.UpdatePosition(mgl32.Vec3{float32(pos[0]), float32(pos[1]), float32(pos[2])})
	}
	return errs
}

// Draw displays every object in list order and returns the draw count.
func (s *Scene) Draw(f Frame) int {
	for _, b := range s.Objects {
		b.Display(f, s)
	}
	return len(s.Objects)
}

// Render clears a new frame, draws the scene and presents it.
func (s *Scene) Render(dev Device) (int, error) {
	f, err := dev.BeginFrame(s.ClearColor)
	if err != nil {
		return 0, err
	}
	n := s.Draw(f)
	if err := f.End(); err != nil {
		return n, err
	}
	return n, nil
}

func (s *Scene) Release() {
	for _, b := range s.Objects {
		b.Release()
	}
}
