package orrery

import (
	"errors"
	"fmt"

	"github.com/gekko3d/orrery/solarrt/rt/core"
	"github.com/gekko3d/orrery/solarrt/rt/ephemeris"
	"github.com/gekko3d/orrery/solarrt/rt/geom"

	"github.com/go-gl/mathgl/mgl32"
)

type TimeMode string

const (
	// TimeModeTimestamp feeds the frame timestamp to the provider.
	TimeModeTimestamp TimeMode = "timestamp"
	// TimeModeAccumulated integrates frame deltas.
	TimeModeAccumulated TimeMode = "accumulated"
)

// ErrInvalidScene is wrapped by every SceneDef validation error.
var ErrInvalidScene = errors.New("invalid scene")

// SceneDef is the static description the scene is built from.
type SceneDef struct {
	Bodies        []core.BodyDef
	LightPosition mgl32.Vec3
	ClearColor    mgl32.Vec4
	FovDeg        float32
	Near          float32
	Far           float32
	MeshStepDeg   int
	TimeMode      TimeMode
	// TimeScale multiplies frame time before it reaches the provider.
	TimeScale float64
}

// DefaultSceneDef is the Sun, Earth and Moon animation.
func DefaultSceneDef() SceneDef {
	return SceneDef{
		Bodies: []core.BodyDef{
			{
				Name:        ephemeris.Earth,
				Kind:        core.Lit,
				Radius:      1.25,
				Color:       mgl32.Vec4{0.2, 0.2, 1.0, 1.0},
				CentralBody: ephemeris.Sun,
			},
			{
				Name:        ephemeris.Moon,
				Kind:        core.Lit,
				Radius:      0.75,
				Color:       mgl32.Vec4{0.9, 0.9, 0.9, 1.0},
				CentralBody: ephemeris.Earth,
			},
			{
				Name:        ephemeris.Sun,
				Kind:        core.Emissive,
				Radius:      1.0,
				Color:       mgl32.Vec4{1.0, 1.0, 0.0, 1.0},
				CentralBody: ephemeris.Sun,
			},
		},
		LightPosition: mgl32.Vec3{0, 0, -20},
		ClearColor:    mgl32.Vec4{0, 0, 0, 1},
		FovDeg:        45,
		Near:          0.1,
		Far:           100,
		MeshStepDeg:   geom.DefaultStepDeg,
		TimeMode:      TimeModeTimestamp,
		TimeScale:     1,
	}
}

func (d SceneDef) Validate() error {
	if len(d.Bodies) == 0 {
		return fmt.Errorf("%w: no bodies", ErrInvalidScene)
	}
	seen := map[string]bool{}
	for i, b := range d.Bodies {
		if b.Name == "" {
			return fmt.Errorf("%w: body %d has no name", ErrInvalidScene, i)
		}
		if seen[b.Name] {
			return fmt.Errorf("%w: duplicate body %q", ErrInvalidScene, b.Name)
		}
		seen[b.Name] = true
		if b.Radius <= 0 {
			return fmt.Errorf("%w: body %q radius must be positive", ErrInvalidScene, b.Name)
		}
		if b.Kind != core.Lit && b.Kind != core.Emissive {
			return fmt.Errorf("%w: body %q: %v", ErrInvalidScene, b.Name, b.Kind)
		}
	}
	if d.FovDeg <= 0 || d.FovDeg >= 180 {
		return fmt.Errorf("%w: fov %v out of (0, 180)", ErrInvalidScene, d.FovDeg)
	}
	if d.Near <= 0 || d.Far <= d.Near {
		return fmt.Errorf("%w: clip planes near=%v far=%v", ErrInvalidScene, d.Near, d.Far)
	}
	if d.MeshStepDeg <= 0 || 180%d.MeshStepDeg != 0 {
		return fmt.Errorf("%w: mesh step %d must divide 180", ErrInvalidScene, d.MeshStepDeg)
	}
	switch d.TimeMode {
	case TimeModeTimestamp, TimeModeAccumulated:
	default:
		return fmt.Errorf("%w: time mode %q", ErrInvalidScene, d.TimeMode)
	}
	return nil
}
