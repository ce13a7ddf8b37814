package ephemeris

import "github.com/go-gl/mathgl/mgl64"

// Scaled maps positions from a physical provider into render space.
type Scaled struct {
	Provider Provider
	// Scale is render units per provider unit.
	Scale  float64
	Origin mgl64.Vec3
	// Center, when set, replaces the requested central body so every body
	// is placed relative to the same render origin.
	Center string
}

func (s Scaled) Position(body string, t float64, frame, correction, centralBody string) (mgl64.Vec3, error) {
	if s.Center != "" {
		centralBody = s.Center
	}
	p, err := s.Provider.Position(body, t, frame, correction, centralBody)
	if err != nil {
		return mgl64.Vec3{}, err
	}
	return s.Origin.Add(p.Mul(s.Scale)), nil
}

func (s Scaled) Orientation(frame, body string, t float64) (mgl64.Mat3, error) {
	return s.Provider.Orientation(frame, body, t)
}
