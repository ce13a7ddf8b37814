package ephemeris

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Simulated is the closed-form stand-in used until a real ephemeris is
// configured. Earth circles the Sun with radius 7 and unit angular speed, the
// Moon adds a radius 3 epicycle at three times that speed, and everything
// sits on the z = -20 plane in front of the camera. Positions are absolute,
// so the correction and central body arguments do not change the result.
type Simulated struct{}

func NewSimulated() *Simulated {
	return &Simulated{}
}

func (Simulated) Position(body string, t float64, frame, correction, centralBody string) (mgl64.Vec3, error) {
	if err := checkFrame(frame); err != nil {
		return mgl64.Vec3{}, err
	}
	switch NormalizeName(body) {
	case Earth:
		return mgl64.Vec3{
			7.0 * math.Cos(t),
			7.0 * math.Sin(t),
			-20,
		}, nil
	case Moon:
		return mgl64.Vec3{
			7.0*math.Cos(t) + 3.0*math.Cos(t*3),
			7.0*math.Sin(t) + 3.0*math.Sin(t*3),
			-20,
		}, nil
	case Sun:
		return mgl64.Vec3{0, 0, -20}, nil
	}
	return mgl64.Vec3{}, unknownBody(body)
}

func (Simulated) Orientation(frame, body string, t float64) (mgl64.Mat3, error) {
	switch NormalizeName(body) {
	case Earth, Moon, Sun:
		return mgl64.Ident3(), nil
	}
	return mgl64.Mat3{}, unknownBody(body)
}
