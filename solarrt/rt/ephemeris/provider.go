// Package ephemeris answers "where is body X at time t" for the renderer.
//
// Provider mirrors the shape of a SPICE-style query: a body name, an
// ephemeris time in seconds, a reference frame, an aberration correction and
// the body the position is measured from. Implementations range from the
// closed-form Simulated stand-in to element and series based backends.
package ephemeris

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	FrameEclipJ2000 = "ECLIPJ2000"
	CorrectionNone  = "NONE"
)

// Well-known body identifiers.
const (
	Sun   = "SUN"
	Earth = "EARTH"
	Moon  = "MOON"
)

var (
	ErrUnknownBody  = errors.New("unknown body")
	ErrUnknownFrame = errors.New("unsupported reference frame")
)

type Provider interface {
	// Position of body relative to centralBody at time t.
	Position(body string, t float64, frame, correction, centralBody string) (mgl64.Vec3, error)
	// Orientation of body's fixed frame relative to frame at time t.
	Orientation(frame, body string, t float64) (mgl64.Mat3, error)
}

func unknownBody(name string) error {
	return fmt.Errorf("%w: %q", ErrUnknownBody, name)
}

func checkFrame(frame string) error {
	if frame != "" && !strings.EqualFold(frame, FrameEclipJ2000) {
		return fmt.Errorf("%w: %q", ErrUnknownFrame, frame)
	}
	return nil
}

// NormalizeName upper-cases and trims a body identifier.
func NormalizeName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}
