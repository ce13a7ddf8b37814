package ephemeris

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/soniakeys/meeus/v3/base"
	"github.com/soniakeys/meeus/v3/moonposition"
	"github.com/soniakeys/meeus/v3/solar"
	"github.com/soniakeys/unit"
)

// Meeus computes Sun, Earth and Moon from the solar theory and the ELP lunar
// series in Astronomical Algorithms. The theories give ecliptic-of-date
// coordinates; longitudes are moved to the J2000 equinox by the general
// precession in longitude. The motion of the ecliptic plane itself (under
// 0.015 degrees per century) is ignored. Positions are in AU.
type Meeus struct {
	TimeBase TimeBase
}

func NewMeeus(tb TimeBase) *Meeus {
	return &Meeus{TimeBase: tb}
}

func (m *Meeus) Position(body string, t float64, frame, correction, centralBody string) (mgl64.Vec3, error) {
	if err := checkFrame(frame); err != nil {
		return mgl64.Vec3{}, err
	}
	jde := m.TimeBase.JDE(t)

	target, err := m.heliocentric(NormalizeName(body), jde)
	if err != nil {
		return mgl64.Vec3{}, err
	}
	if centralBody == "" {
		centralBody = Sun
	}
	center, err := m.heliocentric(NormalizeName(centralBody), jde)
	if err != nil {
		return mgl64.Vec3{}, err
	}
	return target.Sub(center), nil
}

func (m *Meeus) Orientation(frame, body string, t float64) (mgl64.Mat3, error) {
	switch NormalizeName(body) {
	case Sun, Earth, Moon:
		return mgl64.Ident3(), nil
	}
	return mgl64.Mat3{}, unknownBody(body)
}

func (m *Meeus) heliocentric(name string, jde float64) (mgl64.Vec3, error) {
	switch name {
	case Sun:
		return mgl64.Vec3{}, nil
	case Earth:
		return earthHeliocentric(jde), nil
	case Moon:
		λ, β, Δ := moonposition.Position(jde)
		λ -= precessionInLongitude(base.J2000Century(jde))
		return earthHeliocentric(jde).Add(spherical(λ, β, Δ/AUKm)), nil
	}
	return mgl64.Vec3{}, unknownBody(name)
}

// earthHeliocentric is the reverse of the Sun's geocentric position.
func earthHeliocentric(jde float64) mgl64.Vec3 {
	T := base.J2000Century(jde)
	s, _ := solar.True(T)
	s -= precessionInLongitude(T)
	return spherical(s, 0, solar.Radius(T)).Mul(-1)
}

// precessionInLongitude is the general precession from J2000.0 to T Julian
// centuries later (Lieske 1977).
func precessionInLongitude(T float64) unit.Angle {
	return unit.AngleFromSec(5029.0966*T + 1.11113*T*T)
}

func spherical(lon, lat unit.Angle, r float64) mgl64.Vec3 {
	sinLon, cosLon := lon.Sincos()
	sinLat, cosLat := lat.Sincos()
	return mgl64.Vec3{r * cosLat * cosLon, r * cosLat * sinLon, r * sinLat}
}
