package ephemeris

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Elements are osculating orbital elements at J2000.0 with linear rates per
// Julian century. Angles are in degrees. A is in the unit of the owning Orbit.
// When W or DW is set the orbit is described by argument of perigee,
// otherwise by longitude of perihelion LP.
type Elements struct {
	A, E, I, L, LP, N       float64
	DA, DE, DI, DL, DLP, DN float64
	W, DW                   float64
}

// Orbit places a body around its parent. UnitAU converts A to AU.
type Orbit struct {
	Parent   string
	UnitAU   float64
	Elements Elements
}

// DefaultOrbits holds the Earth about the Sun (JPL approximate elements) and
// the Moon about the Earth (mean lunar elements).
func DefaultOrbits() map[string]Orbit {
	return map[string]Orbit{
		Earth: {
			Parent: Sun,
			UnitAU: 1,
			Elements: Elements{
				A: 1.00000261, E: 0.01671123, I: -0.00001531,
				L: 100.46457166, LP: 102.93768193, N: 0,
				DA: 0.00000562, DE: -0.00004392, DI: -0.01294668,
				DL: 35999.37306329, DLP: 0.32327364, DN: 0,
			},
		},
		Moon: {
			Parent: Earth,
			UnitAU: 1 / AUKm,
			Elements: Elements{
				A: 384399.0, E: 0.0549, I: 5.145,
				L: 218.3165, N: 125.0445, W: 318.3087,
				DL: 481267.8813, DN: -1934.1363, DW: 6003.1498,
			},
		},
	}
}

// Kepler propagates two-body orbits from J2000 elements. Positions are in AU
// in the ecliptic frame. The Sun sits at the origin.
type Kepler struct {
	TimeBase TimeBase
	Orbits   map[string]Orbit
}

func NewKepler(tb TimeBase) *Kepler {
	return &Kepler{
		TimeBase: tb,
		Orbits:   DefaultOrbits(),
	}
}

func (k *Kepler) Position(body string, t float64, frame, correction, centralBody string) (mgl64.Vec3, error) {
	if err := checkFrame(frame); err != nil {
		return mgl64.Vec3{}, err
	}
	T := k.TimeBase.Centuries(t)

	target, err := k.heliocentric(NormalizeName(body), T, 0)
	if err != nil {
		return mgl64.Vec3{}, err
	}
	if centralBody == "" {
		centralBody = Sun
	}
	center, err := k.heliocentric(NormalizeName(centralBody), T, 0)
	if err != nil {
		return mgl64.Vec3{}, err
	}
	return target.Sub(center), nil
}

func (k *Kepler) Orientation(frame, body string, t float64) (mgl64.Mat3, error) {
	name := NormalizeName(body)
	if _, ok := k.Orbits[name]; !ok && name != Sun {
		return mgl64.Mat3{}, unknownBody(body)
	}
	return mgl64.Ident3(), nil
}

func (k *Kepler) heliocentric(name string, T float64, depth int) (mgl64.Vec3, error) {
	if name == Sun {
		return mgl64.Vec3{}, nil
	}
	orbit, ok := k.Orbits[name]
	if !ok || depth > len(k.Orbits) {
		return mgl64.Vec3{}, unknownBody(name)
	}
	parent, err := k.heliocentric(NormalizeName(orbit.Parent), T, depth+1)
	if err != nil {
		return mgl64.Vec3{}, err
	}
	return parent.Add(orbit.Elements.Position(T).Mul(orbit.UnitAU)), nil
}

// Position evaluates the elements at T centuries past J2000 and returns the
// position relative to the parent, in the unit of A.
func (el Elements) Position(T float64) mgl64.Vec3 {
	a := el.A + T*el.DA
	e := el.E + T*el.DE
	i := degToRad(el.I + T*el.DI)
	L := degToRad(el.L + T*el.DL)
	node := degToRad(el.N + T*el.DN)

	var w, M float64
	if el.W != 0 || el.DW != 0 {
		w = degToRad(el.W + T*el.DW)
		M = L - node - w
	} else {
		lp := degToRad(el.LP + T*el.DLP)
		w = lp - node
		M = L - lp
	}

	E := SolveKepler(normalizeRadians(M), e)
	v := 2.0 * math.Atan2(
		math.Sqrt(1.0+e)*math.Sin(E/2.0),
		math.Sqrt(1.0-e)*math.Cos(E/2.0),
	)
	r := a * (1.0 - e*math.Cos(E))

	u := w + v
	cosU, sinU := math.Cos(u), math.Sin(u)
	cosN, sinN := math.Cos(node), math.Sin(node)
	cosI, sinI := math.Cos(i), math.Sin(i)
	return mgl64.Vec3{
		r * (cosN*cosU - sinN*sinU*cosI),
		r * (sinN*cosU + cosN*sinU*cosI),
		r * sinU * sinI,
	}
}

// SolveKepler returns the eccentric anomaly E with E - e sin E = M.
func SolveKepler(M, e float64) float64 {
	var E float64
	if e < 0.8 {
		E = M + e*math.Sin(M)*(1.0+e*math.Cos(M))
	} else {
		E = math.Pi
	}
	for iter := 0; iter < 30; iter++ {
		f := E - e*math.Sin(E) - M
		if math.Abs(f) < 1e-14 {
			break
		}
		E -= f / (1.0 - e*math.Cos(E))
	}
	return E
}

func degToRad(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// normalizeRadians wraps an angle into [0, 2pi).
func normalizeRadians(angle float64) float64 {
	angle = math.Mod(angle, 2*math.Pi)
	if angle < 0 {
		angle += 2 * math.Pi
	}
	return angle
}
