package ephemeris

import (
	"time"

	"github.com/soniakeys/meeus/v3/base"
	"github.com/soniakeys/meeus/v3/julian"
)

const (
	SecondsPerDay  = 86400.0
	DaysPerCentury = 36525.0
	// AUKm is the astronomical unit in kilometers.
	AUKm = 149597870.7
)

// TimeBase maps provider time, in seconds, onto Julian ephemeris days.
// A zero Epoch means J2000.0 and a zero Scale means real time.
type TimeBase struct {
	Epoch time.Time
	Scale float64
}

func (tb TimeBase) JDE(t float64) float64 {
	jd0 := base.J2000
	if !tb.Epoch.IsZero() {
		jd0 = julian.TimeToJD(tb.Epoch.UTC())
	}
	scale := tb.Scale
	if scale == 0 {
		scale = 1
	}
	return jd0 + t*scale/SecondsPerDay
}

// Centuries returns Julian centuries since J2000.0 at provider time t.
func (tb TimeBase) Centuries(t float64) float64 {
	return base.J2000Century(tb.JDE(t))
}
