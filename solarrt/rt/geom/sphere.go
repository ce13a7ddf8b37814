package geom

import (
	"math"
)

// DefaultStepDeg is the latitude/longitude sampling step of GenerateSphere.
const DefaultStepDeg = 10

// GenerateSphere tessellates a sphere of the given radius on a
// DefaultStepDeg latitude/longitude grid.
func GenerateSphere(radius float32) Mesh {
	return GenerateSphereStep(radius, DefaultStepDeg)
}

// GridSize returns the number of latitude and longitude samples for a step.
// Both ends of each range are sampled, so the 0/360 meridian is duplicated.
func GridSize(stepDeg int) (latCount, lonCount int) {
	return 180/stepDeg + 1, 360/stepDeg + 1
}

// GenerateSphereStep tessellates a sphere with latitudes sampled from -90 to
// 90 and longitudes from 0 to 360, both inclusive, every stepDeg degrees.
// stepDeg must divide 180. Each pole is a row of coincident vertices rather
// than a single apex, so the triangles touching it are degenerate.
func GenerateSphereStep(radius float32, stepDeg int) Mesh {
	latCount, lonCount := GridSize(stepDeg)

	vertices := make([]float32, 0, 3*latCount*lonCount)
	for i := 0; i < latCount; i++ {
		lat := float64(-90 + i*stepDeg)
		for j := 0; j < lonCount; j++ {
			lon := float64(j * stepDeg)
			v := GeographicToCartesian(lat, lon, float64(radius))
			vertices = append(vertices, float32(v[0]), float32(v[1]), float32(v[2]))
		}
	}

	indices := make([]uint32, 0, 6*(latCount-1)*(lonCount-1))
	stride := uint32(lonCount)
	for i := uint32(0); i < uint32(latCount-1); i++ {
		for j := uint32(0); j < stride-1; j++ {
			a := j + i*stride
			b := j + (i+1)*stride
			indices = append(indices,
				a, a+1, b+1,
				b+1, b, a,
			)
		}
	}

	return Mesh{
		Vertices: vertices,
		Indices:  indices,
	}
}

// GeographicToCartesian converts latitude/longitude in degrees and a radius to
// Cartesian coordinates with the south-north axis mapped to Y (up).
func GeographicToCartesian(latDeg, lonDeg, r float64) [3]float64 {
	lat := latDeg * math.Pi / 180
	lon := lonDeg * math.Pi / 180
	return [3]float64{
		r * math.Cos(lon) * math.Cos(lat),
		r * math.Sin(lat),
		r * math.Sin(lon) * math.Cos(lat),
	}
}
