package shape

import (
	"math"

	"gonum.org/v1/gonum/integrate/quad"
)

// orientPoints matches the fixed 76-point Gauss-Legendre rule the
// reference kernels use for orientation averaging.
const orientPoints = 76

// orientAverage integrates F^2(alpha)*sin(alpha) over [0, pi/2], the
// orientation average for randomly oriented particles.
func orientAverage(f func(alpha float64) float64) float64 {
	return quad.Fixed(func(alpha float64) float64 {
		amp := f(alpha)
		return amp * amp * math.Sin(alpha)
	}, 0, math.Pi/2, orientPoints, quad.Legendre{}, 1)
}

// sinc is sin(x)/x with the x=0 limit.
func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	return math.Sin(x) / x
}

// j1x is 2*J1(x)/x, normalized so j1x(0) = 1.
func j1x(x float64) float64 {
	if x == 0 {
		return 1
	}
	return 2 * math.J1(x) / x
}

// sph3j is 3*(sin(u) - u*cos(u))/u^3, the normalized spherical Bessel
// amplitude with sph3j(0) = 1.
func sph3j(u float64) float64 {
	if u == 0 {
		return 1
	}
	return 3 * (math.Sin(u) - u*math.Cos(u)) / (u * u * u)
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
