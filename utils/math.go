package utils

import (
	"math"
)

// DegToRad converts degrees to radians.
func DegToRad(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// RadToDeg converts radians to degrees.
func RadToDeg(radians float64) float64 {
	return radians * 180 / math.Pi
}

// ModAngDeg wraps an angle in degrees into [0, 360).
func ModAngDeg(ang float64) float64 {
	return math.Mod(math.Mod(ang, 360)+360, 360)
}

// Square returns n*n. math.Pow(x, 2) is slow, this is faster.
func Square(n float64) float64 {
	return n * n
}

// RoundTo rounds x to the given number of decimal places, halves away from zero.
func RoundTo(x float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(x*scale) / scale
}

// Clamp limits x to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Normalize maps value from the domain [lo, hi] onto [0, 1]. A degenerate domain maps
// everything to 0 rather than dividing by zero.
func Normalize(value, lo, hi float64) float64 {
	if hi <= lo {
		return 0
	}
	return (value - lo) / (hi - lo)
}
