package keyglow

import (
	"libdb.so/keyglow/internal/led"
)

// DefaultPalette is the default heat gradient, cold to hot:
// black, green, yellow, red.
var DefaultPalette = []led.RGBColor{
	{0, 0, 0},
	{25, 255, 25},
	{255, 255, 25},
	{255, 25, 25},
}

// Gradient maps a normalized heat value onto an ordered palette of color
// stops. The zero Gradient is not usable; construct one with NewGradient.
type Gradient struct {
	stops []led.RGBColor
}

// NewGradient creates a gradient from the given stops. The stops are copied.
// A single-stop gradient is a solid color.
func NewGradient(stops []led.RGBColor) Gradient {
	return Gradient{stops: append([]led.RGBColor(nil), stops...)}
}

// Len returns the number of stops in the gradient.
func (g Gradient) Len() int { return len(g.stops) }

// Compute returns the color for a heat value. Values at or below 0 return the
// first stop and values at or above 1 return the last stop, both exactly.
// Anything in between is interpolated linearly per channel between the two
// surrounding stops, with the result truncated to 8 bits.
//
// For example, with four stops whose red channels are 0, 25, 25 and 255, a
// value of 0.8 lands at position 2.4 in stop space: the blend factor is 0.4
// and the red channel comes out as 25 + 0.4×(255−25) = 117.
func (g Gradient) Compute(v float64) led.RGBColor {
	last := len(g.stops) - 1
	if last == 0 {
		// single stop, solid color
		return g.stops[0]
	}

	var idx1, idx2 int
	var f float64

	switch {
	case v <= 0:
		// idx1 = idx2 = 0, no blend to compute
	case v >= 1:
		idx1, idx2 = last, last
	default:
		pos := v * float64(last)
		idx1 = int(pos) // truncate, matching the device firmware
		idx2 = idx1 + 1
		f = pos - float64(idx1)
	}

	c1 := g.stops[idx1]
	c2 := g.stops[idx2]

	return led.RGBColor{
		uint8(float64(c1[0]) + f*(float64(c2[0])-float64(c1[0]))),
		uint8(float64(c1[1]) + f*(float64(c2[1])-float64(c1[1]))),
		uint8(float64(c1[2]) + f*(float64(c2[2])-float64(c1[2]))),
	}
}
