package battle

import "math"

// vec2 is a 2D vector in physics units (SCALE_TO_PHYSICS-scaled meters).
type vec2 struct {
	X, Y float64
}

func (v vec2) add(o vec2) vec2    { return vec2{v.X + o.X, v.Y + o.Y} }
func (v vec2) sub(o vec2) vec2    { return vec2{v.X - o.X, v.Y - o.Y} }
func (v vec2) scale(s float64) vec2 { return vec2{v.X * s, v.Y * s} }

func (v vec2) length() float64 {
	return math.Hypot(v.X, v.Y)
}

// fromAngle returns the unit vector pointing at angle radians (0 = +X axis).
func fromAngle(angle float64) vec2 {
	return vec2{X: math.Cos(angle), Y: math.Sin(angle)}
}

// twoPi is 2*pi, used throughout the angle-wrapping arithmetic of 4.F.1.
const twoPi = 2 * math.Pi

// wrapToPi normalizes a into (-pi, pi].
func wrapToPi(a float64) float64 {
	a = math.Mod(a, twoPi)
	if a <= -math.Pi {
		a += twoPi
	} else if a > math.Pi {
		a -= twoPi
	}
	return a
}

// mod2pi returns a mod 2*pi in [0, 2*pi).
func mod2pi(a float64) float64 {
	m := math.Mod(a, twoPi)
	if m < 0 {
		m += twoPi
	}
	return m
}
