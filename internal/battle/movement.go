package battle

import "math"

// reflectThroughYAxis implements spec.md §4.F.1's back-angle definition: if
// alpha is 0 or pi, it is its own reflection; otherwise it is alpha shifted
// by pi with the sign opposite alpha.
func reflectThroughYAxis(alpha float64) float64 {
	if alpha == 0 || alpha == math.Pi {
		return alpha
	}
	if alpha > 0 {
		return alpha - math.Pi
	}
	return alpha + math.Pi
}

// angleDiff returns ((target - alpha) mod 2*pi) - pi, the forward-diff
// formula spec.md §4.F.1 specifies.
func angleDiff(target, alpha float64) float64 {
	return mod2pi(target-alpha) - math.Pi
}

// steerResult is the outcome of one movement-intent tick: the body's new
// angular velocity and whether the tank should drive in reverse (chosen
// because facing away from the requested heading was the shorter turn).
type steerResult struct {
	angularVelocity float64
	reverse         bool
}

// steerTowards implements spec.md §4.F.1: compute the forward-diff and the
// back-diff (via the reflected current angle), pick whichever has smaller
// magnitude, and derive the angular velocity needed to close it this tick.
// angVel is the tank's turn-rate characteristic, converted by the caller
// from degrees/second to radians/second.
func steerTowards(target, alpha, angVel, updateTime float64) steerResult {
	forward := angleDiff(target, alpha)
	backward := angleDiff(target, reflectThroughYAxis(alpha))

	d := forward
	reverse := false
	if math.Abs(backward) < math.Abs(forward) {
		d = backward
		reverse = true
	}

	if math.Abs(d) <= angVel*updateTime {
		return steerResult{angularVelocity: 0, reverse: reverse}
	}
	if d < 0 {
		return steerResult{angularVelocity: -angVel, reverse: reverse}
	}
	return steerResult{angularVelocity: angVel, reverse: reverse}
}

// linearVelocity implements spec.md §4.F.1's movement speed rule: full
// speed forward along alpha-pi/2 when driving forward-facing, half speed
// along back_angle-pi/2 when driving in reverse, zero when not moving.
func linearVelocity(moving, reverse bool, alpha, backAngle, velocity float64) vec2 {
	if !moving {
		return vec2{}
	}
	if !reverse {
		return fromAngle(alpha - math.Pi/2).scale(velocity * ScaleToPhysics)
	}
	return fromAngle(backAngle - math.Pi/2).scale(0.5 * velocity * ScaleToPhysics)
}
