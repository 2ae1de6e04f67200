package battle

import (
	"math"
	"testing"
)

func TestAngleDiffWrapsToHalfCircle(t *testing.T) {
	d := angleDiff(0, math.Pi/2)
	if d < -math.Pi || d > math.Pi {
		t.Fatalf("angleDiff out of [-pi, pi): %v", d)
	}
}

func TestReflectThroughYAxisFixedPoints(t *testing.T) {
	if reflectThroughYAxis(0) != 0 {
		t.Error("reflect(0) should be 0")
	}
	if reflectThroughYAxis(math.Pi) != math.Pi {
		t.Error("reflect(pi) should be pi")
	}
}

func TestSteerTowardsHaltsWithinThreshold(t *testing.T) {
	// The forward-diff ((target - alpha) mod 2pi) - pi is zero when the
	// requested rotation is half a turn from alpha, so that is the halting
	// point.
	res := steerTowards(math.Pi, 0, 10, 1.0/30)
	if res.angularVelocity != 0 {
		t.Errorf("forward-diff is 0, angular velocity should be 0, got %v", res.angularVelocity)
	}
}

func TestSteerTowardsAngularVelocityBounded(t *testing.T) {
	// Whichever of the forward and back diffs is chosen, the returned
	// angular velocity never exceeds the turn rate passed in.
	res := steerTowards(math.Pi, 0, 5, 1.0/30)
	if math.Abs(res.angularVelocity) > 5 {
		t.Errorf("angular velocity %v exceeds max turn rate 5", res.angularVelocity)
	}
}

func TestLinearVelocityZeroWhenNotMoving(t *testing.T) {
	v := linearVelocity(false, false, 0, 0, 10)
	if v.X != 0 || v.Y != 0 {
		t.Errorf("expected zero velocity, got %+v", v)
	}
}

func TestLinearVelocityReverseIsHalfSpeed(t *testing.T) {
	fwd := linearVelocity(true, false, 0, 0, 10)
	rev := linearVelocity(true, true, 0, 0, 10)
	if math.Abs(rev.length()-fwd.length()/2) > 1e-9 {
		t.Errorf("reverse speed = %v, want half of forward speed %v", rev.length(), fwd.length())
	}
}
