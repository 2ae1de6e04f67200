package battle

import "math"

// bulletRadius is the fallback bounding radius used when no bullet body
// catalogue is loaded (or a tank's Graphics.BulletName names no entry in
// it) — bullets are visually tiny relative to tanks and map geometry in
// every tank-duel map, so a small stand-in radius is an adequate substitute
// for the bounding-circle approximation physics.go documents.
const bulletRadius = 0.06 // physics units, ~3px at SCALE_TO_PIXELS

// gunMuzzle computes the world-space spawn point of a bullet fired from a
// tank: the gun's pixel offset from the graphics descriptor, rotated by the
// absolute gun angle and translated to the tank's position, per spec.md
// §4.F.2.
func gunMuzzle(tankPos vec2, gunOffsetX, gunOffsetY, gunAbsoluteAngle float64) vec2 {
	offset := vec2{X: gunOffsetX * ScaleToPhysics, Y: gunOffsetY * ScaleToPhysics}
	rotated := vec2{
		X: offset.X*math.Cos(gunAbsoluteAngle) - offset.Y*math.Sin(gunAbsoluteAngle),
		Y: offset.X*math.Sin(gunAbsoluteAngle) + offset.Y*math.Cos(gunAbsoluteAngle),
	}
	return tankPos.add(rotated)
}

// spawnBullet inserts a new bullet body into w, fired from firingPlayerID at
// spawn, travelling at bulletSpeed along gunAbsoluteAngle - pi/2 (spec.md
// §4.F.2's direction convention). Returns the new body's id.
func spawnBullet(w *world, firingPlayerID int64, spawn vec2, gunAbsoluteAngle, bulletSpeed, radius float64) int64 {
	dir := gunAbsoluteAngle - math.Pi/2
	velocity := fromAngle(dir).scale(bulletSpeed * ScaleToPhysics)
	return w.addBody(UserData{Kind: BodyBullet, PlayerID: firingPlayerID}, spawn, velocity, radius)
}
