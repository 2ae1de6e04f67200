package battle

import "testing"

func TestContactFilterSuppressesSelfShots(t *testing.T) {
	bullet := &body{data: UserData{Kind: BodyBullet, PlayerID: 1}}
	ownTank := &body{data: UserData{Kind: BodyTank, PlayerID: 1}}
	enemyTank := &body{data: UserData{Kind: BodyTank, PlayerID: 2}}

	if !contactFilter(bullet, ownTank) {
		t.Error("expected self-shot to be suppressed")
	}
	if contactFilter(bullet, enemyTank) {
		t.Error("expected enemy contact to not be suppressed")
	}
}

func TestWorldStepDetectsOverlap(t *testing.T) {
	w := newWorld(1000, 1000)
	aID := w.addBody(UserData{Kind: BodyBullet, PlayerID: 1}, vec2{X: 1, Y: 1}, vec2{}, 0.5)
	bID := w.addBody(UserData{Kind: BodyTank, PlayerID: 2}, vec2{X: 1.2, Y: 1}, vec2{}, 0.5)

	events := w.step(0)
	if len(events) != 1 {
		t.Fatalf("expected 1 collision event, got %d", len(events))
	}
	ids := map[int64]bool{events[0].a.id: true, events[0].b.id: true}
	if !ids[aID] || !ids[bID] {
		t.Errorf("collision event does not reference both bodies: %+v", events[0])
	}
}

func TestWorldStepRemovesOutOfBoundsBullet(t *testing.T) {
	w := newWorld(10, 10) // width/height in pixels -> 0.2 physics units
	id := w.addBody(UserData{Kind: BodyBullet, PlayerID: 1}, vec2{X: 0.1, Y: 0.1}, vec2{X: 100, Y: 0}, 0.01)
	w.step(1)
	if _, ok := w.bodies[id]; ok {
		t.Error("expected out-of-bounds bullet to be removed")
	}
}

func TestWorldStepClampsTankToBounds(t *testing.T) {
	w := newWorld(10, 10)
	id := w.addBody(UserData{Kind: BodyTank, PlayerID: 1}, vec2{X: 0.1, Y: 0.1}, vec2{X: 100, Y: 0}, 0.05)
	w.step(1)
	b := w.bodies[id]
	if b == nil {
		t.Fatal("tank should not be removed")
	}
	if b.position.X > w.width {
		t.Errorf("tank position %v exceeds bound %v", b.position.X, w.width)
	}
}

func TestResolveCollisionsBulletVsEnemyTankProducesDamageAndHitExplosion(t *testing.T) {
	w := newWorld(1000, 1000)
	bulletID := w.addBody(UserData{Kind: BodyBullet, PlayerID: 1}, vec2{}, vec2{}, 0.1)
	tankID := w.addBody(UserData{Kind: BodyTank, PlayerID: 2}, vec2{}, vec2{}, 0.5)

	events := []collisionEvent{{a: w.bodies[bulletID], b: w.bodies[tankID], contact: vec2{X: 1, Y: 1}}}
	explosions, damages := resolveCollisions(w, events)

	if len(explosions) != 1 || !explosions[0].hit {
		t.Fatalf("expected one hit explosion, got %+v", explosions)
	}
	if len(damages) != 1 || damages[0].shooterPlayerID != 1 || damages[0].victimPlayerID != 2 {
		t.Fatalf("expected damage from player 1 to player 2, got %+v", damages)
	}
	// kill defers deletion to the next step, so the bullet may still be in
	// the map this tick, but only marked removed.
	if b, ok := w.bodies[bulletID]; ok && !b.removed {
		t.Error("bullet should be killed, not still live")
	}
}

func TestWorldStepPushesTankOutOfOverlappingMapObject(t *testing.T) {
	w := newWorld(1000, 1000)
	tankID := w.addBody(UserData{Kind: BodyTank, PlayerID: 1}, vec2{X: 5, Y: 5}, vec2{}, 0.5)
	objID := w.addBody(UserData{Kind: BodyOther}, vec2{X: 5.2, Y: 5}, vec2{}, 0.5)

	events := w.step(0)
	if len(events) != 0 {
		t.Fatalf("expected tank-vs-map-object contact to produce no bookkeeping event, got %+v", events)
	}

	tank, obj := w.bodies[tankID], w.bodies[objID]
	d := tank.position.sub(obj.position).length()
	if d < tank.radius+obj.radius-1e-9 {
		t.Errorf("expected tank pushed clear of the map object, still overlapping by %v", tank.radius+obj.radius-d)
	}
	if obj.position.X != 5.2 || obj.position.Y != 5 {
		t.Errorf("expected the static map object to stay put, got %+v", obj.position)
	}
}

func TestResolveCollisionsBulletVsBulletNoDamage(t *testing.T) {
	w := newWorld(1000, 1000)
	b1 := w.addBody(UserData{Kind: BodyBullet, PlayerID: 1}, vec2{}, vec2{}, 0.1)
	b2 := w.addBody(UserData{Kind: BodyBullet, PlayerID: 2}, vec2{}, vec2{}, 0.1)

	events := []collisionEvent{{a: w.bodies[b1], b: w.bodies[b2], contact: vec2{}}}
	explosions, damages := resolveCollisions(w, events)

	if len(damages) != 0 {
		t.Errorf("bullet-vs-bullet should produce no damage, got %+v", damages)
	}
	if len(explosions) != 1 || explosions[0].hit {
		t.Errorf("expected a non-hit explosion, got %+v", explosions)
	}
}
