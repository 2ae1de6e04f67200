package battle

// explosionEvent is a contact worth broadcasting to both players, per
// spec.md §4.F.3.
type explosionEvent struct {
	x, y float64 // pixel units
	hit  bool    // true when the bullet struck a tank rather than terrain/another bullet
}

// damageEvent names a tank hit by an enemy bullet this tick. The caller
// (match.go, which holds the combatant bookkeeping) computes and applies
// the actual hp/damage_dealt/damage_taken/succeeded_shots deltas, since the
// physics world itself only knows body ids and kinds.
type damageEvent struct {
	victimPlayerID  int64
	shooterPlayerID int64
}

// resolveCollisions implements spec.md §4.F.3 over one tick's drained
// events: for every bullet-vs-X contact, the bullet is removed and an
// explosion is queued; a bullet hitting the opposing tank also produces a
// damageEvent. Tank-vs-terrain contacts never reach this function — world.step
// resolves them physically (resolveTankTerrainOverlap) and withholds them
// from the drained event list, matching spec.md's "no bookkeeping" rule.
func resolveCollisions(w *world, events []collisionEvent) ([]explosionEvent, []damageEvent) {
	var explosions []explosionEvent
	var damages []damageEvent

	for _, ev := range events {
		a, b := ev.a, ev.b
		if a.removed || b.removed {
			continue
		}

		aBullet := a.data.Kind == BodyBullet
		bBullet := b.data.Kind == BodyBullet

		switch {
		case aBullet && bBullet:
			w.kill(a.id)
			w.kill(b.id)
			explosions = append(explosions, explosionEvent{
				x: ev.contact.X * ScaleToPixels, y: ev.contact.Y * ScaleToPixels, hit: false,
			})
		case aBullet || bBullet:
			bullet, other := a, b
			if bBullet {
				bullet, other = b, a
			}
			w.kill(bullet.id)

			isTank := other.data.Kind == BodyTank && other.data.PlayerID != bullet.data.PlayerID
			explosions = append(explosions, explosionEvent{
				x: ev.contact.X * ScaleToPixels, y: ev.contact.Y * ScaleToPixels, hit: isTank,
			})
			if isTank {
				damages = append(damages, damageEvent{
					victimPlayerID:  other.data.PlayerID,
					shooterPlayerID: bullet.data.PlayerID,
				})
			}
		}
	}

	return explosions, damages
}
