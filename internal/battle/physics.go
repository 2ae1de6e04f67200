package battle

// SCALE_TO_PHYSICS and SCALE_TO_PIXELS convert between the pixel-space
// catalogue/map coordinates and the physics world's units, per spec.md
// §4.F construction step 1.
const (
	ScaleToPhysics = 1.0 / 50.0
	ScaleToPixels  = 50.0
)

// body is one simulated rigid body: a tank or a bullet. The corpus carries
// no rigid-body physics or narrow-phase collision library (checked across
// every go.mod in the retrieved examples), so collision uses a bounding
// circle derived from each body's compound collider radius rather than
// full polygon narrow-phase — adequate for an arcade top-down shooter and
// the only option available without inventing a dependency.
type body struct {
	id       int64
	data     UserData
	position vec2
	velocity vec2
	radius   float64
	removed  bool
}

// collisionEvent is a drained collision-start between two still-live
// bodies, with the contact point in physics units (midpoint of the two
// centers along the line connecting them).
type collisionEvent struct {
	a, b    *body
	contact vec2
}

// world holds every live body for one match. There is one world per match;
// the battle engine steps every match's world once per tick.
type world struct {
	bodies map[int64]*body
	nextID int64
	width  float64 // physics units
	height float64
}

func newWorld(widthPixels, heightPixels float64) *world {
	return &world{
		bodies: make(map[int64]*body),
		width:  widthPixels * ScaleToPhysics,
		height: heightPixels * ScaleToPhysics,
	}
}

// addBody inserts a new rigid body and returns its assigned id.
func (w *world) addBody(data UserData, position, velocity vec2, radius float64) int64 {
	w.nextID++
	id := w.nextID
	w.bodies[id] = &body{id: id, data: data, position: position, velocity: velocity, radius: radius}
	return id
}

func (w *world) remove(id int64) {
	delete(w.bodies, id)
}

// kill marks a body removed without deleting it mid-tick; collision
// resolution (run after step returns) calls this so a bullet that hit
// something doesn't also generate a spurious second event against a body
// iterated later in the same pass. Actual deletion happens at the top of
// the next step.
func (w *world) kill(id int64) {
	if b, ok := w.bodies[id]; ok {
		b.removed = true
	}
}

// contactFilter reports whether a collision between a and b should be
// suppressed: a bullet never collides with a tank belonging to the player
// who fired it (self-shots pass through), per spec.md §4.F.3.
func contactFilter(a, b *body) bool {
	bullet, tank := a, b
	if a.data.Kind != BodyBullet {
		bullet, tank = b, a
	}
	if bullet.data.Kind != BodyBullet || tank.data.Kind != BodyTank {
		return false
	}
	return bullet.data.PlayerID == tank.data.PlayerID
}

// step advances every body's position by velocity*dt, clamps tank
// positions to the arena bounds, removes bullets that leave the arena, and
// returns the set of non-suppressed collision-start events detected this
// tick.
func (w *world) step(dt float64) []collisionEvent {
	for id, b := range w.bodies {
		if b.removed {
			delete(w.bodies, id)
		}
	}

	for id, b := range w.bodies {
		if b.removed {
			continue
		}
		b.position = b.position.add(b.velocity.scale(dt))

		if b.data.Kind == BodyBullet {
			if b.position.X < 0 || b.position.X > w.width || b.position.Y < 0 || b.position.Y > w.height {
				delete(w.bodies, id)
			}
			continue
		}

		if b.position.X < 0 {
			b.position.X = 0
		}
		if b.position.X > w.width {
			b.position.X = w.width
		}
		if b.position.Y < 0 {
			b.position.Y = 0
		}
		if b.position.Y > w.height {
			b.position.Y = w.height
		}
	}

	var events []collisionEvent
	ids := make([]int64, 0, len(w.bodies))
	for id, b := range w.bodies {
		if !b.removed {
			ids = append(ids, id)
		}
	}
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			a, b := w.bodies[ids[i]], w.bodies[ids[j]]
			if contactFilter(a, b) {
				continue
			}
			d := a.position.sub(b.position)
			dist := d.length()
			if dist > a.radius+b.radius {
				continue
			}
			if resolveTankTerrainOverlap(a, b, d, dist) {
				continue
			}
			mid := a.position.add(b.position).scale(0.5)
			events = append(events, collisionEvent{a: a, b: b, contact: mid})
		}
	}

	return events
}

// resolveTankTerrainOverlap implements spec.md §4.F.3's "tanks vs map
// objects collide physically with no bookkeeping": when a and b are a tank
// and a static BodyOther body, the tank is pushed back out of the overlap
// along the separation vector sep (= a.position - b.position) and no
// collision event is generated. Reports whether it handled the pair.
func resolveTankTerrainOverlap(a, b *body, sep vec2, dist float64) bool {
	tank, other := a, b
	switch {
	case a.data.Kind == BodyTank && b.data.Kind == BodyOther:
	case b.data.Kind == BodyTank && a.data.Kind == BodyOther:
		tank, other = b, a
		sep = sep.scale(-1)
	default:
		return false
	}

	if dist == 0 {
		sep, dist = vec2{X: 1}, 1
	}
	overlap := tank.radius + other.radius - dist
	tank.position = tank.position.add(sep.scale(overlap / dist))
	return true
}
