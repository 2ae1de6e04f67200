package battle

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/tankwars/server/internal/catalogue"
	"github.com/tankwars/server/internal/model"
	"github.com/tankwars/server/internal/protocol"
)

// Timing constants from spec.md §4.F.
const (
	UpdateTime    = time.Second / 30
	WaitTime      = 5 * time.Second
	MaxBattleTime = 180 * time.Second
)

// Session is the capability the battle engine needs from a player's live
// connection: a reliable one-way stream for events (MapFoundResponse,
// Explosion, BattleResultResponse) and an unreliable datagram channel for
// the per-tick GamePacket. transport.Session implements this; matchmaker
// hands the engine an opaque matchmaker.ConnectionHandle that the engine
// type-asserts down to Session.
type Session interface {
	PlayerID() int64
	SendStream(msg protocol.Message) error
	SendDatagram(msg protocol.Message) error
}

type phase int

const (
	phaseCountdown phase = iota
	phaseActive
)

// combatant is one side of a live match: the tank's tuned stats, current
// physics state, and this match's running totals (spent by outcome.go at
// termination).
type combatant struct {
	playerID int64
	session  Session
	connected bool

	entry model.TankCatalogueEntry
	level int32

	hp     float64
	maxHP  float64
	damage float64

	coolDown  float64
	reloading float64

	bodyAngle   float64
	gunAngle    float64
	gunTarget   float64
	bodyTarget  float64
	moving      bool

	bodyID int64

	totals matchTotals
}

// Match is one live battle, per spec.md §4.F.
type Match struct {
	id int64

	mapDef model.Map
	world  *world
	bodies BodyCatalogues

	p1, p2 *combatant

	phase     phase
	remaining time.Duration
	elapsed   time.Duration
	stepAccum time.Duration

	ended bool
}

// other returns the combatant on the opposite side from c.
func (m *Match) other(c *combatant) *combatant {
	if c == m.p1 {
		return m.p2
	}
	return m.p1
}

// bodyOf returns c's physics body, where position actually lives.
func (m *Match) bodyOf(c *combatant) *body {
	return m.world.bodies[c.bodyID]
}

// combatantFor returns the combatant for playerID, or nil.
func (m *Match) combatantFor(playerID int64) *combatant {
	if m.p1.playerID == playerID {
		return m.p1
	}
	if m.p2.playerID == playerID {
		return m.p2
	}
	return nil
}

// levelScale implements spec.md §4.F step 3's level scaling of initial hp
// and damage: catalogue base stat times (1 + (level-1)/10).
func levelScale(base float64, level int32) float64 {
	return base * (1 + float64(level-1)/10)
}

// spawnCombatant builds a combatant and inserts its rigid body into w at
// the given spawn position/orientation.
func spawnCombatant(w *world, bodies catalogue.BodyCatalogue, playerID int64, entry model.TankCatalogueEntry, level int32, session Session, position vec2, bodyAngle float64) *combatant {
	c := &combatant{
		playerID:  playerID,
		session:   session,
		connected: true,
		entry:     entry,
		level:     level,
		hp:        levelScale(entry.Characteristics.HP, level),
		maxHP:     levelScale(entry.Characteristics.HP, level),
		damage:    levelScale(entry.Characteristics.Damage, level),
		reloading: entry.Characteristics.ReloadingSeconds,
		bodyAngle: bodyAngle,
	}
	c.maxHP = c.hp

	// Tanks spawn stationary; they start moving only once a
	// PlayerPosition intent arrives during the active phase.
	c.bodyID = w.addBody(UserData{Kind: BodyTank, PlayerID: playerID}, position, vec2{}, tankRadius(bodies, entry))
	return c
}

// newMatch implements spec.md §4.F construction steps 1-4. Returns false
// if construction should be silently dropped (client will retry).
func newMatch(id int64, p1Profile, p2Profile model.Player, p1TankID, p2TankID int32, tanks map[int32]model.TankCatalogueEntry, maps []model.Map, bodies BodyCatalogues, p1Session, p2Session Session) (*Match, bool) {
	p1Entry, ok := resolveTank(p1Profile, p1TankID, tanks)
	if !ok {
		return nil, false
	}
	p2Entry, ok := resolveTank(p2Profile, p2TankID, tanks)
	if !ok {
		return nil, false
	}
	if len(maps) == 0 {
		return nil, false
	}
	mapDef := maps[rand.IntN(len(maps))]

	w := newWorld(mapDef.Width, mapDef.Height)

	p1Level := int32(1)
	if t, ok := p1Profile.OwnsTank(p1TankID); ok {
		p1Level = t.Level
	}
	p2Level := int32(1)
	if t, ok := p2Profile.OwnsTank(p2TankID); ok {
		p2Level = t.Level
	}

	p1Pos := vec2{X: mapDef.Width / 2, Y: mapDef.Player1Y}.scale(ScaleToPhysics)
	p2Pos := vec2{X: mapDef.Width / 2, Y: mapDef.Player2Y}.scale(ScaleToPhysics)

	p1 := spawnCombatant(w, bodies.Tanks, p1Profile.ID, p1Entry, p1Level, p1Session, p1Pos, 0)
	p2 := spawnCombatant(w, bodies.Tanks, p2Profile.ID, p2Entry, p2Level, p2Session, p2Pos, math.Pi)

	addMapObjectBodies(w, bodies.MapObjects, mapDef.Objects)

	return &Match{
		id:        id,
		mapDef:    mapDef,
		world:     w,
		bodies:    bodies,
		p1:        p1,
		p2:        p2,
		phase:     phaseCountdown,
		remaining: WaitTime + MaxBattleTime,
	}, true
}

// resolveTank implements spec.md §4.F step 1's tank resolution: the id
// must name a catalogue entry, and the player must already own it.
func resolveTank(p model.Player, tankID int32, tanks map[int32]model.TankCatalogueEntry) (model.TankCatalogueEntry, bool) {
	entry, ok := tanks[tankID]
	if !ok {
		return model.TankCatalogueEntry{}, false
	}
	if _, owned := p.OwnsTank(tankID); owned {
		return entry, true
	}
	return model.TankCatalogueEntry{}, false
}

// initialMapFoundResponse builds the MapFoundResponse sent to each player
// immediately on match construction, per spec.md §4.F step 4.
func (m *Match) initialMapFoundResponse() protocol.MapFoundResponse {
	return protocol.MapFoundResponse{
		MapName:  m.mapDef.Name,
		WaitTime: float32(WaitTime.Seconds()),
		Initial: buildGamePacket(uint16(m.remaining/time.Second), m.p1, m.p2,
			m.bodyOf(m.p1), m.bodyOf(m.p2), nil, nil),
	}
}

// handlePosition applies a PlayerPosition intent from playerID, per
// spec.md §4.F.1. During countdown the intent is recorded but produces no
// motion, since world.step is never invoked before the active phase.
func (m *Match) handlePosition(playerID int64, msg protocol.PlayerPosition) {
	c := m.combatantFor(playerID)
	if c == nil {
		return
	}
	c.bodyTarget = float64(msg.BodyRotation) * math.Pi / 180
	c.gunTarget = float64(msg.GunRotation) * math.Pi / 180
	c.moving = msg.Moving
}

// handleShoot applies a Shoot intent from playerID, per spec.md §4.F.2.
func (m *Match) handleShoot(playerID int64) {
	if m.phase != phaseActive {
		return
	}
	c := m.combatantFor(playerID)
	if c == nil || c.coolDown > 0 {
		return
	}
	c.totals.shots++
	c.coolDown = c.reloading

	gunAbs := c.gunAngle + c.bodyAngle
	body := m.world.bodies[c.bodyID]
	spawn := gunMuzzle(body.position, c.entry.Graphics.GunOffsetX, c.entry.Graphics.GunOffsetY, gunAbs)
	radius := bulletRadiusFor(m.bodies.Bullets, c.entry)
	spawnBullet(m.world, playerID, spawn, gunAbs, c.entry.Characteristics.BulletSpeed, radius)
}

// tick advances the match by dt and reports whether the match has ended.
func (m *Match) tick(dt time.Duration) bool {
	m.elapsed += dt
	m.remaining -= dt

	if m.phase == phaseCountdown && m.elapsed >= WaitTime {
		m.phase = phaseActive
	}

	var explosions []explosionEvent
	if m.phase == phaseActive {
		step := dt.Seconds()
		m.advanceCombatant(m.p1, step)
		m.advanceCombatant(m.p2, step)

		events := m.world.step(step)
		var damages []damageEvent
		explosions, damages = resolveCollisions(m.world, events)
		for _, d := range damages {
			m.applyDamage(d)
		}
	}

	for _, e := range explosions {
		m.broadcast(protocol.Explosion{X: float32(e.x), Y: float32(e.y), Hit: e.hit})
	}

	m.broadcastSnapshots()

	if m.remaining <= 0 || m.p1.hp <= 0 || m.p2.hp <= 0 {
		m.ended = true
		return true
	}
	return false
}

// advanceCombatant implements the per-tick cool_down decay, gun/body
// angle advance and linear velocity update from spec.md §4.F step 5 and
// §4.F.1.
func (m *Match) advanceCombatant(c *combatant, step float64) {
	c.coolDown = math.Max(0, c.coolDown-step)

	angVel := c.entry.Characteristics.BodyRotateDegrees * math.Pi / 180
	steer := steerTowards(c.bodyTarget, c.bodyAngle, angVel, step)
	c.bodyAngle = wrapToPi(c.bodyAngle + steer.angularVelocity*step)

	backAngle := reflectThroughYAxis(c.bodyAngle)
	linvel := linearVelocity(c.moving, steer.reverse, c.bodyAngle, backAngle, c.entry.Characteristics.Velocity)
	if body := m.world.bodies[c.bodyID]; body != nil {
		body.velocity = linvel
	}

	gunRate := c.entry.Characteristics.GunRotateDegrees * math.Pi / 180
	gunDiff := angleDiff(c.gunTarget, c.gunAngle)
	if math.Abs(gunDiff) <= gunRate*step {
		c.gunAngle = c.gunTarget
	} else if gunDiff < 0 {
		c.gunAngle = wrapToPi(c.gunAngle - gunRate*step)
	} else {
		c.gunAngle = wrapToPi(c.gunAngle + gunRate*step)
	}
}

// applyDamage implements spec.md §4.F.3's damage bookkeeping.
func (m *Match) applyDamage(d damageEvent) {
	victim := m.combatantFor(d.victimPlayerID)
	shooter := m.combatantFor(d.shooterPlayerID)
	if victim == nil || shooter == nil {
		return
	}
	inflicted := math.Min(victim.hp, shooter.damage)
	victim.hp -= inflicted
	victim.totals.damageTaken += int64(inflicted)
	shooter.totals.succeededShots++
	shooter.totals.damageDealt += int64(inflicted)
}

// broadcast sends msg to both connected players over a reliable stream.
func (m *Match) broadcast(msg protocol.Message) {
	if m.p1.connected {
		if err := m.p1.session.SendStream(msg); err != nil {
			m.p1.connected = false
		}
	}
	if m.p2.connected {
		if err := m.p2.session.SendStream(msg); err != nil {
			m.p2.connected = false
		}
	}
}

// broadcastSnapshots sends each player their GamePacket over a datagram,
// per spec.md §4.F.4. A send failure marks connected=false but the match
// continues.
func (m *Match) broadcastSnapshots() {
	timeLeft := uint16(math.Max(0, m.remaining.Seconds()))

	p1Bullets := m.bulletsOf(m.p1.playerID)
	p2Bullets := m.bulletsOf(m.p2.playerID)

	p1Body, p2Body := m.bodyOf(m.p1), m.bodyOf(m.p2)

	if m.p1.connected {
		pkt := buildGamePacket(timeLeft, m.p1, m.p2, p1Body, p2Body, p1Bullets, p2Bullets)
		if err := m.p1.session.SendDatagram(pkt); err != nil {
			m.p1.connected = false
		}
	}
	if m.p2.connected {
		pkt := buildGamePacket(timeLeft, m.p2, m.p1, p2Body, p1Body, p2Bullets, p1Bullets)
		if err := m.p2.session.SendDatagram(pkt); err != nil {
			m.p2.connected = false
		}
	}
}

func (m *Match) bulletsOf(playerID int64) []protocol.BulletData {
	var out []protocol.BulletData
	for _, b := range m.world.bodies {
		if b.data.Kind == BodyBullet && b.data.PlayerID == playerID {
			out = append(out, protocol.BulletData{
				X:        float32(b.position.X * ScaleToPixels),
				Y:        float32(b.position.Y * ScaleToPixels),
				Rotation: radToDeg(math.Atan2(b.velocity.Y, b.velocity.X)),
			})
		}
	}
	return out
}

// reconnect implements spec.md §4.F.6.
func (m *Match) reconnect(playerID int64, session Session) (protocol.MapFoundResponse, bool) {
	c := m.combatantFor(playerID)
	if c == nil {
		return protocol.MapFoundResponse{}, false
	}
	c.session = session
	c.connected = true

	waitTime := m.remaining - MaxBattleTime
	if waitTime < 0 {
		waitTime = 0
	}
	opp := m.other(c)
	return protocol.MapFoundResponse{
		MapName:  m.mapDef.Name,
		WaitTime: float32(waitTime.Seconds()),
		Initial:  buildGamePacket(uint16(math.Max(0, m.remaining.Seconds())), c, opp, m.bodyOf(c), m.bodyOf(opp), m.bulletsOf(c.playerID), m.bulletsOf(opp.playerID)),
	}, true
}
