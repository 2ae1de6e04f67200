// Package battle implements component F: the dedicated-thread physics
// engine that runs every live match at a fixed 30Hz step, resolves
// collisions, and computes match outcomes and rewards.
package battle

import (
	"context"
	"log/slog"
	"time"

	"github.com/tankwars/server/internal/matchmaker"
	"github.com/tankwars/server/internal/model"
	"github.com/tankwars/server/internal/protocol"
	"github.com/tankwars/server/internal/store"
)

// engineCommand is the battle engine's single inbound command type. Only
// one of its fields is ever populated.
type engineCommand struct {
	createMatch *matchmaker.CreateMatch
	position    *positionCmd
	shoot       *shootCmd
	reconnect   *reconnectCmd
}

type positionCmd struct {
	playerID int64
	msg      protocol.PlayerPosition
}

type shootCmd struct {
	playerID int64
}

type reconnectCmd struct {
	playerID int64
	session  Session
}

// Engine hosts every live match on a single dedicated goroutine/thread, per
// spec.md §5 item 3.
type Engine struct {
	tanks  map[int32]model.TankCatalogueEntry
	maps   []model.Map
	bodies BodyCatalogues
	store  store.Store

	cmdCh chan engineCommand

	matches     map[int64]*Match
	byPlayer    map[int64]int64 // player id -> match id
	nextMatchID int64
}

// NewEngine returns an Engine ready to run; tanks and maps are the
// process-wide catalogues loaded at startup (spec.md §4.G). bodies is the
// zero-value-safe set of named polygon/circle collider catalogues used to
// derive real bounding-circle radii and material map-object terrain instead
// of the fixed stand-ins.
func NewEngine(tanks map[int32]model.TankCatalogueEntry, maps []model.Map, bodies BodyCatalogues, st store.Store) *Engine {
	return &Engine{
		tanks:    tanks,
		maps:     maps,
		bodies:   bodies,
		store:    st,
		cmdCh:    make(chan engineCommand, 1024),
		matches:  make(map[int64]*Match),
		byPlayer: make(map[int64]int64),
	}
}

// CreateMatch satisfies matchmaker.BattleEngine: a formed pair is handed
// off onto the engine's own command channel rather than processed on the
// matchmaker's goroutine.
func (e *Engine) CreateMatch(cm matchmaker.CreateMatch) {
	e.cmdCh <- engineCommand{createMatch: &cm}
}

// HandlePlayerPosition forwards a client's movement intent to the match
// engine goroutine. Safe to call from any goroutine (e.g. the transport
// session reading a datagram).
func (e *Engine) HandlePlayerPosition(playerID int64, msg protocol.PlayerPosition) {
	e.cmdCh <- engineCommand{position: &positionCmd{playerID: playerID, msg: msg}}
}

// HandleShoot forwards a client's fire intent.
func (e *Engine) HandleShoot(playerID int64) {
	e.cmdCh <- engineCommand{shoot: &shootCmd{playerID: playerID}}
}

// Reconnect implements spec.md §4.F.6's NotifyPlayerAboutMatch: rebinds a
// returning player's session onto their live match, if any.
func (e *Engine) Reconnect(playerID int64, session Session) {
	e.cmdCh <- engineCommand{reconnect: &reconnectCmd{playerID: playerID, session: session}}
}

// Run drains at most one command per loop iteration and advances every
// match whose step clock has reached UpdateTime, per spec.md §5 item 3.
func (e *Engine) Run(ctx context.Context) {
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		now := time.Now()
		dt := now.Sub(last)
		last = now

		select {
		case cmd := <-e.cmdCh:
			e.handle(cmd)
		default:
		}

		for id, m := range e.matches {
			m.stepAccum += dt
			if m.stepAccum < UpdateTime {
				continue
			}
			step := m.stepAccum
			m.stepAccum = 0
			if m.tick(step) {
				e.finishMatch(id, m)
			}
		}

		time.Sleep(time.Millisecond)
	}
}

func (e *Engine) handle(cmd engineCommand) {
	switch {
	case cmd.createMatch != nil:
		e.createMatch(*cmd.createMatch)
	case cmd.position != nil:
		e.withMatch(cmd.position.playerID, func(m *Match) { m.handlePosition(cmd.position.playerID, cmd.position.msg) })
	case cmd.shoot != nil:
		e.withMatch(cmd.shoot.playerID, func(m *Match) { m.handleShoot(cmd.shoot.playerID) })
	case cmd.reconnect != nil:
		e.withMatch(cmd.reconnect.playerID, func(m *Match) {
			resp, ok := m.reconnect(cmd.reconnect.playerID, cmd.reconnect.session)
			if ok {
				if err := cmd.reconnect.session.SendStream(resp); err != nil {
					slog.Warn("battle: failed to resend MapFoundResponse on reconnect", "player_id", cmd.reconnect.playerID, "error", err)
				}
			}
		})
	}
}

func (e *Engine) withMatch(playerID int64, fn func(*Match)) {
	matchID, ok := e.byPlayer[playerID]
	if !ok {
		return
	}
	m, ok := e.matches[matchID]
	if !ok {
		return
	}
	fn(m)
}

// createMatch implements spec.md §4.F construction step 1: refuse if
// either player already owns a match; resolve tanks; build the match and
// send the initial MapFoundResponse.
func (e *Engine) createMatch(cm matchmaker.CreateMatch) {
	if _, busy := e.byPlayer[cm.PlayerA.PlayerID]; busy {
		return
	}
	if _, busy := e.byPlayer[cm.PlayerB.PlayerID]; busy {
		return
	}

	p1Session, ok := cm.PlayerA.Connection.(Session)
	if !ok {
		slog.Warn("battle: enrolled connection does not implement Session", "player_id", cm.PlayerA.PlayerID)
		return
	}
	p2Session, ok := cm.PlayerB.Connection.(Session)
	if !ok {
		slog.Warn("battle: enrolled connection does not implement Session", "player_id", cm.PlayerB.PlayerID)
		return
	}

	ctx := context.Background()
	p1Profile, err := e.store.LookupByID(ctx, cm.PlayerA.PlayerID)
	if err != nil {
		slog.Warn("battle: failed to load player profile for match", "player_id", cm.PlayerA.PlayerID, "error", err)
		return
	}
	p2Profile, err := e.store.LookupByID(ctx, cm.PlayerB.PlayerID)
	if err != nil {
		slog.Warn("battle: failed to load player profile for match", "player_id", cm.PlayerB.PlayerID, "error", err)
		return
	}

	e.nextMatchID++
	id := e.nextMatchID

	m, ok := newMatch(id, p1Profile, p2Profile, cm.PlayerA.TankID, cm.PlayerB.TankID, e.tanks, e.maps, e.bodies, p1Session, p2Session)
	if !ok {
		slog.Debug("battle: dropping match creation, tank resolution failed", "player_a", cm.PlayerA.PlayerID, "player_b", cm.PlayerB.PlayerID)
		e.nextMatchID--
		return
	}

	e.matches[id] = m
	e.byPlayer[cm.PlayerA.PlayerID] = id
	e.byPlayer[cm.PlayerB.PlayerID] = id

	initial := m.initialMapFoundResponse()
	if err := p1Session.SendStream(initial); err != nil {
		slog.Warn("battle: failed to send initial MapFoundResponse", "player_id", cm.PlayerA.PlayerID, "error", err)
	}
	if err := p2Session.SendStream(initial); err != nil {
		slog.Warn("battle: failed to send initial MapFoundResponse", "player_id", cm.PlayerB.PlayerID, "error", err)
	}
}

// finishMatch implements spec.md §4.F step 6: reward dispatch, persistence,
// and match teardown. Both players are persisted synchronously on the
// engine goroutine; the loop does not advance other matches until the
// store updates return.
func (e *Engine) finishMatch(id int64, m *Match) {
	delete(e.matches, id)
	delete(e.byPlayer, m.p1.playerID)
	delete(e.byPlayer, m.p2.playerID)

	ctx := context.Background()
	p1, err1 := e.store.LookupByID(ctx, m.p1.playerID)
	p2, err2 := e.store.LookupByID(ctx, m.p2.playerID)
	if err1 != nil || err2 != nil {
		slog.Error("battle: failed to reload player profiles at match end", "match_id", id)
		return
	}

	var p1Outcome, p2Outcome Outcome
	switch {
	case m.p1.hp <= 0 && m.p2.hp <= 0, m.p1.hp > 0 && m.p2.hp > 0 && m.remaining <= 0:
		p1Outcome, p2Outcome = applyDraw(&p1, &p2, m.p1.totals, m.p2.totals)
	case m.p2.hp <= 0:
		p1Outcome, p2Outcome = applyOutcome(&p1, &p2, m.p1.totals, m.p2.totals)
	default:
		p2Outcome, p1Outcome = applyOutcome(&p2, &p1, m.p2.totals, m.p1.totals)
	}

	if err := e.store.Update(ctx, p1); err != nil {
		slog.Error("battle: failed to persist player after match", "player_id", p1.ID, "error", err)
	}
	if err := e.store.Update(ctx, p2); err != nil {
		slog.Error("battle: failed to persist player after match", "player_id", p2.ID, "error", err)
	}

	// Profile is sent unredacted: the recipient is the match participant
	// themselves, not a third party viewing another player's profile (that
	// redaction happens in dispatcher.handlePlayerProfile instead).
	if m.p1.connected {
		_ = m.p1.session.SendStream(protocol.BattleResultResponse{
			Profile: p1, Result: p1Outcome.Result, Trophies: p1Outcome.Trophies, XP: p1Outcome.XP,
			Coins: p1Outcome.Coins, DamageDealt: p1Outcome.DamageDealt, DamageTaken: p1Outcome.DamageTaken,
			Accuracy: p1Outcome.Accuracy, Efficiency: p1Outcome.Efficiency,
		})
	}
	if m.p2.connected {
		_ = m.p2.session.SendStream(protocol.BattleResultResponse{
			Profile: p2, Result: p2Outcome.Result, Trophies: p2Outcome.Trophies, XP: p2Outcome.XP,
			Coins: p2Outcome.Coins, DamageDealt: p2Outcome.DamageDealt, DamageTaken: p2Outcome.DamageTaken,
			Accuracy: p2Outcome.Accuracy, Efficiency: p2Outcome.Efficiency,
		})
	}
}
