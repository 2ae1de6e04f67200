// Package matchmaker implements the event-driven rating-window pairer
// (component E): a single-consumer task over a command channel buffered to
// 256 entries (AddPlayer and RemovePlayer block while it is full) that
// enrolls and withdraws players and emits CreateMatch commands to the
// battle engine when a pair falls within the trophy window.
package matchmaker

import (
	"context"
	"log/slog"
	"sort"
)

// DIFF is the maximum trophy gap within which two enrolled players may be
// paired.
const DIFF = 60

// Enrollment is one player's matchmaking entry.
type Enrollment struct {
	PlayerID   int64
	TankID     int32
	Trophies   int32
	Connection ConnectionHandle
	seq        int64
}

// ConnectionHandle is the minimal capability the matchmaker needs from a
// session to hand a formed pair to the battle engine: just an opaque
// identity carried through to CreateMatch. The concrete type lives in
// package transport; matchmaker only needs "something to pass along",
// avoiding an import cycle (the same callback-injection idiom the teacher
// uses in internal/game/combat.Manager).
type ConnectionHandle any

// CreateMatch is emitted to the battle engine when a pair is formed.
type CreateMatch struct {
	PlayerA Enrollment
	PlayerB Enrollment
}

// BattleEngine is the minimal capability the matchmaker needs to hand off a
// formed pair — implemented by battle.Engine.
type BattleEngine interface {
	CreateMatch(CreateMatch)
}

// command is the matchmaker's internal command-channel payload.
type command struct {
	add    *Enrollment
	remove *int64 // player id to withdraw
}

// Matchmaker owns the single-consumer loop described in spec.md §4.E. All
// mutation of the enrollment list happens on the loop goroutine; callers
// only ever send on cmdCh.
type Matchmaker struct {
	cmdCh  chan command
	engine BattleEngine

	enrolled []Enrollment
	nextSeq  int64
}

// New returns a Matchmaker wired to engine, which receives CreateMatch
// commands when a pair forms. Call Run to start its consumer loop.
func New(engine BattleEngine) *Matchmaker {
	return &Matchmaker{
		cmdCh:  make(chan command, 256),
		engine: engine,
	}
}

// Run drains commands until ctx is cancelled. Each command runs to
// completion before the next is read — the ordering guarantee spec.md §5
// requires ("Matchmaker commands are processed FIFO").
func (m *Matchmaker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-m.cmdCh:
			m.handle(cmd)
		}
	}
}

func (m *Matchmaker) handle(cmd command) {
	switch {
	case cmd.add != nil:
		m.addPlayer(*cmd.add)
	case cmd.remove != nil:
		m.removePlayer(*cmd.remove)
	}
}

// AddPlayer enrolls e. Safe to call from any goroutine.
func (m *Matchmaker) AddPlayer(e Enrollment) {
	m.cmdCh <- command{add: &e}
}

// RemovePlayer withdraws the enrollment for playerID, if present. Safe to
// call from any goroutine.
func (m *Matchmaker) RemovePlayer(playerID int64) {
	m.cmdCh <- command{remove: &playerID}
}

// addPlayer implements spec.md §4.E's AddPlayer: idempotent by player id,
// sorted insert by trophies ascending, followed by a pairing scan.
func (m *Matchmaker) addPlayer(e Enrollment) {
	for _, existing := range m.enrolled {
		if existing.PlayerID == e.PlayerID {
			slog.Debug("matchmaker: ignoring duplicate enrollment", "player_id", e.PlayerID)
			return
		}
	}

	e.seq = m.nextSeq
	m.nextSeq++

	m.enrolled = append(m.enrolled, e)
	sort.SliceStable(m.enrolled, func(i, j int) bool {
		return m.enrolled[i].Trophies < m.enrolled[j].Trophies
	})

	m.scanForPairs()
}

// removePlayer implements spec.md §4.E's RemovePlayer: silent if absent.
func (m *Matchmaker) removePlayer(playerID int64) {
	for i, e := range m.enrolled {
		if e.PlayerID == playerID {
			m.enrolled = append(m.enrolled[:i], m.enrolled[i+1:]...)
			return
		}
	}
}

// scanForPairs implements the O(N^2) scan spec.md §4.E and §9 specify:
// for each i, scan forward while the trophy gap stays within DIFF,
// picking the smallest-seq candidate as best match. Because the list is
// sorted by trophies, the inner scan terminates at the first gap > DIFF.
func (m *Matchmaker) scanForPairs() {
	for i := 0; i < len(m.enrolled); i++ {
		bestJ := -1
		for j := i + 1; j < len(m.enrolled); j++ {
			if m.enrolled[j].Trophies-m.enrolled[i].Trophies > DIFF {
				break
			}
			if bestJ == -1 || m.enrolled[j].seq < m.enrolled[bestJ].seq {
				bestJ = j
			}
		}
		if bestJ == -1 {
			continue
		}

		a, b := m.enrolled[i], m.enrolled[bestJ]
		// Remove higher index first so the lower index stays valid.
		m.enrolled = append(m.enrolled[:bestJ], m.enrolled[bestJ+1:]...)
		m.enrolled = append(m.enrolled[:i], m.enrolled[i+1:]...)

		m.engine.CreateMatch(CreateMatch{PlayerA: a, PlayerB: b})

		// Restart the scan: indices shifted and a new pairing may now be
		// possible among the remaining enrollees.
		i = -1
	}
}
