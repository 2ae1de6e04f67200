package battle

import (
	"context"
	"sync"
	"testing"

	"github.com/tankwars/server/internal/matchmaker"
	"github.com/tankwars/server/internal/model"
	"github.com/tankwars/server/internal/protocol"
	"github.com/tankwars/server/internal/store"
)

type fakeSession struct {
	mu       sync.Mutex
	playerID int64
	stream   []protocol.Message
	datagram []protocol.Message
}

func newFakeSession(playerID int64) *fakeSession {
	return &fakeSession{playerID: playerID}
}

func (f *fakeSession) PlayerID() int64 { return f.playerID }

func (f *fakeSession) SendStream(msg protocol.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stream = append(f.stream, msg)
	return nil
}

func (f *fakeSession) SendDatagram(msg protocol.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.datagram = append(f.datagram, msg)
	return nil
}

func (f *fakeSession) streamLen() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.stream)
}

func (f *fakeSession) datagramLen() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.datagram)
}

func testCatalogue() map[int32]model.TankCatalogueEntry {
	return map[int32]model.TankCatalogueEntry{
		0: {
			ID: 0,
			Graphics: model.TankGraphics{GunOffsetX: 0, GunOffsetY: -10},
			Characteristics: model.TankCharacteristics{
				Name: "starter", HP: 100, GunRotateDegrees: 180, BodyRotateDegrees: 90,
				Velocity: 2, ReloadingSeconds: 1, BulletSpeed: 10, Damage: 200,
			},
		},
	}
}

func testMaps() []model.Map {
	return []model.Map{{Name: "arena", Width: 500, Height: 1000, Player1Y: 900, Player2Y: 100}}
}

func TestNewMatchResolvesStarterTank(t *testing.T) {
	p1 := model.Player{ID: 1, Rank: 1, Tanks: []model.Tank{{ID: 0, Level: 1}}}
	p2 := model.Player{ID: 2, Rank: 1, Tanks: []model.Tank{{ID: 0, Level: 1}}}
	s1, s2 := newFakeSession(1), newFakeSession(2)

	m, ok := newMatch(1, p1, p2, 0, 0, testCatalogue(), testMaps(), BodyCatalogues{}, s1, s2)
	if !ok {
		t.Fatal("expected match construction to succeed for an owned tank id")
	}
	if m.p1.hp != 100 || m.p2.hp != 100 {
		t.Errorf("expected hp 100 for level-1 starter tanks, got %v / %v", m.p1.hp, m.p2.hp)
	}
	if m.phase != phaseCountdown {
		t.Errorf("new match should start in countdown phase")
	}
}

func TestNewMatchRefusesUnownedTank(t *testing.T) {
	p1 := model.Player{ID: 1}
	p2 := model.Player{ID: 2}
	s1, s2 := newFakeSession(1), newFakeSession(2)

	_, ok := newMatch(1, p1, p2, 99, 0, testCatalogue(), testMaps(), BodyCatalogues{}, s1, s2)
	if ok {
		t.Fatal("expected construction to fail for an unowned, non-catalogue tank id")
	}
}

func TestNewMatchRefusesCatalogueTankPlayerDoesNotOwn(t *testing.T) {
	p1 := model.Player{ID: 1}
	p2 := model.Player{ID: 2, Tanks: []model.Tank{{ID: 0, Level: 1}}}
	s1, s2 := newFakeSession(1), newFakeSession(2)

	_, ok := newMatch(1, p1, p2, 0, 0, testCatalogue(), testMaps(), BodyCatalogues{}, s1, s2)
	if ok {
		t.Fatal("expected construction to fail: tank id 0 exists in the catalogue but p1 does not own it")
	}
}

func TestMatchTickUntilVictory(t *testing.T) {
	p1 := model.Player{ID: 1, Rank: 1, Tanks: []model.Tank{{ID: 0, Level: 1}}}
	p2 := model.Player{ID: 2, Rank: 1, Tanks: []model.Tank{{ID: 0, Level: 1}}}
	s1, s2 := newFakeSession(1), newFakeSession(2)

	m, ok := newMatch(1, p1, p2, 0, 0, testCatalogue(), testMaps(), BodyCatalogues{}, s1, s2)
	if !ok {
		t.Fatal("match construction failed")
	}

	// Skip the countdown directly to the active phase for this test.
	m.elapsed = WaitTime
	m.phase = phaseActive

	// Force a lethal hit without relying on physics geometry to line up:
	// exercise applyDamage directly, matching what collision resolution
	// would have produced.
	m.applyDamage(damageEvent{victimPlayerID: 2, shooterPlayerID: 1})
	if m.p2.hp > 0 {
		t.Fatalf("expected a one-shot kill given damage=200 > hp=100, got hp=%v", m.p2.hp)
	}

	ended := m.tick(UpdateTime)
	if !ended {
		t.Fatal("expected match to end once a combatant's hp reaches 0")
	}
	if s1.datagramLen() == 0 {
		t.Error("expected a GamePacket snapshot sent to player 1 during the tick")
	}
}

func TestEngineCreateMatchAndFinish(t *testing.T) {
	mem := store.NewMemStore()
	ctx := context.Background()
	p1 := model.Player{ID: 1, Rank: 1, Trophies: 100, Tanks: []model.Tank{{ID: 0, Level: 1}}}
	p2 := model.Player{ID: 2, Rank: 1, Trophies: 100, Tanks: []model.Tank{{ID: 0, Level: 1}}}
	if err := mem.Insert(ctx, p1); err != nil {
		t.Fatalf("insert p1: %v", err)
	}
	if err := mem.Insert(ctx, p2); err != nil {
		t.Fatalf("insert p2: %v", err)
	}

	e := NewEngine(testCatalogue(), testMaps(), BodyCatalogues{}, mem)

	s1, s2 := newFakeSession(1), newFakeSession(2)
	e.createMatch(matchmaker.CreateMatch{
		PlayerA: matchmaker.Enrollment{PlayerID: 1, TankID: 0, Trophies: 100, Connection: s1},
		PlayerB: matchmaker.Enrollment{PlayerID: 2, TankID: 0, Trophies: 100, Connection: s2},
	})

	if len(e.matches) != 1 {
		t.Fatalf("expected 1 live match, got %d", len(e.matches))
	}
	if e.byPlayer[1] == 0 || e.byPlayer[2] == 0 {
		t.Fatal("expected both players indexed to the new match")
	}
	if s1.streamLen() == 0 || s2.streamLen() == 0 {
		t.Error("expected initial MapFoundResponse sent to both players")
	}

	var matchID int64
	for id := range e.matches {
		matchID = id
	}
	m := e.matches[matchID]
	m.elapsed = WaitTime
	m.phase = phaseActive
	m.p2.hp = 0

	e.finishMatch(matchID, m)

	if _, stillLive := e.matches[matchID]; stillLive {
		t.Error("expected match removed after finishing")
	}
	if _, stillIndexed := e.byPlayer[1]; stillIndexed {
		t.Error("expected player 1 no longer indexed to a match")
	}

	updated, err := mem.LookupByID(ctx, 1)
	if err != nil {
		t.Fatalf("lookup p1: %v", err)
	}
	if updated.Trophies <= 100 {
		t.Errorf("expected winner's trophies to increase, got %d", updated.Trophies)
	}
	if updated.Battles != 1 || updated.Victories != 1 {
		t.Errorf("expected battles/victories incremented, got %d/%d", updated.Battles, updated.Victories)
	}
}
