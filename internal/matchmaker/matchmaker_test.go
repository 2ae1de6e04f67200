package matchmaker

import "testing"

type fakeEngine struct {
	matches []CreateMatch
}

func (f *fakeEngine) CreateMatch(cm CreateMatch) {
	f.matches = append(f.matches, cm)
}

func TestScenarioS3MatchmakerWindow(t *testing.T) {
	engine := &fakeEngine{}
	m := New(engine)

	m.addPlayer(Enrollment{PlayerID: 1, Trophies: 100}) // seq 0
	m.addPlayer(Enrollment{PlayerID: 2, Trophies: 200}) // seq 1
	m.addPlayer(Enrollment{PlayerID: 3, Trophies: 150}) // seq 2 -> pairs with 1 (diff 50)

	if len(engine.matches) != 1 {
		t.Fatalf("expected 1 match after P3 enrolls, got %d", len(engine.matches))
	}
	match := engine.matches[0]
	gotIDs := map[int64]bool{match.PlayerA.PlayerID: true, match.PlayerB.PlayerID: true}
	if !gotIDs[1] || !gotIDs[3] {
		t.Fatalf("expected match between P1 and P3, got %+v", match)
	}

	remaining := m.enrolled
	if len(remaining) != 1 || remaining[0].PlayerID != 2 {
		t.Fatalf("expected only P2 remaining, got %+v", remaining)
	}

	m.addPlayer(Enrollment{PlayerID: 4, Trophies: 250}) // seq 3 -> pairs with 2 (diff 50)
	if len(engine.matches) != 2 {
		t.Fatalf("expected 2 matches after P4 enrolls, got %d", len(engine.matches))
	}
	second := engine.matches[1]
	gotIDs = map[int64]bool{second.PlayerA.PlayerID: true, second.PlayerB.PlayerID: true}
	if !gotIDs[2] || !gotIDs[4] {
		t.Fatalf("expected match between P2 and P4, got %+v", second)
	}
}

func TestPairingNoMatchBeyondDiff(t *testing.T) {
	engine := &fakeEngine{}
	m := New(engine)

	m.addPlayer(Enrollment{PlayerID: 1, Trophies: 0})
	m.addPlayer(Enrollment{PlayerID: 2, Trophies: 61})
	m.addPlayer(Enrollment{PlayerID: 3, Trophies: 200})

	if len(engine.matches) != 0 {
		t.Fatalf("expected no matches (all gaps > DIFF), got %d", len(engine.matches))
	}
	if len(m.enrolled) != 3 {
		t.Fatalf("expected all 3 still enrolled, got %d", len(m.enrolled))
	}
}

func TestPairingTieBreakSmallestSeq(t *testing.T) {
	// Three players end up equally within DIFF of each other; the
	// scanner must pick the smallest-seq candidate as the pairing
	// partner rather than the first or last in trophy order.
	engine := &fakeEngine{}
	m := New(engine)
	m.enrolled = []Enrollment{
		{PlayerID: 10, Trophies: 100, seq: 0},
		{PlayerID: 11, Trophies: 100, seq: 5},
		{PlayerID: 12, Trophies: 100, seq: 1},
	}
	m.scanForPairs()

	if len(engine.matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(engine.matches))
	}
	ids := map[int64]bool{engine.matches[0].PlayerA.PlayerID: true, engine.matches[0].PlayerB.PlayerID: true}
	if !ids[10] || !ids[12] {
		t.Fatalf("expected tie-break to pick smallest seq (player 12 over 11), got %+v", engine.matches[0])
	}
}

func TestRemovePlayerSilentIfAbsent(t *testing.T) {
	engine := &fakeEngine{}
	m := New(engine)
	m.removePlayer(999) // must not panic
}

func TestAddPlayerIdempotent(t *testing.T) {
	engine := &fakeEngine{}
	m := New(engine)
	m.addPlayer(Enrollment{PlayerID: 1, Trophies: 50})
	m.addPlayer(Enrollment{PlayerID: 1, Trophies: 999}) // duplicate id, dropped silently

	if len(m.enrolled) != 1 {
		t.Fatalf("expected 1 enrollment after duplicate add, got %d", len(m.enrolled))
	}
	if m.enrolled[0].Trophies != 50 {
		t.Errorf("duplicate add should not overwrite existing entry; trophies = %d", m.enrolled[0].Trophies)
	}
}
