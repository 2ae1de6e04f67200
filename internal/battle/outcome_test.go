package battle

import (
	"testing"

	"github.com/tankwars/server/internal/model"
	"github.com/tankwars/server/internal/protocol"
)

func TestEfficiencyZeroShotsZeroDamageTaken(t *testing.T) {
	acc, eff := efficiency(matchTotals{})
	if acc != 0 {
		t.Errorf("acc = %v, want 0", acc)
	}
	// ratio falls back to 1 (not 0) when damage_taken is 0.
	if eff != 0.5 {
		t.Errorf("eff = %v, want 0.5 (acc=0, ratio=1)", eff)
	}
}

func TestEfficiencyFiniteInputs(t *testing.T) {
	acc, eff := efficiency(matchTotals{shots: 10, succeededShots: 5, damageDealt: 100, damageTaken: 50})
	if acc != 0.5 {
		t.Errorf("acc = %v, want 0.5", acc)
	}
	want := (0.5 + 0.5) * 2.0
	if eff != want {
		t.Errorf("eff = %v, want %v", eff, want)
	}
}

func TestApplyOutcomeVictoryUpdatesBothPlayers(t *testing.T) {
	winner := &model.Player{Rank: 1, Trophies: 100}
	loser := &model.Player{Rank: 1, Trophies: 100}

	winnerTotals := matchTotals{shots: 10, succeededShots: 8, damageDealt: 200, damageTaken: 50}
	loserTotals := matchTotals{shots: 5, succeededShots: 1, damageDealt: 50, damageTaken: 200}

	wOut, lOut := applyOutcome(winner, loser, winnerTotals, loserTotals)

	if wOut.Result != protocol.ResultVictory {
		t.Errorf("winner result = %v, want Victory", wOut.Result)
	}
	if lOut.Result != protocol.ResultDefeat {
		t.Errorf("loser result = %v, want Defeat", lOut.Result)
	}
	if winner.Trophies <= 100 {
		t.Errorf("winner trophies should increase, got %d", winner.Trophies)
	}
	if winner.Victories != 1 || winner.Battles != 1 {
		t.Errorf("winner victories/battles = %d/%d, want 1/1", winner.Victories, winner.Battles)
	}
	if loser.Battles != 1 {
		t.Errorf("loser battles = %d, want 1", loser.Battles)
	}
	if loser.Trophies < 0 {
		t.Errorf("loser trophies went negative: %d", loser.Trophies)
	}
}

func TestApplyOutcomeLoserTrophiesClampedAtZero(t *testing.T) {
	winner := &model.Player{Rank: 1, Trophies: 0}
	loser := &model.Player{Rank: 1, Trophies: 5}

	applyOutcome(winner, loser, matchTotals{shots: 1, succeededShots: 1, damageDealt: 100, damageTaken: 0}, matchTotals{})

	if loser.Trophies < 0 {
		t.Errorf("loser trophies = %d, want clamped to >= 0", loser.Trophies)
	}
}

func TestApplyDrawZeroesRewardsButUpdatesStats(t *testing.T) {
	p1 := &model.Player{Rank: 1}
	p2 := &model.Player{Rank: 1}

	o1, o2 := applyDraw(p1, p2, matchTotals{shots: 4, succeededShots: 2, damageDealt: 10, damageTaken: 10}, matchTotals{})

	if o1.Result != protocol.ResultDraw || o2.Result != protocol.ResultDraw {
		t.Fatalf("expected both results Draw, got %v / %v", o1.Result, o2.Result)
	}
	if o1.Trophies != 0 || o1.XP != 0 || o1.Coins != 0 {
		t.Errorf("draw outcome should zero trophies/xp/coins, got %+v", o1)
	}
	if p1.Battles != 1 || p2.Battles != 1 {
		t.Errorf("battles should still increment on draw, got %d/%d", p1.Battles, p2.Battles)
	}
}

func TestGrantXPRanksUp(t *testing.T) {
	p := &model.Player{Rank: 1, XP: 0}
	grantXP(p, rankThreshold(1)+10)
	if p.Rank != 2 {
		t.Errorf("rank = %d, want 2", p.Rank)
	}
	if p.XP != 10 {
		t.Errorf("leftover xp = %d, want 10", p.XP)
	}
}

func TestRandRangeBounds(t *testing.T) {
	for i := 0; i < 100; i++ {
		v := randRange(10, 15)
		if v < 10 || v > 15 {
			t.Fatalf("randRange(10,15) = %d, out of bounds", v)
		}
	}
}
