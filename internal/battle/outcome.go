package battle

import (
	"math"
	"math/rand/v2"

	"github.com/tankwars/server/internal/model"
	"github.com/tankwars/server/internal/protocol"
)

// matchTotals accumulates one combatant's shot/damage bookkeeping for the
// duration of a single match, reset to zero at spawn.
type matchTotals struct {
	shots          int64
	succeededShots int64
	damageDealt    int64
	damageTaken    int64
}

// efficiency implements spec.md §4.F.5's per-match acc/eff pair: accuracy
// is 0 when no shots were fired, and the damage ratio falls back to 1 (not
// 0) when the player took no damage, matching "1 if denom ratio
// non-finite".
func efficiency(t matchTotals) (acc, eff float64) {
	if t.shots > 0 {
		acc = float64(t.succeededShots) / float64(t.shots)
	}
	ratio := 1.0
	if t.damageTaken > 0 {
		ratio = float64(t.damageDealt) / float64(t.damageTaken)
	}
	eff = (acc + 0.5) * ratio
	return acc, eff
}

// priorEfficiency is the same formula applied to a player's persisted
// lifetime stats, used for the trophy-delta calculation in spec.md §4.F.5.
func priorEfficiency(p model.Player) float64 {
	ratio := 1.0
	if p.DamageTaken > 0 {
		ratio = float64(p.DamageDealt) / float64(p.DamageTaken)
	}
	return (p.Accuracy + 0.5) * ratio
}

// randRange returns a uniform integer in [min, max] inclusive.
func randRange(min, max int64) int64 {
	if max <= min {
		return min
	}
	return min + rand.Int64N(max-min+1)
}

// Outcome is one player's share of a finished battle's result, mirroring
// protocol.BattleResultResponse's Result payload.
type Outcome struct {
	Result      protocol.BattleResult
	Trophies    int32
	XP          int64
	Coins       int64
	DamageDealt int64
	DamageTaken int64
	Accuracy    float64
	Efficiency  float64
}

// applyOutcome implements spec.md §4.F.5 in full: computes each side's
// per-match accuracy/efficiency, the trophy/xp/coin rewards, updates each
// player's battle count, running-average stats and rank, and returns
// the Outcome each side's BattleResultResponse carries. winner/loser are
// mutated in place; on a draw, call applyDraw instead.
func applyOutcome(winner, loser *model.Player, winnerTotals, loserTotals matchTotals) (Outcome, Outcome) {
	priorDiff := math.Floor(priorEfficiency(*winner) - priorEfficiency(*loser))

	winAcc, winEff := efficiency(winnerTotals)
	loseAcc, loseEff := efficiency(loserTotals)

	winnerTrophies := int32(math.Floor(30 + priorDiff))
	loserTrophyDelta := int32(math.Floor(-30 - priorDiff))

	winnerXP := int64(math.Floor(winEff * 15))
	loserXP := int64(math.Floor(loseEff * 15))

	rankGap := int64(winner.Rank - loser.Rank)
	winnerCoins := randRange(70, 100) + randRange(10, 15)*rankGap
	loserCoins := randRange(15, 20) + randRange(10, 15)*rankGap

	winner.Trophies += winnerTrophies
	winner.Coins += winnerCoins
	winner.Victories++
	winner.Battles++
	applyRunningStats(winner, winAcc, winnerTotals.damageDealt, winnerTotals.damageTaken)
	grantXP(winner, winnerXP)

	loser.Trophies += loserTrophyDelta
	if loser.Trophies < 0 {
		loser.Trophies = 0
	}
	loser.Coins += loserCoins
	loser.Battles++
	applyRunningStats(loser, loseAcc, loserTotals.damageDealt, loserTotals.damageTaken)
	grantXP(loser, loserXP)

	winnerOutcome := Outcome{
		Result: protocol.ResultVictory, Trophies: winnerTrophies, XP: winnerXP, Coins: winnerCoins,
		DamageDealt: winnerTotals.damageDealt, DamageTaken: winnerTotals.damageTaken,
		Accuracy: winAcc, Efficiency: winEff,
	}
	loserOutcome := Outcome{
		Result: protocol.ResultDefeat, Trophies: loserTrophyDelta, XP: loserXP, Coins: loserCoins,
		DamageDealt: loserTotals.damageDealt, DamageTaken: loserTotals.damageTaken,
		Accuracy: loseAcc, Efficiency: loseEff,
	}
	return winnerOutcome, loserOutcome
}

// applyDraw implements the timeout-with-both-hp>0 branch of spec.md
// §4.F.5: no trophies/xp/coins change for either side, but battles_count
// and running accuracy/damage averages still update.
func applyDraw(p1, p2 *model.Player, t1, t2 matchTotals) (Outcome, Outcome) {
	acc1, eff1 := efficiency(t1)
	acc2, eff2 := efficiency(t2)

	p1.Battles++
	applyRunningStats(p1, acc1, t1.damageDealt, t1.damageTaken)
	p2.Battles++
	applyRunningStats(p2, acc2, t2.damageDealt, t2.damageTaken)

	o1 := Outcome{Result: protocol.ResultDraw, DamageDealt: t1.damageDealt, DamageTaken: t1.damageTaken, Accuracy: acc1, Efficiency: eff1}
	o2 := Outcome{Result: protocol.ResultDraw, DamageDealt: t2.damageDealt, DamageTaken: t2.damageTaken, Accuracy: acc2, Efficiency: eff2}
	return o1, o2
}

// applyRunningStats updates p's running-average accuracy/damage_dealt/
// damage_taken after p.Battles has already been incremented for this
// match, per spec.md §4.F.5's two (intentionally distinct) running-mean
// formulas.
func applyRunningStats(p *model.Player, newAcc float64, newDamageDealt, newDamageTaken int64) {
	n := float64(p.Battles)
	p.Accuracy = (p.Accuracy*(n-1) + newAcc) / n
	p.DamageDealt = (p.DamageDealt*int64(n) + newDamageDealt) / int64(n)
	p.DamageTaken = (p.DamageTaken*int64(n) + newDamageTaken) / int64(n)
}

// grantXP implements spec.md §4.F.5's rank-up loop: while accumulated xp
// covers the current rank's threshold, deduct it and advance rank. New
// players start at Rank 1 (assigned at registration), so the threshold is
// always positive and the loop terminates.
func grantXP(p *model.Player, xp int64) {
	p.XP += xp
	for {
		threshold := rankThreshold(p.Rank)
		if p.XP < threshold {
			break
		}
		p.XP -= threshold
		p.Rank++
	}
}

// rankThreshold is the xp cost of advancing past rank.
func rankThreshold(rank int32) int64 {
	return int64(50 * float64(rank) * math.Pow(3, float64(rank)/10))
}
