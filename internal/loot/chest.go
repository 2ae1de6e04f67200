package loot

import (
	"math/rand/v2"
	"sort"

	"github.com/tankwars/server/internal/model"
)

// randRange returns a uniform integer in [min, max] inclusive.
func randRange(min, max int64) int64 {
	if max <= min {
		return min
	}
	return min + rand.Int64N(max-min+1)
}

// draw is the intermediate result of one tank roll, carried until the final
// sort so both the sampling weight ("chance") and the rarity are available
// for the tie-break.
type draw struct {
	tankID int32
	rarity model.Rarity
	chance float64
	count  int32 // spare parts; 0 means "new tank"
}

// ownedWeightOverride is the fixed draw weight used for a tank the player
// already owns, regardless of its catalogue rarity weight.
const ownedWeightOverride = 70

// rollTanks draws n distinct tanks from catalogue, weighting owned tanks by
// ownedWeightOverride (dropping ownedPartsMin..ownedPartsMax spare parts) and
// not-yet-owned tanks by weightFn(entry.Characteristics.Rarity) (dropping
// zero parts — a brand new tank).
func rollTanks(catalogue []model.TankCatalogueEntry, owner model.Player, n int, weightFn func(model.Rarity) float64, ownedPartsMin, ownedPartsMax int64) []draw {
	var list WeightedRandomList[model.TankCatalogueEntry]
	for _, entry := range catalogue {
		if _, owned := owner.OwnsTank(entry.ID); owned {
			list.Add(entry, ownedWeightOverride)
		} else {
			list.Add(entry, weightFn(entry.Characteristics.Rarity))
		}
	}

	draws := make([]draw, 0, n)
	for i := 0; i < n && list.Len() > 0; i++ {
		entry, ok := list.GetRandom()
		if !ok {
			break
		}
		_, owned := owner.OwnsTank(entry.ID)

		var weight float64
		if owned {
			weight = ownedWeightOverride
		} else {
			weight = weightFn(entry.Characteristics.Rarity)
		}

		var count int32
		if owned {
			count = int32(randRange(ownedPartsMin, ownedPartsMax))
		}

		draws = append(draws, draw{
			tankID: entry.ID,
			rarity: entry.Characteristics.Rarity,
			chance: weight,
			count:  count,
		})

		list.RemoveEntry(func(e model.TankCatalogueEntry) bool { return e.ID == entry.ID })
	}
	return draws
}

// sortLoot orders draws ascending by chance, tie-breaking by descending
// rarity ordinal, and converts them to TankDrop.
func sortLoot(draws []draw) []model.TankDrop {
	sort.SliceStable(draws, func(i, j int) bool {
		if draws[i].chance != draws[j].chance {
			return draws[i].chance < draws[j].chance
		}
		return draws[i].rarity > draws[j].rarity
	})

	loot := make([]model.TankDrop, len(draws))
	for i, d := range draws {
		loot[i] = model.TankDrop{TankID: d.tankID, Count: d.count}
	}
	return loot
}

// GenerateCommonLoot implements generate_random_loot(COMMON, player): coins
// in [20,40], diamonds in [0,4], 2-3 tank drops.
func GenerateCommonLoot(catalogue []model.TankCatalogueEntry, owner model.Player) model.Chest {
	n := int(randRange(2, 3))
	draws := rollTanks(catalogue, owner, n, model.Rarity.Weight, 30, 50)

	return model.Chest{
		Name:     model.ChestCommon,
		Coins:    randRange(20, 40),
		Diamonds: randRange(0, 4),
		Loot:     sortLoot(draws),
	}
}

// GenerateStarterLoot implements the STARTER chest: coins in [40,60],
// diamonds in [2,5], 1-2 tank drops, with non-common rarities weighted 2x.
func GenerateStarterLoot(catalogue []model.TankCatalogueEntry, owner model.Player) model.Chest {
	n := int(randRange(1, 2))
	weightFn := func(r model.Rarity) float64 {
		if r == model.RarityCommon {
			return r.Weight()
		}
		return r.Weight() * 2
	}
	draws := rollTanks(catalogue, owner, n, weightFn, 5, 7)

	return model.Chest{
		Name:     model.ChestStarter,
		Coins:    randRange(40, 60),
		Diamonds: randRange(2, 5),
		Loot:     sortLoot(draws),
	}
}
