package loot

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/tankwars/server/internal/model"
)

// dailyRarities is the fixed rarity order for the four rotating shop slots.
var dailyRarities = [4]model.Rarity{
	model.RarityCommon,
	model.RarityRare,
	model.RarityEpic,
	model.RarityMythical,
}

// GenerateDailyItems rolls the four daily shop offers, one per rarity in
// {COMMON, RARE, EPIC, MYTHICAL}.
func GenerateDailyItems(catalogue []model.TankCatalogueEntry, owner model.Player) []model.DailyItem {
	items := make([]model.DailyItem, 0, len(dailyRarities))
	for _, rarity := range dailyRarities {
		entry, ok := pickByRarity(catalogue, rarity)
		if !ok {
			continue
		}
		items = append(items, dailyItemFor(entry, owner))
	}
	return items
}

// pickByRarity selects a uniformly random catalogue entry of the given
// rarity.
func pickByRarity(catalogue []model.TankCatalogueEntry, rarity model.Rarity) (model.TankCatalogueEntry, bool) {
	var candidates []model.TankCatalogueEntry
	for _, e := range catalogue {
		if e.Characteristics.Rarity == rarity {
			candidates = append(candidates, e)
		}
	}
	if len(candidates) == 0 {
		return model.TankCatalogueEntry{}, false
	}
	return candidates[rand.IntN(len(candidates))], true
}

// dailyItemFor prices a single daily offer for entry against owner's
// current collection.
func dailyItemFor(entry model.TankCatalogueEntry, owner model.Player) model.DailyItem {
	if _, owned := owner.OwnsTank(entry.ID); owned {
		return model.DailyItem{
			TankID: entry.ID,
			Price:  int32(randRange(40, 50)),
			Count:  int32(randRange(40, 50)),
		}
	}

	base := 60 * math.Sqrt(60/entry.Characteristics.Rarity.Weight())
	price := base + rand.Float64()*(1.1*base-base)
	return model.DailyItem{
		TankID: entry.ID,
		Price:  int32(math.Round(price)),
		Count:  0,
	}
}

// dailyRotationInterval is the minimum time between daily item rotations.
const dailyRotationInterval = 12 * time.Hour

// DailyRotationDue reports whether at least dailyRotationInterval has
// elapsed since lastRotation.
func DailyRotationDue(lastRotation, now time.Time) bool {
	return now.Sub(lastRotation) >= dailyRotationInterval
}
