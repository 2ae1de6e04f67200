// Package model holds the persisted and process-wide data types shared by
// every other package: players, owned tanks, the tank/map catalogues and
// chests.
package model

import (
	"fmt"
	"time"
)

// Rarity orders tank catalogue entries for loot weighting and tie-breaks.
// Declaration order is the ordinal used by the loot sort (COMMON < RARE <
// EPIC < MYTHICAL < LEGENDARY).
type Rarity int

const (
	RarityCommon Rarity = iota
	RarityRare
	RarityEpic
	RarityMythical
	RarityLegendary
)

// Weight returns the base drop weight for the rarity.
func (r Rarity) Weight() float64 {
	switch r {
	case RarityCommon:
		return 60
	case RarityRare:
		return 15
	case RarityEpic:
		return 2
	case RarityMythical:
		return 0.15
	case RarityLegendary:
		return 0.015
	default:
		return 0
	}
}

func (r Rarity) String() string {
	switch r {
	case RarityCommon:
		return "COMMON"
	case RarityRare:
		return "RARE"
	case RarityEpic:
		return "EPIC"
	case RarityMythical:
		return "MYTHICAL"
	case RarityLegendary:
		return "LEGENDARY"
	default:
		return "UNKNOWN"
	}
}

// Tank is an owned instance of a catalogue entry.
type Tank struct {
	ID    int32 `json:"id"`
	Level int32 `json:"level"` // >= 1
	Count int32 `json:"count"` // spare parts, >= 0
}

// DailyItem is one of the four rotating shop offers.
type DailyItem struct {
	Price  int32 `json:"price"`
	TankID int32 `json:"tankId"`
	Count  int32 `json:"count"`
	Bought bool  `json:"bought"`
}

// Player is the persisted record for one account.
//
// Invariants: ID is immutable once assigned. Nickname, when present, is
// unique across all players. Trophies never go negative.
type Player struct {
	ID        int64  `json:"id"`
	MachineID string `json:"-"`

	RegisteredAt time.Time `json:"registeredAt"`
	LastOnlineAt time.Time `json:"lastOnlineAt"`

	Nickname string `json:"nickname"`

	Battles      int32 `json:"battles"`
	Victories    int32 `json:"victories"`
	XP           int64 `json:"xp"`
	Rank         int32 `json:"rank"`
	Accuracy     float64 `json:"accuracy"`
	DamageDealt  int64 `json:"damageDealt"`
	DamageTaken  int64 `json:"damageTaken"`
	Trophies     int32 `json:"trophies"`

	Coins    int64 `json:"-"`
	Diamonds int64 `json:"-"`

	DailyItemsTime time.Time   `json:"-"`
	DailyItems     []DailyItem `json:"-"`

	Tanks        []Tank   `json:"tanks"`
	FriendsNicks []string `json:"friendsNicks"`
}

// Redacted returns a copy of p with owner-only fields zeroed, suitable for
// replying to a PlayerProfileRequest issued by someone other than p.
func (p Player) Redacted() Player {
	out := p
	out.Coins = 0
	out.Diamonds = 0
	out.DailyItemsTime = time.Time{}
	out.DailyItems = nil
	return out
}

// Efficiency is the battle-outcome multiplier used for reward computation.
// It is finite and non-negative, and exactly 0 when any ratio has a zero
// denominator.
func (p Player) Efficiency(shots, succeededShots, damageDealt, damageTaken int64) float64 {
	if shots <= 0 || damageTaken <= 0 {
		return 0
	}
	acc := float64(succeededShots) / float64(shots)
	ratio := float64(damageDealt) / float64(damageTaken)
	return (acc + 0.5) * ratio
}

// OwnsTank reports whether the player already owns the given catalogue id,
// returning the owned Tank when true.
func (p Player) OwnsTank(catalogueID int32) (Tank, bool) {
	for _, t := range p.Tanks {
		if t.ID == catalogueID {
			return t, true
		}
	}
	return Tank{}, false
}

// UpgradeCost returns the spare-part cost of raising level from L to L+1.
func UpgradeCost(level int32) int64 {
	return int64(50) * (int64(1) << uint(level-1))
}

// ValidateNickname reports whether nick satisfies the server's nickname
// policy: starts with a letter, 6-15 word characters total.
func ValidateNickname(nick string) error {
	if !nicknameRegex.MatchString(nick) {
		return fmt.Errorf("nickname %q does not satisfy policy", nick)
	}
	return nil
}
