package model

// ChestName identifies a chest tier. Its numeric value doubles as the coin
// price threshold for purchasing that tier (STARTER is never purchased —
// it is awarded once on first nickname set).
type ChestName int32

const (
	ChestStarter   ChestName = 0
	ChestCommon    ChestName = 100
	ChestRare      ChestName = 240
	ChestEpic      ChestName = 350
	ChestMythical  ChestName = 500
	ChestLegendary ChestName = 1000
)

func (c ChestName) String() string {
	switch c {
	case ChestStarter:
		return "STARTER"
	case ChestCommon:
		return "COMMON"
	case ChestRare:
		return "RARE"
	case ChestEpic:
		return "EPIC"
	case ChestMythical:
		return "MYTHICAL"
	case ChestLegendary:
		return "LEGENDARY"
	default:
		return "UNKNOWN"
	}
}

// TankDrop is one tank awarded by a chest: either a brand-new tank (Count==0
// meaning "new at level 1") or spare parts added to an already-owned tank.
type TankDrop struct {
	TankID int32 `json:"tankId"`
	Count  int32 `json:"count"` // spare parts dropped; 0 means "new tank at level 1"
}

// Chest is the result of a loot roll: a name, awarded currencies, and tank
// drops.
type Chest struct {
	Name     ChestName  `json:"name"`
	Coins    int64      `json:"coins"`
	Diamonds int64      `json:"diamonds"`
	Loot     []TankDrop `json:"loot"`
}

// AddToPlayer applies the chest's rewards to p in place: credits coins and
// diamonds, and for each drop either adds spare parts to an owned tank or
// appends a new tank at level 1.
func (c Chest) AddToPlayer(p *Player) {
	p.Coins += c.Coins
	p.Diamonds += c.Diamonds

	for _, drop := range c.Loot {
		if owned, ok := p.OwnsTank(drop.TankID); ok {
			for i := range p.Tanks {
				if p.Tanks[i].ID == owned.ID {
					p.Tanks[i].Count += drop.Count
					break
				}
			}
			continue
		}
		p.Tanks = append(p.Tanks, Tank{ID: drop.TankID, Level: 1, Count: 0})
	}
}
