package model

import "testing"

func TestValidateNickname(t *testing.T) {
	tests := []struct {
		name string
		nick string
		ok   bool
	}{
		{"min valid", "Abcde1", true},
		{"underscore", "player_01", true},
		{"max length 15", "XxXxXxXxXxXxXxX", true},
		{"too short", "abc", false},
		{"starts with digit", "1abcdef", false},
		{"too long 16", "ZZZZZZZZZZZZZZZZ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNickname(tt.nick)
			if (err == nil) != tt.ok {
				t.Errorf("ValidateNickname(%q) error = %v, want ok=%v", tt.nick, err, tt.ok)
			}
		})
	}
}

func TestUpgradeCost(t *testing.T) {
	tests := []struct {
		level int32
		want  int64
	}{
		{1, 50},
		{2, 100},
		{3, 200},
		{5, 800},
	}
	for _, tt := range tests {
		if got := UpgradeCost(tt.level); got != tt.want {
			t.Errorf("UpgradeCost(%d) = %d, want %d", tt.level, got, tt.want)
		}
	}
}

func TestEfficiencyZeroDenominators(t *testing.T) {
	var p Player
	if got := p.Efficiency(0, 0, 10, 10); got != 0 {
		t.Errorf("Efficiency with zero shots = %v, want 0", got)
	}
	if got := p.Efficiency(10, 5, 10, 0); got != 0 {
		t.Errorf("Efficiency with zero damageTaken = %v, want 0", got)
	}
}

func TestEfficiencyFinite(t *testing.T) {
	var p Player
	got := p.Efficiency(10, 5, 100, 50)
	want := (0.5 + 0.5) * 2.0
	if got != want {
		t.Errorf("Efficiency = %v, want %v", got, want)
	}
}

func TestChestAddToPlayer(t *testing.T) {
	p := &Player{Coins: 10, Diamonds: 1, Tanks: []Tank{{ID: 1, Level: 1, Count: 5}}}
	c := Chest{
		Name:     ChestCommon,
		Coins:    30,
		Diamonds: 2,
		Loot: []TankDrop{
			{TankID: 1, Count: 40}, // owned -> spare parts
			{TankID: 2, Count: 0},  // new tank
		},
	}
	c.AddToPlayer(p)

	if p.Coins != 40 {
		t.Errorf("Coins = %d, want 40", p.Coins)
	}
	if p.Diamonds != 3 {
		t.Errorf("Diamonds = %d, want 3", p.Diamonds)
	}
	owned, ok := p.OwnsTank(1)
	if !ok || owned.Count != 45 {
		t.Errorf("tank 1 count = %+v, want Count=45", owned)
	}
	newTank, ok := p.OwnsTank(2)
	if !ok || newTank.Level != 1 {
		t.Errorf("tank 2 = %+v, want new tank at level 1", newTank)
	}
}
