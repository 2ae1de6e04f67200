package battle

import (
	"math"
	"testing"
)

func TestUserDataBitsRoundTrip(t *testing.T) {
	cases := []UserData{
		{Kind: BodyTank, PlayerID: 42},
		{Kind: BodyBullet, PlayerID: -7},
		{Kind: BodyTank, PlayerID: 0},
		{Kind: BodyOther, PlayerID: 0},
		{Kind: BodyBullet, PlayerID: math.MinInt64},
		{Kind: BodyTank, PlayerID: math.MaxInt64},
		{Kind: BodyTank, PlayerID: 1},
		{Kind: BodyBullet, PlayerID: -1},
	}
	for _, want := range cases {
		lo, hi := want.ToBits()
		got := UserDataFromBits(lo, hi)
		if got != want {
			t.Errorf("round trip mismatch: want %+v, got %+v", want, got)
		}
	}
}
