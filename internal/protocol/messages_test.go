package protocol

import (
	"reflect"
	"testing"

	"github.com/tankwars/server/internal/model"
)

func roundTrip(t *testing.T, msg Message) Message {
	t.Helper()
	data := Encode(msg)
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return got
}

func TestSignInRequestRoundTrip(t *testing.T) {
	want := SignInRequest{OSID: "machine-1", ClientID: 42, HasID: true}
	got := roundTrip(t, want)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("roundtrip = %+v, want %+v", got, want)
	}
}

func TestSignInRequestWithoutClientID(t *testing.T) {
	want := SignInRequest{OSID: "machine-1", HasID: false}
	got := roundTrip(t, want).(SignInRequest)
	if got.HasID || got.OSID != want.OSID {
		t.Errorf("roundtrip = %+v, want %+v", got, want)
	}
}

func TestSignInResponseRoundTrip(t *testing.T) {
	want := SignInResponse{
		ClientID: 7, HasID: true, HasProfile: true,
		Profile: model.Player{
			ID:       7,
			Nickname: "Hero01",
			Tanks:    []model.Tank{{ID: 1, Level: 2, Count: 3}},
			DailyItems: []model.DailyItem{
				{Price: 40, TankID: 2, Count: 0, Bought: false},
			},
		},
	}
	got := roundTrip(t, want)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("roundtrip = %+v, want %+v", got, want)
	}
}

func TestGamePacketRoundTrip(t *testing.T) {
	want := GamePacket{
		TimeLeft: 120,
		MyData: GamePlayerData{
			X: 1.5, Y: -2.25, BodyRotation: 0.5, GunRotation: 1.2, HP: 80, CoolDown: 0,
			Bullets: []BulletData{{X: 10, Y: 20, Rotation: 0.1}},
		},
		// Decoders always return non-nil slices, so an empty bullet list
		// comes back as an empty slice rather than nil.
		OpponentData: GamePlayerData{X: 3, Y: 4, HP: 100, Bullets: []BulletData{}},
	}
	got := roundTrip(t, want)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("roundtrip = %+v, want %+v", got, want)
	}
}

func TestPlayerPositionRoundTrip(t *testing.T) {
	want := PlayerPosition{BodyRotation: 1.1, GunRotation: 2.2, Moving: true}
	got := roundTrip(t, want)
	if got != want {
		t.Errorf("roundtrip = %+v, want %+v", got, want)
	}
}

func TestGetChestResponseRoundTrip(t *testing.T) {
	want := GetChestResponse{
		HasChest: true,
		Chest: model.Chest{
			Name: model.ChestStarter, Coins: 50, Diamonds: 3,
			Loot: []model.TankDrop{{TankID: 1, Count: 0}, {TankID: 2, Count: 6}},
		},
	}
	got := roundTrip(t, want)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("roundtrip = %+v, want %+v", got, want)
	}
}

func TestDecodeUnknownTag(t *testing.T) {
	_, err := Decode([]byte{0xFF})
	if err == nil {
		t.Error("expected error decoding unknown tag")
	}
}

