package model

import "regexp"

// nicknameRegex implements the server-wide nickname policy: a letter
// followed by 5-14 word characters (total length 6-15).
var nicknameRegex = regexp.MustCompile(`^[A-Za-z]\w{5,14}$`)

// TankGraphics describes the sprite/offset triple used to render a tank and
// to place its gun muzzle when computing bullet spawn points.
type TankGraphics struct {
	GunName    string  `json:"gunName"`
	BodyName   string  `json:"bodyName"`
	BulletName string  `json:"bulletName"`
	GunOffsetX float64 `json:"gunOffsetX"`
	GunOffsetY float64 `json:"gunOffsetY"`
}

// TankCharacteristics holds the physical tuning of a tank catalogue entry.
type TankCharacteristics struct {
	Name               string  `json:"name"`
	Rarity             Rarity  `json:"rarity"`
	HP                 float64 `json:"hp"`
	GunRotateDegrees   float64 `json:"gunRotateDegrees"`
	BodyRotateDegrees  float64 `json:"bodyRotateDegrees"`
	Velocity           float64 `json:"velocity"`
	ReloadingSeconds   float64 `json:"reloading"`
	BulletSpeed        float64 `json:"bulletSpeed"`
	Damage             float64 `json:"damage"`
}

// TankCatalogueEntry is a process-wide, immutable-after-load description of
// one tank model.
type TankCatalogueEntry struct {
	ID              int32               `json:"id"`
	Graphics        TankGraphics        `json:"graphics"`
	Characteristics TankCharacteristics `json:"characteristics"`
}

// MapObject is one placed prop on a Map: a catalogue id, position, uniform
// scale and rotation (radians).
type MapObject struct {
	ID       int32   `json:"id"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Scale    float64 `json:"scale"`
	Rotation float64 `json:"rotation"`
}

// Map is a process-wide, immutable battle arena.
type Map struct {
	Name      string      `json:"name"`
	Width     float64     `json:"width"`
	Height    float64     `json:"height"`
	Player1Y  float64     `json:"player1Y"`
	Player2Y  float64     `json:"player2Y"`
	Objects   []MapObject `json:"objects"`
}
