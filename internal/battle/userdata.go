package battle

// BodyKind distinguishes the rigid-body categories a match simulates:
// tanks, bullets, and material map-object terrain (BodyOther).
type BodyKind uint64

const (
	BodyTank BodyKind = iota
	BodyBullet
	BodyOther
)

// UserData is the payload invariant 1 requires every tank/bullet rigid body
// to carry: which kind of body it is, and the id of the player it belongs
// to. The original physics engine packs this into a single 128-bit
// user_data field (low 64 bits: body type, high 64 bits: player id); Go has
// no native 128-bit integer, so ToBits/FromBits expose the same two-word
// layout explicitly instead of reaching for a bignum package no example in
// the corpus imports.
type UserData struct {
	Kind     BodyKind
	PlayerID int64
}

// ToBits returns the (low, high) 64-bit halves of the 128-bit encoding.
func (u UserData) ToBits() (lo, hi uint64) {
	return uint64(u.Kind), uint64(u.PlayerID)
}

// UserDataFromBits reconstructs a UserData from its (low, high) halves.
func UserDataFromBits(lo, hi uint64) UserData {
	return UserData{Kind: BodyKind(lo), PlayerID: int64(hi)}
}
