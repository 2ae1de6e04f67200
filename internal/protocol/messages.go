package protocol

import (
	"fmt"

	"github.com/tankwars/server/internal/model"
)

// Tag identifies the concrete message carried by an encoded frame: a
// one-byte discriminant prefixing every encoded payload, making the whole
// wire format a tagged union.
type Tag byte

const (
	TagSignInRequest Tag = iota + 1
	TagSignInResponse
	TagFilesSyncRequest
	TagFilesSyncResponse
	TagPlayerProfileRequest
	TagPlayerProfileResponse
	TagSetNicknameRequest
	TagSetNicknameResponse
	TagGetChestRequest
	TagGetChestResponse
	TagUpgradeTankRequest
	TagUpgradeTankResponse
	TagGetDailyItemsRequest
	TagGetDailyItemsResponse
	TagGetDailyItemRequest
	TagGetDailyItemResponse
	TagJoinMatchMakerRequest
	TagLeaveMatchMakerRequest
	TagShoot
	TagMapFoundResponse
	TagBattleResultResponse
	TagExplosion
	TagPlayerPosition
	TagGamePacket
)

// Message is implemented by every concrete wire type.
type Message interface {
	Tag() Tag
	encode(w *Writer)
}

// Encode prefixes msg's own encoding with its tag byte, producing the bytes
// ready to hand to WriteFrame/WriteFrame-equivalent datagram send.
func Encode(msg Message) []byte {
	w := NewWriter(128)
	w.WriteByte(byte(msg.Tag()))
	msg.encode(w)
	return w.Bytes()
}

// Decode reads the tag byte and dispatches to the matching decoder. This is
// the decode half of the dispatcher's tagged-union contract (4.C): decode
// positions are stable regardless of which variant follows the tag, so a
// truncated buffer simply fails need() rather than misinterpreting bytes.
func Decode(data []byte) (Message, error) {
	r := NewReader(data)
	tagByte, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("decoding tag: %w", err)
	}
	tag := Tag(tagByte)

	dec, ok := decoders[tag]
	if !ok {
		return nil, fmt.Errorf("protocol: unknown tag %d", tag)
	}
	return dec(r)
}

var decoders = map[Tag]func(*Reader) (Message, error){
	TagSignInRequest:         decodeSignInRequest,
	TagSignInResponse:        decodeSignInResponse,
	TagFilesSyncRequest:      decodeFilesSyncRequest,
	TagFilesSyncResponse:     decodeFilesSyncResponse,
	TagPlayerProfileRequest:  decodePlayerProfileRequest,
	TagPlayerProfileResponse: decodePlayerProfileResponse,
	TagSetNicknameRequest:    decodeSetNicknameRequest,
	TagSetNicknameResponse:   decodeSetNicknameResponse,
	TagGetChestRequest:       decodeGetChestRequest,
	TagGetChestResponse:      decodeGetChestResponse,
	TagUpgradeTankRequest:    decodeUpgradeTankRequest,
	TagUpgradeTankResponse:   decodeUpgradeTankResponse,
	TagGetDailyItemsRequest:  decodeGetDailyItemsRequest,
	TagGetDailyItemsResponse: decodeGetDailyItemsResponse,
	TagGetDailyItemRequest:   decodeGetDailyItemRequest,
	TagGetDailyItemResponse:  decodeGetDailyItemResponse,
	TagJoinMatchMakerRequest: decodeJoinMatchMakerRequest,
	TagLeaveMatchMakerRequest: decodeLeaveMatchMakerRequest,
	TagShoot:                 decodeShoot,
	TagMapFoundResponse:      decodeMapFoundResponse,
	TagBattleResultResponse:  decodeBattleResultResponse,
	TagExplosion:             decodeExplosion,
	TagPlayerPosition:        decodePlayerPosition,
	TagGamePacket:            decodeGamePacket,
}

// ---- SignInRequest / SignInResponse ----

type SignInRequest struct {
	OSID     string
	ClientID int64
	HasID    bool
}

func (SignInRequest) Tag() Tag { return TagSignInRequest }
func (m SignInRequest) encode(w *Writer) {
	w.WriteString(m.OSID)
	w.WriteOptInt64(m.ClientID, m.HasID)
}
func decodeSignInRequest(r *Reader) (Message, error) {
	osID, err := r.ReadString()
	if err != nil {
		return nil, err
	}
	id, has, err := r.ReadOptInt64()
	if err != nil {
		return nil, err
	}
	return SignInRequest{OSID: osID, ClientID: id, HasID: has}, nil
}

type SignInResponse struct {
	ClientID   int64
	HasID      bool
	Profile    model.Player
	HasProfile bool
}

func (SignInResponse) Tag() Tag { return TagSignInResponse }
func (m SignInResponse) encode(w *Writer) {
	w.WriteOptInt64(m.ClientID, m.HasID)
	w.WriteBool(m.HasProfile)
	if m.HasProfile {
		encodePlayer(w, m.Profile)
	}
}
func decodeSignInResponse(r *Reader) (Message, error) {
	id, has, err := r.ReadOptInt64()
	if err != nil {
		return nil, err
	}
	hasProfile, err := r.ReadBool()
	if err != nil {
		return nil, err
	}
	var profile model.Player
	if hasProfile {
		profile, err = decodePlayer(r)
		if err != nil {
			return nil, err
		}
	}
	return SignInResponse{ClientID: id, HasID: has, Profile: profile, HasProfile: hasProfile}, nil
}

// ---- FilesSyncRequest / FilesSyncResponse ----

type FilesSyncRequest struct {
	FileSignatures map[string]uint32
}

func (FilesSyncRequest) Tag() Tag { return TagFilesSyncRequest }
func (m FilesSyncRequest) encode(w *Writer) {
	w.WriteUint16(uint16(len(m.FileSignatures)))
	for path, sig := range m.FileSignatures {
		w.WriteString(path)
		w.WriteInt32(int32(sig))
	}
}
func decodeFilesSyncRequest(r *Reader) (Message, error) {
	n, err := r.ReadUint16()
	if err != nil {
		return nil, err
	}
	out := make(map[string]uint32, n)
	for i := 0; i < int(n); i++ {
		path, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		sig, err := r.ReadInt32()
		if err != nil {
			return nil, err
		}
		out[path] = uint32(sig)
	}
	return FilesSyncRequest{FileSignatures: out}, nil
}

type FilePatch struct {
	Path  string
	Patch []byte
}

type FilesSyncResponse struct {
	Patches []FilePatch
}

func (FilesSyncResponse) Tag() Tag { return TagFilesSyncResponse }
func (m FilesSyncResponse) encode(w *Writer) {
	w.WriteUint16(uint16(len(m.Patches)))
	for _, p := range m.Patches {
		w.WriteString(p.Path)
		w.WriteInt32(int32(len(p.Patch)))
		w.buf = append(w.buf, p.Patch...)
	}
}
func decodeFilesSyncResponse(r *Reader) (Message, error) {
	n, err := r.ReadUint16()
	if err != nil {
		return nil, err
	}
	out := make([]FilePatch, 0, n)
	for i := 0; i < int(n); i++ {
		path, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		plen, err := r.ReadInt32()
		if err != nil {
			return nil, err
		}
		data, err := r.readRaw(int(plen))
		if err != nil {
			return nil, err
		}
		out = append(out, FilePatch{Path: path, Patch: data})
	}
	return FilesSyncResponse{Patches: out}, nil
}

// readRaw is an internal helper for variable-length binary blobs that are
// not UTF-8 strings (patch bodies).
func (r *Reader) readRaw(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("protocol: negative length %d", n)
	}
	if err := r.need(n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, r.data[r.pos:r.pos+n])
	r.pos += n
	return out, nil
}

// ---- PlayerProfileRequest / PlayerProfileResponse ----

type PlayerProfileRequest struct {
	Nickname string
}

func (PlayerProfileRequest) Tag() Tag { return TagPlayerProfileRequest }
func (m PlayerProfileRequest) encode(w *Writer) { w.WriteString(m.Nickname) }
func decodePlayerProfileRequest(r *Reader) (Message, error) {
	nick, err := r.ReadString()
	if err != nil {
		return nil, err
	}
	return PlayerProfileRequest{Nickname: nick}, nil
}

type PlayerProfileResponse struct {
	Profile model.Player
	Found   bool
}

func (PlayerProfileResponse) Tag() Tag { return TagPlayerProfileResponse }
func (m PlayerProfileResponse) encode(w *Writer) {
	w.WriteBool(m.Found)
	if m.Found {
		encodePlayer(w, m.Profile)
	}
}
func decodePlayerProfileResponse(r *Reader) (Message, error) {
	found, err := r.ReadBool()
	if err != nil {
		return nil, err
	}
	var p model.Player
	if found {
		p, err = decodePlayer(r)
		if err != nil {
			return nil, err
		}
	}
	return PlayerProfileResponse{Profile: p, Found: found}, nil
}

// ---- SetNicknameRequest / SetNicknameResponse ----

type SetNicknameRequest struct {
	Nickname string
}

func (SetNicknameRequest) Tag() Tag            { return TagSetNicknameRequest }
func (m SetNicknameRequest) encode(w *Writer)  { w.WriteString(m.Nickname) }
func decodeSetNicknameRequest(r *Reader) (Message, error) {
	nick, err := r.ReadString()
	if err != nil {
		return nil, err
	}
	return SetNicknameRequest{Nickname: nick}, nil
}

type SetNicknameResponse struct {
	Error    string
	HasError bool
}

func (SetNicknameResponse) Tag() Tag { return TagSetNicknameResponse }
func (m SetNicknameResponse) encode(w *Writer) { w.WriteOptString(m.Error, m.HasError) }
func decodeSetNicknameResponse(r *Reader) (Message, error) {
	errStr, has, err := r.ReadOptString()
	if err != nil {
		return nil, err
	}
	return SetNicknameResponse{Error: errStr, HasError: has}, nil
}

// ---- GetChestRequest / GetChestResponse ----

type GetChestRequest struct {
	Name model.ChestName
}

func (GetChestRequest) Tag() Tag           { return TagGetChestRequest }
func (m GetChestRequest) encode(w *Writer) { w.WriteInt32(int32(m.Name)) }
func decodeGetChestRequest(r *Reader) (Message, error) {
	n, err := r.ReadInt32()
	if err != nil {
		return nil, err
	}
	return GetChestRequest{Name: model.ChestName(n)}, nil
}

type GetChestResponse struct {
	Chest    model.Chest
	HasChest bool
	Error    string
	HasError bool
}

func (GetChestResponse) Tag() Tag { return TagGetChestResponse }
func (m GetChestResponse) encode(w *Writer) {
	w.WriteBool(m.HasChest)
	if m.HasChest {
		encodeChest(w, m.Chest)
	}
	w.WriteOptString(m.Error, m.HasError)
}
func decodeGetChestResponse(r *Reader) (Message, error) {
	hasChest, err := r.ReadBool()
	if err != nil {
		return nil, err
	}
	var c model.Chest
	if hasChest {
		c, err = decodeChest(r)
		if err != nil {
			return nil, err
		}
	}
	errStr, hasErr, err := r.ReadOptString()
	if err != nil {
		return nil, err
	}
	return GetChestResponse{Chest: c, HasChest: hasChest, Error: errStr, HasError: hasErr}, nil
}

// ---- UpgradeTankRequest / UpgradeTankResponse ----

type UpgradeTankRequest struct {
	TankID int32
}

func (UpgradeTankRequest) Tag() Tag           { return TagUpgradeTankRequest }
func (m UpgradeTankRequest) encode(w *Writer) { w.WriteInt32(m.TankID) }
func decodeUpgradeTankRequest(r *Reader) (Message, error) {
	id, err := r.ReadInt32()
	if err != nil {
		return nil, err
	}
	return UpgradeTankRequest{TankID: id}, nil
}

type UpgradeTankResponse struct {
	Tank     model.Tank
	Error    string
	HasError bool
}

func (UpgradeTankResponse) Tag() Tag { return TagUpgradeTankResponse }
func (m UpgradeTankResponse) encode(w *Writer) {
	encodeTank(w, m.Tank)
	w.WriteOptString(m.Error, m.HasError)
}
func decodeUpgradeTankResponse(r *Reader) (Message, error) {
	tank, err := decodeTank(r)
	if err != nil {
		return nil, err
	}
	errStr, has, err := r.ReadOptString()
	if err != nil {
		return nil, err
	}
	return UpgradeTankResponse{Tank: tank, Error: errStr, HasError: has}, nil
}

// ---- GetDailyItemsRequest / GetDailyItemsResponse ----

type GetDailyItemsRequest struct{}

func (GetDailyItemsRequest) Tag() Tag           { return TagGetDailyItemsRequest }
func (GetDailyItemsRequest) encode(w *Writer)   {}
func decodeGetDailyItemsRequest(r *Reader) (Message, error) {
	return GetDailyItemsRequest{}, nil
}

type GetDailyItemsResponse struct {
	Items []model.DailyItem
}

func (GetDailyItemsResponse) Tag() Tag { return TagGetDailyItemsResponse }
func (m GetDailyItemsResponse) encode(w *Writer) {
	w.WriteByte(byte(len(m.Items)))
	for _, it := range m.Items {
		encodeDailyItem(w, it)
	}
}
func decodeGetDailyItemsResponse(r *Reader) (Message, error) {
	n, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	items := make([]model.DailyItem, 0, n)
	for i := 0; i < int(n); i++ {
		it, err := decodeDailyItem(r)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return GetDailyItemsResponse{Items: items}, nil
}

// ---- GetDailyItemRequest / GetDailyItemResponse ----

type GetDailyItemRequest struct {
	Index int32
}

func (GetDailyItemRequest) Tag() Tag           { return TagGetDailyItemRequest }
func (m GetDailyItemRequest) encode(w *Writer) { w.WriteInt32(m.Index) }
func decodeGetDailyItemRequest(r *Reader) (Message, error) {
	idx, err := r.ReadInt32()
	if err != nil {
		return nil, err
	}
	return GetDailyItemRequest{Index: idx}, nil
}

type GetDailyItemResponse struct {
	Item     model.DailyItem
	Error    string
	HasError bool
}

func (GetDailyItemResponse) Tag() Tag { return TagGetDailyItemResponse }
func (m GetDailyItemResponse) encode(w *Writer) {
	encodeDailyItem(w, m.Item)
	w.WriteOptString(m.Error, m.HasError)
}
func decodeGetDailyItemResponse(r *Reader) (Message, error) {
	item, err := decodeDailyItem(r)
	if err != nil {
		return nil, err
	}
	errStr, has, err := r.ReadOptString()
	if err != nil {
		return nil, err
	}
	return GetDailyItemResponse{Item: item, Error: errStr, HasError: has}, nil
}

// ---- JoinMatchMakerRequest / LeaveMatchMakerRequest ----

type JoinMatchMakerRequest struct {
	TankID int32
}

func (JoinMatchMakerRequest) Tag() Tag           { return TagJoinMatchMakerRequest }
func (m JoinMatchMakerRequest) encode(w *Writer) { w.WriteInt32(m.TankID) }
func decodeJoinMatchMakerRequest(r *Reader) (Message, error) {
	id, err := r.ReadInt32()
	if err != nil {
		return nil, err
	}
	return JoinMatchMakerRequest{TankID: id}, nil
}

type LeaveMatchMakerRequest struct{}

func (LeaveMatchMakerRequest) Tag() Tag         { return TagLeaveMatchMakerRequest }
func (LeaveMatchMakerRequest) encode(w *Writer) {}
func decodeLeaveMatchMakerRequest(r *Reader) (Message, error) {
	return LeaveMatchMakerRequest{}, nil
}

// ---- Shoot ----

type Shoot struct{}

func (Shoot) Tag() Tag         { return TagShoot }
func (Shoot) encode(w *Writer) {}
func decodeShoot(r *Reader) (Message, error) { return Shoot{}, nil }

// ---- MapFoundResponse ----

type MapFoundResponse struct {
	MapName  string
	WaitTime float32
	Initial  GamePacket
}

func (MapFoundResponse) Tag() Tag { return TagMapFoundResponse }
func (m MapFoundResponse) encode(w *Writer) {
	w.WriteString(m.MapName)
	w.WriteFloat32(m.WaitTime)
	m.Initial.encode(w)
}
func decodeMapFoundResponse(r *Reader) (Message, error) {
	name, err := r.ReadString()
	if err != nil {
		return nil, err
	}
	wait, err := r.ReadFloat32()
	if err != nil {
		return nil, err
	}
	gp, err := decodeGamePacketBody(r)
	if err != nil {
		return nil, err
	}
	return MapFoundResponse{MapName: name, WaitTime: wait, Initial: gp}, nil
}

// ---- BattleResultResponse ----

type BattleResult int32

const (
	ResultVictory BattleResult = iota
	ResultDefeat
	ResultDraw
)

type BattleResultResponse struct {
	Profile     model.Player
	Result      BattleResult
	Trophies    int32
	XP          int64
	Coins       int64
	DamageDealt int64
	DamageTaken int64
	Accuracy    float64
	Efficiency  float64
}

func (BattleResultResponse) Tag() Tag { return TagBattleResultResponse }
func (m BattleResultResponse) encode(w *Writer) {
	encodePlayer(w, m.Profile)
	w.WriteInt32(int32(m.Result))
	w.WriteInt32(m.Trophies)
	w.WriteInt64(m.XP)
	w.WriteInt64(m.Coins)
	w.WriteInt64(m.DamageDealt)
	w.WriteInt64(m.DamageTaken)
	w.WriteFloat64(m.Accuracy)
	w.WriteFloat64(m.Efficiency)
}
func decodeBattleResultResponse(r *Reader) (Message, error) {
	p, err := decodePlayer(r)
	if err != nil {
		return nil, err
	}
	result, err := r.ReadInt32()
	if err != nil {
		return nil, err
	}
	trophies, err := r.ReadInt32()
	if err != nil {
		return nil, err
	}
	xp, err := r.ReadInt64()
	if err != nil {
		return nil, err
	}
	coins, err := r.ReadInt64()
	if err != nil {
		return nil, err
	}
	dealt, err := r.ReadInt64()
	if err != nil {
		return nil, err
	}
	taken, err := r.ReadInt64()
	if err != nil {
		return nil, err
	}
	acc, err := r.ReadFloat64()
	if err != nil {
		return nil, err
	}
	eff, err := r.ReadFloat64()
	if err != nil {
		return nil, err
	}
	return BattleResultResponse{
		Profile: p, Result: BattleResult(result), Trophies: trophies, XP: xp, Coins: coins,
		DamageDealt: dealt, DamageTaken: taken, Accuracy: acc, Efficiency: eff,
	}, nil
}

// ---- Explosion ----

type Explosion struct {
	X, Y float32
	Hit  bool
}

func (Explosion) Tag() Tag { return TagExplosion }
func (m Explosion) encode(w *Writer) {
	w.WriteFloat32(m.X)
	w.WriteFloat32(m.Y)
	w.WriteBool(m.Hit)
}
func decodeExplosion(r *Reader) (Message, error) {
	x, err := r.ReadFloat32()
	if err != nil {
		return nil, err
	}
	y, err := r.ReadFloat32()
	if err != nil {
		return nil, err
	}
	hit, err := r.ReadBool()
	if err != nil {
		return nil, err
	}
	return Explosion{X: x, Y: y, Hit: hit}, nil
}

// ---- PlayerPosition (client->server datagram) ----

type PlayerPosition struct {
	BodyRotation float32
	GunRotation  float32
	Moving       bool
}

func (PlayerPosition) Tag() Tag { return TagPlayerPosition }
func (m PlayerPosition) encode(w *Writer) {
	w.WriteFloat32(m.BodyRotation)
	w.WriteFloat32(m.GunRotation)
	w.WriteBool(m.Moving)
}
func decodePlayerPosition(r *Reader) (Message, error) {
	body, err := r.ReadFloat32()
	if err != nil {
		return nil, err
	}
	gun, err := r.ReadFloat32()
	if err != nil {
		return nil, err
	}
	moving, err := r.ReadBool()
	if err != nil {
		return nil, err
	}
	return PlayerPosition{BodyRotation: body, GunRotation: gun, Moving: moving}, nil
}

// ---- GamePacket (server->client datagram) ----

type BulletData struct {
	X, Y, Rotation float32
}

type GamePlayerData struct {
	X, Y         float32
	BodyRotation float32
	GunRotation  float32
	HP           uint16
	CoolDown     float32
	Bullets      []BulletData
}

type GamePacket struct {
	TimeLeft    uint16
	MyData      GamePlayerData
	OpponentData GamePlayerData
}

func (GamePacket) Tag() Tag { return TagGamePacket }
func (m GamePacket) encode(w *Writer) {
	w.WriteUint16(m.TimeLeft)
	encodePlayerData(w, m.MyData)
	encodePlayerData(w, m.OpponentData)
}
func decodeGamePacket(r *Reader) (Message, error) {
	return decodeGamePacketBody(r)
}
func decodeGamePacketBody(r *Reader) (GamePacket, error) {
	timeLeft, err := r.ReadUint16()
	if err != nil {
		return GamePacket{}, err
	}
	mine, err := decodePlayerData(r)
	if err != nil {
		return GamePacket{}, err
	}
	opp, err := decodePlayerData(r)
	if err != nil {
		return GamePacket{}, err
	}
	return GamePacket{TimeLeft: timeLeft, MyData: mine, OpponentData: opp}, nil
}

func encodePlayerData(w *Writer, d GamePlayerData) {
	w.WriteFloat32(d.X)
	w.WriteFloat32(d.Y)
	w.WriteFloat32(d.BodyRotation)
	w.WriteFloat32(d.GunRotation)
	w.WriteUint16(d.HP)
	w.WriteFloat32(d.CoolDown)
	w.WriteByte(byte(len(d.Bullets)))
	for _, b := range d.Bullets {
		w.WriteFloat32(b.X)
		w.WriteFloat32(b.Y)
		w.WriteFloat32(b.Rotation)
	}
}

func decodePlayerData(r *Reader) (GamePlayerData, error) {
	var d GamePlayerData
	var err error
	if d.X, err = r.ReadFloat32(); err != nil {
		return d, err
	}
	if d.Y, err = r.ReadFloat32(); err != nil {
		return d, err
	}
	if d.BodyRotation, err = r.ReadFloat32(); err != nil {
		return d, err
	}
	if d.GunRotation, err = r.ReadFloat32(); err != nil {
		return d, err
	}
	if d.HP, err = r.ReadUint16(); err != nil {
		return d, err
	}
	if d.CoolDown, err = r.ReadFloat32(); err != nil {
		return d, err
	}
	n, err := r.ReadByte()
	if err != nil {
		return d, err
	}
	d.Bullets = make([]BulletData, 0, n)
	for i := 0; i < int(n); i++ {
		var b BulletData
		if b.X, err = r.ReadFloat32(); err != nil {
			return d, err
		}
		if b.Y, err = r.ReadFloat32(); err != nil {
			return d, err
		}
		if b.Rotation, err = r.ReadFloat32(); err != nil {
			return d, err
		}
		d.Bullets = append(d.Bullets, b)
	}
	return d, nil
}

// ---- shared model codecs ----

func encodePlayer(w *Writer, p model.Player) {
	w.WriteInt64(p.ID)
	w.WriteString(p.Nickname)
	w.WriteInt32(p.Battles)
	w.WriteInt32(p.Victories)
	w.WriteInt64(p.XP)
	w.WriteInt32(p.Rank)
	w.WriteFloat64(p.Accuracy)
	w.WriteInt64(p.DamageDealt)
	w.WriteInt64(p.DamageTaken)
	w.WriteInt32(p.Trophies)
	w.WriteInt64(p.Coins)
	w.WriteInt64(p.Diamonds)
	w.WriteByte(byte(len(p.Tanks)))
	for _, t := range p.Tanks {
		encodeTank(w, t)
	}
	w.WriteByte(byte(len(p.DailyItems)))
	for _, it := range p.DailyItems {
		encodeDailyItem(w, it)
	}
}

func decodePlayer(r *Reader) (model.Player, error) {
	var p model.Player
	var err error
	if p.ID, err = r.ReadInt64(); err != nil {
		return p, err
	}
	if p.Nickname, err = r.ReadString(); err != nil {
		return p, err
	}
	if p.Battles, err = r.ReadInt32(); err != nil {
		return p, err
	}
	if p.Victories, err = r.ReadInt32(); err != nil {
		return p, err
	}
	if p.XP, err = r.ReadInt64(); err != nil {
		return p, err
	}
	if p.Rank, err = r.ReadInt32(); err != nil {
		return p, err
	}
	if p.Accuracy, err = r.ReadFloat64(); err != nil {
		return p, err
	}
	if p.DamageDealt, err = r.ReadInt64(); err != nil {
		return p, err
	}
	if p.DamageTaken, err = r.ReadInt64(); err != nil {
		return p, err
	}
	if p.Trophies, err = r.ReadInt32(); err != nil {
		return p, err
	}
	if p.Coins, err = r.ReadInt64(); err != nil {
		return p, err
	}
	if p.Diamonds, err = r.ReadInt64(); err != nil {
		return p, err
	}
	nTanks, err := r.ReadByte()
	if err != nil {
		return p, err
	}
	p.Tanks = make([]model.Tank, 0, nTanks)
	for i := 0; i < int(nTanks); i++ {
		t, err := decodeTank(r)
		if err != nil {
			return p, err
		}
		p.Tanks = append(p.Tanks, t)
	}
	nItems, err := r.ReadByte()
	if err != nil {
		return p, err
	}
	p.DailyItems = make([]model.DailyItem, 0, nItems)
	for i := 0; i < int(nItems); i++ {
		it, err := decodeDailyItem(r)
		if err != nil {
			return p, err
		}
		p.DailyItems = append(p.DailyItems, it)
	}
	return p, nil
}

func encodeTank(w *Writer, t model.Tank) {
	w.WriteInt32(t.ID)
	w.WriteInt32(t.Level)
	w.WriteInt32(t.Count)
}

func decodeTank(r *Reader) (model.Tank, error) {
	var t model.Tank
	var err error
	if t.ID, err = r.ReadInt32(); err != nil {
		return t, err
	}
	if t.Level, err = r.ReadInt32(); err != nil {
		return t, err
	}
	if t.Count, err = r.ReadInt32(); err != nil {
		return t, err
	}
	return t, nil
}

func encodeDailyItem(w *Writer, it model.DailyItem) {
	w.WriteInt32(it.Price)
	w.WriteInt32(it.TankID)
	w.WriteInt32(it.Count)
	w.WriteBool(it.Bought)
}

func decodeDailyItem(r *Reader) (model.DailyItem, error) {
	var it model.DailyItem
	var err error
	if it.Price, err = r.ReadInt32(); err != nil {
		return it, err
	}
	if it.TankID, err = r.ReadInt32(); err != nil {
		return it, err
	}
	if it.Count, err = r.ReadInt32(); err != nil {
		return it, err
	}
	if it.Bought, err = r.ReadBool(); err != nil {
		return it, err
	}
	return it, nil
}

func encodeChest(w *Writer, c model.Chest) {
	w.WriteInt32(int32(c.Name))
	w.WriteInt64(c.Coins)
	w.WriteInt64(c.Diamonds)
	w.WriteByte(byte(len(c.Loot)))
	for _, drop := range c.Loot {
		w.WriteInt32(drop.TankID)
		w.WriteInt32(drop.Count)
	}
}

func decodeChest(r *Reader) (model.Chest, error) {
	var c model.Chest
	name, err := r.ReadInt32()
	if err != nil {
		return c, err
	}
	c.Name = model.ChestName(name)
	if c.Coins, err = r.ReadInt64(); err != nil {
		return c, err
	}
	if c.Diamonds, err = r.ReadInt64(); err != nil {
		return c, err
	}
	n, err := r.ReadByte()
	if err != nil {
		return c, err
	}
	c.Loot = make([]model.TankDrop, 0, n)
	for i := 0; i < int(n); i++ {
		id, err := r.ReadInt32()
		if err != nil {
			return c, err
		}
		count, err := r.ReadInt32()
		if err != nil {
			return c, err
		}
		c.Loot = append(c.Loot, model.TankDrop{TankID: id, Count: count})
	}
	return c, nil
}
