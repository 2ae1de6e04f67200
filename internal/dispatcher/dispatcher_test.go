package dispatcher

import (
	"context"
	"testing"

	"github.com/tankwars/server/internal/battle"
	"github.com/tankwars/server/internal/idgen"
	"github.com/tankwars/server/internal/matchmaker"
	"github.com/tankwars/server/internal/model"
	"github.com/tankwars/server/internal/protocol"
	"github.com/tankwars/server/internal/store"
)

type fakeSession struct {
	playerID int64
	stream   []protocol.Message
}

func (f *fakeSession) PlayerID() int64               { return f.playerID }
func (f *fakeSession) Bind(playerID int64)           { f.playerID = playerID }
func (f *fakeSession) SendStream(msg protocol.Message) error {
	f.stream = append(f.stream, msg)
	return nil
}
func (f *fakeSession) SendDatagram(msg protocol.Message) error { return nil }

type fakeBattleEngine struct{}

func (fakeBattleEngine) CreateMatch(matchmaker.CreateMatch) {}

func testTanks() []model.TankCatalogueEntry {
	return []model.TankCatalogueEntry{
		{ID: 0, Characteristics: model.TankCharacteristics{Name: "starter", Rarity: model.RarityCommon, HP: 100}},
		{ID: 1, Characteristics: model.TankCharacteristics{Name: "heavy", Rarity: model.RarityRare, HP: 150}},
	}
}

func newTestDispatcher(t *testing.T) (*Dispatcher, store.Store) {
	t.Helper()
	mem := store.NewMemStore()
	ids, err := idgen.New(1)
	if err != nil {
		t.Fatalf("idgen.New: %v", err)
	}
	mm := matchmaker.New(fakeBattleEngine{})
	engine := battle.NewEngine(nil, nil, battle.BodyCatalogues{}, mem)
	assets := &AssetIndex{files: map[string]assetFile{}}
	return New(mem, ids, testTanks(), assets, mm, engine), mem
}

func TestHandleSignInNewPlayerMintsIDAndBinds(t *testing.T) {
	d, mem := newTestDispatcher(t)
	sess := &fakeSession{}

	resp := d.handleSignIn(context.Background(), sess, protocol.SignInRequest{OSID: "machine-1"})
	signIn, ok := resp.(protocol.SignInResponse)
	if !ok || !signIn.HasID {
		t.Fatalf("expected a SignInResponse with a minted id, got %#v", resp)
	}
	if sess.PlayerID() != signIn.ClientID {
		t.Errorf("expected session bound to minted id %d, got %d", signIn.ClientID, sess.PlayerID())
	}
	if signIn.Profile.Rank != 1 {
		t.Errorf("expected new player to start at rank 1, got %d", signIn.Profile.Rank)
	}

	if _, err := mem.LookupByID(context.Background(), signIn.ClientID); err != nil {
		t.Errorf("expected new player persisted: %v", err)
	}
}

func TestHandleSignInReturningPlayerWrongMachineIDRejected(t *testing.T) {
	d, mem := newTestDispatcher(t)
	ctx := context.Background()
	p := model.Player{ID: 7, MachineID: "real-machine"}
	if err := mem.Insert(ctx, p); err != nil {
		t.Fatalf("insert: %v", err)
	}

	sess := &fakeSession{}
	resp := d.handleSignIn(ctx, sess, protocol.SignInRequest{HasID: true, ClientID: 7, OSID: "wrong-machine"})
	signIn := resp.(protocol.SignInResponse)
	if signIn.HasID || signIn.HasProfile {
		t.Errorf("expected both fields null on machine id mismatch, got %#v", signIn)
	}
	if sess.PlayerID() != 0 {
		t.Error("expected session to remain unbound on rejected sign-in")
	}
}

func TestHandleSetNicknameGrantsStarterChestOnFirstSet(t *testing.T) {
	d, mem := newTestDispatcher(t)
	ctx := context.Background()
	p := model.Player{ID: 1, MachineID: "m"}
	if err := mem.Insert(ctx, p); err != nil {
		t.Fatalf("insert: %v", err)
	}
	sess := &fakeSession{playerID: 1}

	resp := d.handleSetNickname(ctx, sess, protocol.SetNicknameRequest{Nickname: "Tanker1"})
	setNick := resp.(protocol.SetNicknameResponse)
	if setNick.HasError {
		t.Fatalf("expected nickname accepted, got error %q", setNick.Error)
	}

	if len(sess.stream) != 1 {
		t.Fatalf("expected exactly one pushed message (starter chest), got %d", len(sess.stream))
	}
	chestResp, ok := sess.stream[0].(protocol.GetChestResponse)
	if !ok || !chestResp.HasChest {
		t.Fatalf("expected a GetChestResponse carrying a chest, got %#v", sess.stream[0])
	}

	updated, err := mem.LookupByID(ctx, 1)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if updated.Nickname != "Tanker1" {
		t.Errorf("expected nickname persisted, got %q", updated.Nickname)
	}
	if len(updated.Tanks) == 0 {
		t.Error("expected starter chest to have granted at least one tank")
	}
}

func TestHandleSetNicknameRejectsInvalidPattern(t *testing.T) {
	d, mem := newTestDispatcher(t)
	ctx := context.Background()
	_ = mem.Insert(ctx, model.Player{ID: 1})
	sess := &fakeSession{playerID: 1}

	resp := d.handleSetNickname(ctx, sess, protocol.SetNicknameRequest{Nickname: "x"})
	setNick := resp.(protocol.SetNicknameResponse)
	if !setNick.HasError {
		t.Error("expected a validation error for a too-short nickname")
	}
}

func TestHandleUpgradeTankDeductsSparePartsAndIncrementsLevel(t *testing.T) {
	d, mem := newTestDispatcher(t)
	ctx := context.Background()
	p := model.Player{ID: 1, Tanks: []model.Tank{{ID: 0, Level: 1, Count: 50}}}
	_ = mem.Insert(ctx, p)
	sess := &fakeSession{playerID: 1}

	resp := d.handleUpgradeTank(ctx, sess, protocol.UpgradeTankRequest{TankID: 0})
	upgrade := resp.(protocol.UpgradeTankResponse)
	if upgrade.HasError {
		t.Fatalf("expected upgrade to succeed with exactly enough parts, got %q", upgrade.Error)
	}
	if upgrade.Tank.Level != 2 || upgrade.Tank.Count != 0 {
		t.Errorf("expected level 2 with 0 parts remaining, got level=%d count=%d", upgrade.Tank.Level, upgrade.Tank.Count)
	}
}

func TestHandleUpgradeTankInsufficientPartsFails(t *testing.T) {
	d, mem := newTestDispatcher(t)
	ctx := context.Background()
	_ = mem.Insert(ctx, model.Player{ID: 1, Tanks: []model.Tank{{ID: 0, Level: 1, Count: 10}}})
	sess := &fakeSession{playerID: 1}

	resp := d.handleUpgradeTank(ctx, sess, protocol.UpgradeTankRequest{TankID: 0})
	upgrade := resp.(protocol.UpgradeTankResponse)
	if !upgrade.HasError {
		t.Error("expected insufficient spare parts to fail the upgrade")
	}
}

func TestHandleGetChestCommonDeductsCoinsAndGrantsLoot(t *testing.T) {
	d, mem := newTestDispatcher(t)
	ctx := context.Background()
	_ = mem.Insert(ctx, model.Player{ID: 1, Coins: 500})
	sess := &fakeSession{playerID: 1}

	d.handleGetChest(ctx, sess, protocol.GetChestRequest{Name: model.ChestCommon})

	if len(sess.stream) != 1 {
		t.Fatalf("expected one pushed chest response, got %d", len(sess.stream))
	}
	chestResp := sess.stream[0].(protocol.GetChestResponse)
	if !chestResp.HasChest {
		t.Fatalf("expected chest granted, got error %q", chestResp.Error)
	}

	updated, _ := mem.LookupByID(ctx, 1)
	if updated.Coins != 500-int64(model.ChestCommon) {
		t.Errorf("expected coins deducted by %d, got %d remaining", model.ChestCommon, updated.Coins)
	}
}

func TestHandleGetChestIgnoresNonCommonVariant(t *testing.T) {
	d, mem := newTestDispatcher(t)
	ctx := context.Background()
	_ = mem.Insert(ctx, model.Player{ID: 1, Coins: 10000})
	sess := &fakeSession{playerID: 1}

	d.handleGetChest(ctx, sess, protocol.GetChestRequest{Name: model.ChestRare})

	if len(sess.stream) != 0 {
		t.Error("expected no response pushed for an unimplemented chest variant")
	}
}

func TestHandlePlayerProfileRedactsForNonOwner(t *testing.T) {
	d, mem := newTestDispatcher(t)
	ctx := context.Background()
	_ = mem.Insert(ctx, model.Player{ID: 1, Nickname: "Owner1", Coins: 999, Diamonds: 5})
	viewer := &fakeSession{playerID: 2}

	resp := d.handlePlayerProfile(ctx, viewer, protocol.PlayerProfileRequest{Nickname: "Owner1"})
	profile := resp.(protocol.PlayerProfileResponse)
	if !profile.Found {
		t.Fatal("expected profile found")
	}
	if profile.Profile.Coins != 0 || profile.Profile.Diamonds != 0 {
		t.Errorf("expected coins/diamonds redacted for a non-owner viewer, got %+v", profile.Profile)
	}
}

func TestHandlePlayerProfileUnredactedForOwner(t *testing.T) {
	d, mem := newTestDispatcher(t)
	ctx := context.Background()
	_ = mem.Insert(ctx, model.Player{ID: 1, Nickname: "Owner1", Coins: 999})
	owner := &fakeSession{playerID: 1}

	resp := d.handlePlayerProfile(ctx, owner, protocol.PlayerProfileRequest{Nickname: "Owner1"})
	profile := resp.(protocol.PlayerProfileResponse)
	if profile.Profile.Coins != 999 {
		t.Errorf("expected coins visible to the owner, got %d", profile.Profile.Coins)
	}
}

func TestHandleJoinMatchMakerEnrollsWithoutBlocking(t *testing.T) {
	d, mem := newTestDispatcher(t)
	ctx := context.Background()
	_ = mem.Insert(ctx, model.Player{ID: 1, Trophies: 100})
	sess := &fakeSession{playerID: 1}

	d.handleJoinMatchMaker(ctx, sess, protocol.JoinMatchMakerRequest{TankID: 0})
}

func TestHandleFilesSyncReportsUpToDateAndChangedFiles(t *testing.T) {
	d, _ := newTestDispatcher(t)
	d.Assets.files["Tanks/0.json"] = assetFile{content: []byte(`{"id":0}`), checksum: 42}

	resp := d.handleFilesSync(context.Background(), &fakeSession{playerID: 1}, protocol.FilesSyncRequest{
		FileSignatures: map[string]uint32{"Tanks/0.json": 42, "unknown.json": 1},
	})
	sync := resp.(protocol.FilesSyncResponse)
	if len(sync.Patches) != 1 {
		t.Fatalf("expected exactly one patch entry (unknown path skipped), got %d", len(sync.Patches))
	}
	if len(sync.Patches[0].Patch) != 0 {
		t.Errorf("expected an empty patch for a matching signature, got %d bytes", len(sync.Patches[0].Patch))
	}
}
