// Package dispatcher implements component C: the request dispatcher that
// decodes tagged-union messages off a session's bidi/uni streams and
// drives the player store, loot, matchmaker and battle engine
// collaborators to answer them.
package dispatcher

import (
	"context"
	"log/slog"

	"github.com/tankwars/server/internal/battle"
	"github.com/tankwars/server/internal/idgen"
	"github.com/tankwars/server/internal/matchmaker"
	"github.com/tankwars/server/internal/model"
	"github.com/tankwars/server/internal/protocol"
	"github.com/tankwars/server/internal/store"
	"github.com/tankwars/server/internal/transport"
)

// Session is the dispatcher-facing name for transport.SessionHandle:
// naming it here keeps the handler_*.go files reading in terms of "the
// caller's session" rather than reaching into the transport package
// everywhere. It is a genuine alias (not a new type), so *Dispatcher's
// methods below satisfy transport.RequestHandler/EventHandler directly.
type Session = transport.SessionHandle

// Dispatcher holds every collaborator the 11 request/event handlers need.
type Dispatcher struct {
	Store      store.Store
	IDs        *idgen.Generator
	Tanks      []model.TankCatalogueEntry
	TankByID   map[int32]model.TankCatalogueEntry
	Assets     *AssetIndex
	Matchmaker *matchmaker.Matchmaker
	Battle     *battle.Engine
}

// New builds a Dispatcher. tanks is the process-wide tank catalogue
// (spec.md §4.G); mm and engine are the matchmaker and battle engine
// instances wired at startup in cmd/tankserver.
func New(st store.Store, ids *idgen.Generator, tanks []model.TankCatalogueEntry, assets *AssetIndex, mm *matchmaker.Matchmaker, engine *battle.Engine) *Dispatcher {
	byID := make(map[int32]model.TankCatalogueEntry, len(tanks))
	for _, t := range tanks {
		byID[t.ID] = t
	}
	return &Dispatcher{
		Store:      st,
		IDs:        ids,
		Tanks:      tanks,
		TankByID:   byID,
		Assets:     assets,
		Matchmaker: mm,
		Battle:     engine,
	}
}

// HandleRequest answers one bidirectional "requests" stream message,
// satisfying transport.RequestHandler structurally.
func (d *Dispatcher) HandleRequest(ctx context.Context, sess Session, msg protocol.Message) (protocol.Message, bool) {
	switch m := msg.(type) {
	case protocol.SignInRequest:
		return d.handleSignIn(ctx, sess, m), true
	case protocol.FilesSyncRequest:
		return d.handleFilesSync(ctx, sess, m), true
	case protocol.PlayerProfileRequest:
		return d.handlePlayerProfile(ctx, sess, m), true
	case protocol.SetNicknameRequest:
		return d.handleSetNickname(ctx, sess, m), true
	case protocol.UpgradeTankRequest:
		return d.handleUpgradeTank(ctx, sess, m), true
	case protocol.GetDailyItemsRequest:
		return d.handleGetDailyItems(ctx, sess, m), true
	case protocol.GetDailyItemRequest:
		return d.handleGetDailyItem(ctx, sess, m), true
	default:
		slog.Warn("dispatcher: unexpected message on bidi stream", "tag", msg.Tag())
		return nil, false
	}
}

// HandleEvent answers one unidirectional "events" stream message,
// satisfying transport.EventHandler structurally.
func (d *Dispatcher) HandleEvent(ctx context.Context, sess Session, msg protocol.Message) {
	switch m := msg.(type) {
	case protocol.JoinMatchMakerRequest:
		d.handleJoinMatchMaker(ctx, sess, m)
	case protocol.LeaveMatchMakerRequest:
		d.Matchmaker.RemovePlayer(sess.PlayerID())
	case protocol.Shoot:
		d.Battle.HandleShoot(sess.PlayerID())
	case protocol.GetChestRequest:
		d.handleGetChest(ctx, sess, m)
	default:
		slog.Warn("dispatcher: unexpected message on uni stream", "tag", msg.Tag())
	}
}

// HandleDatagram answers one unreliable datagram, satisfying
// transport.EventHandler structurally.
func (d *Dispatcher) HandleDatagram(ctx context.Context, sess Session, msg protocol.Message) {
	pos, ok := msg.(protocol.PlayerPosition)
	if !ok {
		return
	}
	d.Battle.HandlePlayerPosition(sess.PlayerID(), pos)
}
