package dispatcher

import (
	"context"
	"log/slog"
	"time"

	"github.com/tankwars/server/internal/loot"
	"github.com/tankwars/server/internal/model"
	"github.com/tankwars/server/internal/protocol"
	"github.com/tankwars/server/internal/store"
)

// handleSignIn implements spec.md §4.C's SignInRequest contract.
func (d *Dispatcher) handleSignIn(ctx context.Context, sess Session, req protocol.SignInRequest) protocol.Message {
	if !req.HasID {
		id := d.IDs.Next()
		now := time.Now()
		p := model.Player{
			ID:             id,
			MachineID:      req.OSID,
			RegisteredAt:   now,
			LastOnlineAt:   now,
			Rank:           1,
			DailyItemsTime: now,
			DailyItems:     loot.GenerateDailyItems(d.Tanks, model.Player{}),
		}
		if err := d.Store.Insert(ctx, p); err != nil {
			slog.Error("dispatcher: failed to persist new player", "error", err)
			return protocol.SignInResponse{}
		}
		sess.Bind(id)
		return protocol.SignInResponse{ClientID: id, HasID: true, Profile: p, HasProfile: true}
	}

	matches, err := d.Store.MachineIDMatches(ctx, req.ClientID, req.OSID)
	if err != nil || !matches {
		if err != nil && err != store.ErrNotFound {
			slog.Error("dispatcher: machine id check failed", "client_id", req.ClientID, "error", err)
		}
		return protocol.SignInResponse{}
	}

	p, err := d.Store.LookupByID(ctx, req.ClientID)
	if err != nil {
		slog.Error("dispatcher: lookup failed after machine id match", "client_id", req.ClientID, "error", err)
		return protocol.SignInResponse{}
	}

	if loot.DailyRotationDue(p.DailyItemsTime, time.Now()) {
		p.DailyItems = loot.GenerateDailyItems(d.Tanks, p)
		p.DailyItemsTime = time.Now()
	}
	p.LastOnlineAt = time.Now()
	if err := d.Store.Update(ctx, p); err != nil {
		slog.Error("dispatcher: failed to persist sign-in refresh", "client_id", req.ClientID, "error", err)
	}

	sess.Bind(p.ID)
	return protocol.SignInResponse{ClientID: p.ID, HasID: true, Profile: p, HasProfile: true}
}

// handlePlayerProfile implements PlayerProfileRequest: redact owner-only
// fields when the caller isn't the profile's owner.
func (d *Dispatcher) handlePlayerProfile(ctx context.Context, sess Session, req protocol.PlayerProfileRequest) protocol.Message {
	p, err := d.Store.LookupByNickname(ctx, req.Nickname)
	if err != nil {
		return protocol.PlayerProfileResponse{Found: false}
	}
	if p.ID != sess.PlayerID() {
		p = p.Redacted()
	}
	return protocol.PlayerProfileResponse{Profile: p, Found: true}
}

// handleSetNickname implements SetNicknameRequest, including the
// first-time STARTER chest grant pushed over a one-way server->client
// stream.
func (d *Dispatcher) handleSetNickname(ctx context.Context, sess Session, req protocol.SetNicknameRequest) protocol.Message {
	if err := model.ValidateNickname(req.Nickname); err != nil {
		return protocol.SetNicknameResponse{Error: err.Error(), HasError: true}
	}

	p, err := d.Store.LookupByID(ctx, sess.PlayerID())
	if err != nil {
		return protocol.SetNicknameResponse{Error: "player not found", HasError: true}
	}
	firstNickname := len(p.Tanks) == 0

	if err := d.Store.ClaimNickname(ctx, sess.PlayerID(), req.Nickname); err != nil {
		return protocol.SetNicknameResponse{Error: err.Error(), HasError: true}
	}

	if firstNickname {
		p.Nickname = req.Nickname
		chest := loot.GenerateStarterLoot(d.Tanks, p)
		chest.AddToPlayer(&p)
		if err := d.Store.Update(ctx, p); err != nil {
			slog.Error("dispatcher: failed to persist starter chest", "player_id", p.ID, "error", err)
		}
		if err := sess.SendStream(protocol.GetChestResponse{Chest: chest, HasChest: true}); err != nil {
			slog.Warn("dispatcher: failed to push starter chest", "player_id", p.ID, "error", err)
		}
	}

	return protocol.SetNicknameResponse{}
}
