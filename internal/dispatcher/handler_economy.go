package dispatcher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tankwars/server/internal/loot"
	"github.com/tankwars/server/internal/model"
	"github.com/tankwars/server/internal/protocol"
)

// handleUpgradeTank implements UpgradeTankRequest: cost to raise level
// L->L+1 is 50*2^(L-1) spare parts, deducted and incremented atomically
// from the player's own Count of that tank (spare parts double as both
// the currency and the owned-tank marker, per model.Tank).
func (d *Dispatcher) handleUpgradeTank(ctx context.Context, sess Session, req protocol.UpgradeTankRequest) protocol.Message {
	p, err := d.Store.LookupByID(ctx, sess.PlayerID())
	if err != nil {
		return protocol.UpgradeTankResponse{Error: "player not found", HasError: true}
	}

	idx := -1
	for i, t := range p.Tanks {
		if t.ID == req.TankID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return protocol.UpgradeTankResponse{Error: "tank not owned", HasError: true}
	}

	tank := p.Tanks[idx]
	cost := model.UpgradeCost(tank.Level)
	if int64(tank.Count) < cost {
		return protocol.UpgradeTankResponse{Tank: tank, Error: fmt.Sprintf("need %d spare parts, have %d", cost, tank.Count), HasError: true}
	}

	tank.Count -= int32(cost)
	tank.Level++
	p.Tanks[idx] = tank

	if err := d.Store.Update(ctx, p); err != nil {
		slog.Error("dispatcher: failed to persist tank upgrade", "player_id", p.ID, "error", err)
		return protocol.UpgradeTankResponse{Error: "internal failure", HasError: true}
	}
	return protocol.UpgradeTankResponse{Tank: tank}
}

// refreshDailyItems rotates p's daily items in place if due, returning
// whether a rotation happened.
func refreshDailyItems(tanks []model.TankCatalogueEntry, p *model.Player) bool {
	if !loot.DailyRotationDue(p.DailyItemsTime, time.Now()) {
		return false
	}
	p.DailyItems = loot.GenerateDailyItems(tanks, *p)
	p.DailyItemsTime = time.Now()
	return true
}

// handleGetDailyItems implements GetDailyItemsRequest: rotate if due, then
// reply with the (possibly just-rotated) offers.
func (d *Dispatcher) handleGetDailyItems(ctx context.Context, sess Session, req protocol.GetDailyItemsRequest) protocol.Message {
	p, err := d.Store.LookupByID(ctx, sess.PlayerID())
	if err != nil {
		return protocol.GetDailyItemsResponse{}
	}
	if refreshDailyItems(d.Tanks, &p) {
		if err := d.Store.Update(ctx, p); err != nil {
			slog.Error("dispatcher: failed to persist daily item rotation", "player_id", p.ID, "error", err)
		}
	}
	return protocol.GetDailyItemsResponse{Items: p.DailyItems}
}

// handleGetDailyItem implements GetDailyItemRequest: rotate if due, then
// purchase the offer at index (decrements coins, marks bought, credits
// spare parts or grants a new tank).
func (d *Dispatcher) handleGetDailyItem(ctx context.Context, sess Session, req protocol.GetDailyItemRequest) protocol.Message {
	p, err := d.Store.LookupByID(ctx, sess.PlayerID())
	if err != nil {
		return protocol.GetDailyItemResponse{Error: "player not found", HasError: true}
	}
	refreshDailyItems(d.Tanks, &p)

	if req.Index < 0 || int(req.Index) >= len(p.DailyItems) {
		return protocol.GetDailyItemResponse{Error: "index out of range", HasError: true}
	}
	item := p.DailyItems[req.Index]
	if item.Bought {
		return protocol.GetDailyItemResponse{Item: item, Error: "already bought", HasError: true}
	}
	if p.Coins < int64(item.Price) {
		return protocol.GetDailyItemResponse{Item: item, Error: "insufficient coins", HasError: true}
	}

	p.Coins -= int64(item.Price)
	item.Bought = true
	p.DailyItems[req.Index] = item

	if owned, ok := p.OwnsTank(item.TankID); ok {
		for i := range p.Tanks {
			if p.Tanks[i].ID == owned.ID {
				p.Tanks[i].Count += item.Count
				break
			}
		}
	} else {
		p.Tanks = append(p.Tanks, model.Tank{ID: item.TankID, Level: 1, Count: 0})
	}

	if err := d.Store.Update(ctx, p); err != nil {
		slog.Error("dispatcher: failed to persist daily item purchase", "player_id", p.ID, "error", err)
		return protocol.GetDailyItemResponse{Error: "internal failure", HasError: true}
	}
	return protocol.GetDailyItemResponse{Item: item}
}

// handleGetChest implements GetChestRequest. Only ChestName::COMMON is
// implemented in the request path per spec.md §4.C; the GetChestResponse is
// pushed to the client on a new one-way stream via sess.SendStream.
func (d *Dispatcher) handleGetChest(ctx context.Context, sess Session, req protocol.GetChestRequest) {
	if req.Name != model.ChestCommon {
		slog.Debug("dispatcher: ignoring GetChestRequest for unsupported chest", "name", req.Name)
		return
	}

	p, err := d.Store.LookupByID(ctx, sess.PlayerID())
	if err != nil {
		return
	}
	if p.Coins < int64(model.ChestCommon) {
		_ = sess.SendStream(protocol.GetChestResponse{Error: "insufficient coins", HasError: true})
		return
	}

	p.Coins -= int64(model.ChestCommon)
	chest := loot.GenerateCommonLoot(d.Tanks, p)
	chest.AddToPlayer(&p)

	if err := d.Store.Update(ctx, p); err != nil {
		slog.Error("dispatcher: failed to persist chest purchase", "player_id", p.ID, "error", err)
		return
	}
	if err := sess.SendStream(protocol.GetChestResponse{Chest: chest, HasChest: true}); err != nil {
		slog.Warn("dispatcher: failed to push chest", "player_id", p.ID, "error", err)
	}
}
