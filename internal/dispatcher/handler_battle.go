package dispatcher

import (
	"context"
	"log/slog"

	"github.com/tankwars/server/internal/matchmaker"
	"github.com/tankwars/server/internal/protocol"
)

// handleJoinMatchMaker implements JoinMatchMakerRequest: enroll the
// player at their current trophy count. Tank ownership is validated later
// by battle.newMatch when a pair forms (spec.md §7's "Engine invariant
// violation: skip match creation silently"), not here.
func (d *Dispatcher) handleJoinMatchMaker(ctx context.Context, sess Session, req protocol.JoinMatchMakerRequest) {
	p, err := d.Store.LookupByID(ctx, sess.PlayerID())
	if err != nil {
		slog.Warn("dispatcher: join matchmaker lookup failed", "player_id", sess.PlayerID(), "error", err)
		return
	}

	d.Matchmaker.AddPlayer(matchmaker.Enrollment{
		PlayerID:   sess.PlayerID(),
		TankID:     req.TankID,
		Trophies:   p.Trophies,
		Connection: sess,
	})
}
