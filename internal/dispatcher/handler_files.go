package dispatcher

import (
	"context"
	"log/slog"

	"github.com/tankwars/server/internal/protocol"
)

// handleFilesSync implements FilesSyncRequest: for each requested path,
// compute the patch from the client's rolling-hash signature to the
// current content (see AssetIndex.Patch). If the player already has a
// live match, the battle engine is notified so it can re-bind the
// connection and resend the last MapFoundResponse (spec.md §4.F.6).
func (d *Dispatcher) handleFilesSync(ctx context.Context, sess Session, req protocol.FilesSyncRequest) protocol.Message {
	patches := make([]protocol.FilePatch, 0, len(req.FileSignatures))
	for path, sig := range req.FileSignatures {
		patch, ok := d.Assets.Patch(path, sig)
		if !ok {
			slog.Debug("dispatcher: file sync requested unknown asset", "path", path)
			continue
		}
		patches = append(patches, protocol.FilePatch{Path: path, Patch: patch})
	}

	d.Battle.Reconnect(sess.PlayerID(), sess)

	return protocol.FilesSyncResponse{Patches: patches}
}
