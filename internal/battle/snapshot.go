package battle

import (
	"math"

	"github.com/tankwars/server/internal/protocol"
)

// radToDeg converts a physics-space radian angle to the degrees the wire
// protocol reports.
func radToDeg(rad float64) float32 {
	return float32(rad * 180 / math.Pi)
}

// buildGamePacket assembles the snapshot one player receives this tick,
// per spec.md §4.F.4: own cool_down reported honestly, the opponent's
// always reported 0 so reload timing cannot leak. selfBody/opponentBody
// carry the combatants' positions, which live on the physics body rather
// than on combatant itself.
func buildGamePacket(timeLeft uint16, self, opponent *combatant, selfBody, opponentBody *body, selfBullets, opponentBullets []protocol.BulletData) protocol.GamePacket {
	return protocol.GamePacket{
		TimeLeft:     timeLeft,
		MyData:       buildPlayerData(self, selfBody, self.coolDown, selfBullets),
		OpponentData: buildPlayerData(opponent, opponentBody, 0, opponentBullets),
	}
}

func buildPlayerData(c *combatant, b *body, reportedCoolDown float64, bullets []protocol.BulletData) protocol.GamePlayerData {
	return protocol.GamePlayerData{
		X:            float32(b.position.X * ScaleToPixels),
		Y:            float32(b.position.Y * ScaleToPixels),
		BodyRotation: radToDeg(c.bodyAngle),
		GunRotation:  radToDeg(c.gunAngle + c.bodyAngle),
		HP:           uint16(math.Max(0, c.hp)),
		CoolDown:     float32(reportedCoolDown),
		Bullets:      bullets,
	}
}
