package battle

import (
	"math"
	"strconv"

	"github.com/tankwars/server/internal/catalogue"
	"github.com/tankwars/server/internal/model"
)

// BodyCatalogues bundles the three named-collider catalogues spec.md's
// filesystem layout loads at startup: tank hulls, bullet hulls, and
// material map objects (Maps/MapObjects/MapObjects.polygons,
// Tanks/TanksBodies.polygons, Tanks/Bullets.polygons). The zero value is
// safe to use: every lookup below falls back to the bounding-circle
// stand-in radii physics.go documents, and no map object is treated as
// material.
type BodyCatalogues struct {
	Tanks, Bullets, MapObjects catalogue.BodyCatalogue
}

// boundingRadius derives the bounding-circle radius (physics units) of a
// catalogue body scaled by scale, for use as a body's radius in the
// bounding-circle collision model physics.go implements. Falls back to
// fallback (already in physics units) when cat is nil, name is empty, or
// name does not name a catalogue entry.
func boundingRadius(cat catalogue.BodyCatalogue, name string, scale, fallback float64) float64 {
	if cat == nil || name == "" {
		return fallback
	}
	collider, err := cat.CreateCollider(name, scale)
	if err != nil {
		return fallback
	}

	var r float64
	for _, poly := range collider.Polygons {
		for _, p := range poly {
			if d := math.Hypot(p.X, p.Y); d > r {
				r = d
			}
		}
	}
	for _, c := range collider.Circles {
		if d := math.Hypot(c.CX, c.CY) + c.R; d > r {
			r = d
		}
	}
	if r == 0 {
		return fallback
	}
	return r
}

// tankRadius approximates a tank's bounding circle from its body catalogue
// entry (looked up by the tank's Graphics.BodyName), falling back to the
// fixed stand-in physics.go's collision model has always used when no
// catalogue is loaded or the name is unknown.
func tankRadius(cat catalogue.BodyCatalogue, entry model.TankCatalogueEntry) float64 {
	return boundingRadius(cat, entry.Graphics.BodyName, ScaleToPhysics, 0.4)
}

// bulletRadiusFor is bulletRadius's catalogue-backed counterpart, looked up
// by the tank's Graphics.BulletName.
func bulletRadiusFor(cat catalogue.BodyCatalogue, entry model.TankCatalogueEntry) float64 {
	return boundingRadius(cat, entry.Graphics.BulletName, ScaleToPhysics, bulletRadius)
}

// addMapObjectBodies inserts a static BodyOther body for every placed map
// object that names a material collider. Mirrors the original server's
// rule for map objects: a placed object is looked up by the string form of
// its catalogue id in the MapObjects body catalogue, and anything absent
// (decorative scenery such as bushes) is skipped rather than treated as
// solid terrain.
func addMapObjectBodies(w *world, cat catalogue.BodyCatalogue, objects []model.MapObject) {
	if cat == nil {
		return
	}
	for _, obj := range objects {
		name := strconv.Itoa(int(obj.ID))
		radius := boundingRadius(cat, name, obj.Scale*ScaleToPhysics, -1)
		if radius < 0 {
			continue
		}
		position := vec2{X: obj.X, Y: obj.Y}.scale(ScaleToPhysics)
		w.addBody(UserData{Kind: BodyOther}, position, vec2{}, radius)
	}
}
