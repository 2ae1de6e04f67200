package catalogue

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Point is a 2D pixel-space coordinate.
type Point struct {
	X, Y float64
}

// Circle is a pixel-space circle collider piece.
type Circle struct {
	CX, CY, R float64
}

// bodyOrigin is the BodyEditorLoader "origin" field: the pivot pixel
// coordinate subtracted so the body is centered at (0,0) before scaling.
type bodyOrigin struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// rawPoint mirrors the {"x":..,"y":..} shape used inside "polygons".
type rawPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// rawCircle mirrors the {"cx":..,"cy":..,"cr":..} shape used inside
// "circles".
type rawCircle struct {
	CX float64 `json:"cx"`
	CY float64 `json:"cy"`
	CR float64 `json:"cr"`
}

// rawBody is one entry of a BodyEditorLoader JSON file's "rigidBodies"
// array, the schema used throughout the original Rust source's
// physics.rs for tanks, bullets and map objects.
type rawBody struct {
	Name      string       `json:"name"`
	ImagePath string       `json:"imagePath"`
	Origin    bodyOrigin   `json:"origin"`
	Polygons  [][]rawPoint `json:"polygons"`
	Circles   []rawCircle  `json:"circles"`
}

type rawDocument struct {
	RigidBodies []rawBody `json:"rigidBodies"`
}

// Body is one named compound collider description: zero or more convex
// polygons plus zero or more circles, in origin-relative pixel
// coordinates.
type Body struct {
	Name     string
	Polygons [][]Point
	Circles  []Circle
}

// BodyCatalogue maps a body name (tank model, bullet model, or map object
// name) to its collider description.
type BodyCatalogue map[string]Body

// LoadBodyCatalogue parses a .polygons file (BodyEditorLoader JSON schema)
// into a BodyCatalogue keyed by body name.
func LoadBodyCatalogue(path string) (BodyCatalogue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading body catalogue %s: %w", path, err)
	}

	var doc rawDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing body catalogue %s: %w", path, err)
	}

	out := make(BodyCatalogue, len(doc.RigidBodies))
	for _, rb := range doc.RigidBodies {
		body := Body{Name: rb.Name}

		for _, poly := range rb.Polygons {
			pts := make([]Point, len(poly))
			for i, p := range poly {
				pts[i] = Point{X: p.X - rb.Origin.X, Y: p.Y - rb.Origin.Y}
			}
			body.Polygons = append(body.Polygons, convexHull(pts))
		}

		for _, c := range rb.Circles {
			body.Circles = append(body.Circles, Circle{
				CX: c.CX - rb.Origin.X,
				CY: c.CY - rb.Origin.Y,
				R:  c.CR,
			})
		}

		out[rb.Name] = body
	}
	return out, nil
}

// Collider is the scaled, ready-to-attach compound shape for one instance
// of a body at a given scale factor.
type Collider struct {
	Polygons [][]Point
	Circles  []Circle
}

// CreateCollider returns a Collider for the named body, scaled by scale
// (matching spec.md 4.G's create_collider(name, scale)).
func (c BodyCatalogue) CreateCollider(name string, scale float64) (Collider, error) {
	body, ok := c[name]
	if !ok {
		return Collider{}, fmt.Errorf("catalogue: unknown body %q", name)
	}

	collider := Collider{
		Polygons: make([][]Point, len(body.Polygons)),
		Circles:  make([]Circle, len(body.Circles)),
	}
	for i, poly := range body.Polygons {
		scaled := make([]Point, len(poly))
		for j, p := range poly {
			scaled[j] = Point{X: p.X * scale, Y: p.Y * scale}
		}
		collider.Polygons[i] = scaled
	}
	for i, circ := range body.Circles {
		collider.Circles[i] = Circle{CX: circ.CX * scale, CY: circ.CY * scale, R: circ.R * scale}
	}
	return collider, nil
}

// convexHull computes the convex hull of pts via Andrew's monotone chain,
// matching the "polygons converted via convex-hull" requirement of
// spec.md 4.G. Returns pts unchanged if fewer than 3 points are given.
func convexHull(pts []Point) []Point {
	if len(pts) < 3 {
		return pts
	}

	sorted := make([]Point, len(pts))
	copy(sorted, pts)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].X != sorted[j].X {
			return sorted[i].X < sorted[j].X
		}
		return sorted[i].Y < sorted[j].Y
	})

	cross := func(o, a, b Point) float64 {
		return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
	}

	n := len(sorted)
	hull := make([]Point, 0, 2*n)

	// Lower hull.
	for _, p := range sorted {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}

	// Upper hull.
	lower := len(hull) + 1
	for i := n - 2; i >= 0; i-- {
		p := sorted[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}

	return hull[:len(hull)-1]
}
