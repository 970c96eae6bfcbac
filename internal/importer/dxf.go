package importer

import (
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strings"

	"github.com/piwi3910/CubbyCut/internal/model"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"
)

// segment represents a line segment between two 2D points, used for
// chaining disconnected LINE entities into closed outlines.
type segment struct {
	start model.Point2D
	end   model.Point2D
}

// ImportDXF imports shapes from a DXF file. Each closed outline (LWPOLYLINE,
// CIRCLE, or chain of connected LINEs/ARCs) is rasterized into a high-res
// grid whose cells are cellSize/DownscaleFactor mm wide.
func ImportDXF(path string, cellSize float64, clearance int) ImportResult {
	result := ImportResult{}

	if cellSize <= 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("Invalid cell size %.2f", cellSize))
		return result
	}

	drawing, err := dxf.Open(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open DXF file: %v", err))
		return result
	}

	entities := drawing.Entities()
	if len(entities) == 0 {
		result.Errors = append(result.Errors, "DXF file contains no entities")
		return result
	}

	var outlines []model.Outline
	var segments []segment

	for _, ent := range entities {
		switch e := ent.(type) {
		case *entity.LwPolyline:
			outline := lwPolylineToOutline(e)
			if len(outline) >= 3 {
				outlines = append(outlines, outline)
			} else {
				result.Warnings = append(result.Warnings,
					"Skipped LWPOLYLINE with fewer than 3 vertices")
			}

		case *entity.Circle:
			outlines = append(outlines, circleToOutline(e, 64))

		case *entity.Arc:
			pts := arcToPoints(e, 32)
			if len(pts) >= 2 {
				segments = append(segments, pointsToSegments(pts)...)
			}

		case *entity.Line:
			segments = append(segments, segment{
				start: model.Point2D{X: e.Start[0], Y: e.Start[1]},
				end:   model.Point2D{X: e.End[0], Y: e.End[1]},
			})
		}
	}

	// Chain loose segments (LINEs and ARCs) into closed outlines
	for _, co := range chainSegments(segments, 0.01) {
		if len(co) >= 3 {
			outlines = append(outlines, co)
		}
	}

	if len(outlines) == 0 {
		result.Errors = append(result.Errors, "No closed shapes found in DXF file")
		return result
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	for i, outline := range outlines {
		title := fmt.Sprintf("%s %d", base, i+1)
		normalized := normalizeOutline(outline)
		_, size := normalized.BoundingBox()
		if size.X < 0.01 || size.Y < 0.01 {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Skipped degenerate shape (%.2f x %.2f mm)", size.X, size.Y))
			continue
		}

		grid := Rasterize(normalized, cellSize/model.DownscaleFactor)
		result.add(title, grid, clearance, title)
	}

	return result
}

// Rasterize samples the outline at the centre of every pixel-mm square and
// returns the covered cells. The outline must start at the origin.
func Rasterize(o model.Outline, pixel float64) model.Grid {
	_, size := o.BoundingBox()
	h := int(math.Ceil(size.Y/pixel - 1e-9))
	w := int(math.Ceil(size.X/pixel - 1e-9))
	g := model.NewGrid(max(h, 1), max(w, 1))
	for y := range g {
		for x := range g[y] {
			g[y][x] = o.Contains(model.Point2D{
				X: (float64(x) + 0.5) * pixel,
				Y: (float64(y) + 0.5) * pixel,
			})
		}
	}
	return g
}

// lwPolylineToOutline flattens a polyline, expanding bulged vertices into
// arc points up to the next vertex.
func lwPolylineToOutline(lw *entity.LwPolyline) model.Outline {
	n := len(lw.Vertices)
	var outline model.Outline
	for i, v := range lw.Vertices {
		cur := model.Point2D{X: v[0], Y: v[1]}
		if i >= len(lw.Bulges) || math.Abs(lw.Bulges[i]) <= 1e-9 {
			outline = append(outline, cur)
			continue
		}
		nv := lw.Vertices[(i+1)%n]
		pts := bulgeArcPoints(cur, model.Point2D{X: nv[0], Y: nv[1]}, lw.Bulges[i], 32)
		// The next vertex adds the arc's end point
		outline = append(outline, pts[:len(pts)-1]...)
	}
	return outline
}

// bulgeArcPoints samples the arc from p1 to p2 for a DXF bulge, the tangent
// of a quarter of the included angle. Positive bulges sweep counter-clockwise.
func bulgeArcPoints(p1, p2 model.Point2D, bulge float64, segments int) model.Outline {
	chord := math.Hypot(p2.X-p1.X, p2.Y-p1.Y)
	if chord < 1e-9 {
		return model.Outline{p1, p2}
	}

	sagitta := math.Abs(bulge) * chord / 2
	r := (chord*chord/(4*sagitta) + sagitta) / 2

	// Centre sits on the chord's bisector, r-sagitta away, left of travel
	// for counter-clockwise arcs
	ux, uy := -(p2.Y-p1.Y)/chord, (p2.X-p1.X)/chord
	if bulge < 0 {
		ux, uy = -ux, -uy
	}
	off := r - sagitta
	cx := (p1.X+p2.X)/2 + ux*off
	cy := (p1.Y+p2.Y)/2 + uy*off

	a0 := math.Atan2(p1.Y-cy, p1.X-cx)
	a1 := math.Atan2(p2.Y-cy, p2.X-cx)
	switch {
	case bulge > 0 && a1 < a0:
		a1 += 2 * math.Pi
	case bulge < 0 && a1 > a0:
		a1 -= 2 * math.Pi
	}
	return arcPoints(cx, cy, r, a0, a1, segments)
}

// arcPoints returns segments+1 points from angle a0 to a1 (radians).
func arcPoints(cx, cy, r, a0, a1 float64, segments int) model.Outline {
	pts := make(model.Outline, segments+1)
	for i := range pts {
		a := a0 + (a1-a0)*float64(i)/float64(segments)
		pts[i] = model.Point2D{X: cx + r*math.Cos(a), Y: cy + r*math.Sin(a)}
	}
	return pts
}

// circleToOutline approximates a circle as a regular polygon.
func circleToOutline(c *entity.Circle, segments int) model.Outline {
	pts := arcPoints(c.Center[0], c.Center[1], c.Radius, 0, 2*math.Pi, segments)
	return pts[:segments]
}

// arcToPoints flattens an ARC entity. DXF arcs run counter-clockwise in degrees.
func arcToPoints(a *entity.Arc, segments int) []model.Point2D {
	a0 := a.Angle[0] * math.Pi / 180
	a1 := a.Angle[1] * math.Pi / 180
	if a1 <= a0 {
		a1 += 2 * math.Pi
	}
	return arcPoints(a.Circle.Center[0], a.Circle.Center[1], a.Circle.Radius, a0, a1, segments)
}

func pointsToSegments(pts []model.Point2D) []segment {
	if len(pts) < 2 {
		return nil
	}
	segs := make([]segment, len(pts)-1)
	for i := range segs {
		segs[i] = segment{start: pts[i], end: pts[i+1]}
	}
	return segs
}

// chainSegments joins segments end to end into outlines, largest area first.
// Endpoints within tolerance count as connected; chains of fewer than three
// points are dropped.
func chainSegments(segs []segment, tolerance float64) []model.Outline {
	used := make([]bool, len(segs))

	// extend returns the far end of an unused segment touching p.
	extend := func(p model.Point2D) (model.Point2D, bool) {
		for i, s := range segs {
			if used[i] {
				continue
			}
			if pointsClose(p, s.start, tolerance) {
				used[i] = true
				return s.end, true
			}
			if pointsClose(p, s.end, tolerance) {
				used[i] = true
				return s.start, true
			}
		}
		return model.Point2D{}, false
	}

	var outlines []model.Outline
	for i, s := range segs {
		if used[i] {
			continue
		}
		used[i] = true
		chain := model.Outline{s.start, s.end}
		for {
			next, ok := extend(chain[len(chain)-1])
			if !ok {
				break
			}
			chain = append(chain, next)
		}
		if len(chain) >= 3 && pointsClose(chain[0], chain[len(chain)-1], tolerance) {
			chain = chain[:len(chain)-1]
		}
		if len(chain) >= 3 {
			outlines = append(outlines, chain)
		}
	}

	sort.SliceStable(outlines, func(i, j int) bool {
		return outlineArea(outlines[i]) > outlineArea(outlines[j])
	})
	return outlines
}

func pointsClose(a, b model.Point2D, tolerance float64) bool {
	return math.Hypot(a.X-b.X, a.Y-b.Y) <= tolerance
}

// outlineArea is the absolute shoelace area.
func outlineArea(o model.Outline) float64 {
	if len(o) < 3 {
		return 0
	}
	var twice float64
	for i, p := range o {
		q := o[(i+1)%len(o)]
		twice += p.X*q.Y - q.X*p.Y
	}
	return math.Abs(twice) / 2
}

// normalizeOutline moves the outline's bounding box to the origin.
func normalizeOutline(o model.Outline) model.Outline {
	if len(o) == 0 {
		return o
	}
	lo, _ := o.BoundingBox()
	out := make(model.Outline, len(o))
	for i, p := range o {
		out[i] = model.Point2D{X: p.X - lo.X, Y: p.Y - lo.Y}
	}
	return out
}
