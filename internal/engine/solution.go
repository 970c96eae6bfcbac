package engine

import (
	"errors"
	"math"
	"math/rand"

	"github.com/piwi3910/CubbyCut/internal/model"
)

// ErrNoShapes is returned when a run is started without any shapes.
var ErrNoShapes = errors.New("no shapes to place")

// DefaultClusterLimit is the anneal score from which empty cells count as a void.
const DefaultClusterLimit = 5

// Solution is one candidate packing of shapes into a shared grid.
// Score and Valid are only meaningful right after MakeLayout and CalcScore.
type Solution struct {
	Placements      []model.Placement
	Layout          Layout
	Score           int
	Valid           bool
	StartID         int
	AspectRatioPref model.AspectRatio
	ClusterLimit    int
	Breakdown       ScoreBreakdown
}

// NewSolution builds and scores a layout from the given placements.
// The placements slice is copied; shapes are shared.
func NewSolution(placements []model.Placement, startID int, pref model.AspectRatio, clusterLimit int) *Solution {
	if clusterLimit <= 0 {
		clusterLimit = DefaultClusterLimit
	}
	s := &Solution{
		Placements:      append([]model.Placement(nil), placements...),
		StartID:         startID,
		AspectRatioPref: pref,
		ClusterLimit:    clusterLimit,
	}
	s.MakeLayout()
	s.CalcScore()
	return s
}

// RandomSolution places every shape uniformly at random inside a square whose
// area is twice the total of shape and buffer cells.
func RandomSolution(shapes []*model.Shape, startID int, pref model.AspectRatio, clusterLimit int, rng *rand.Rand) *Solution {
	placements := make([]model.Placement, len(shapes))
	for i, sh := range shapes {
		placements[i] = model.NewPlacement(sh, 0, 0)
	}
	s := &Solution{
		Placements:      placements,
		StartID:         startID,
		AspectRatioPref: pref,
		ClusterLimit:    clusterLimit,
	}
	if s.ClusterLimit <= 0 {
		s.ClusterLimit = DefaultClusterLimit
	}
	s.RandomLayout(rng)
	return s
}

// RandomLayout scatters the placements over a fresh square bounding box and
// rebuilds the layout.
func (s *Solution) RandomLayout(rng *rand.Rand) {
	side := s.randomBoxSide()
	for i := range s.Placements {
		p := &s.Placements[i]
		if !p.Enabled {
			continue
		}
		p.PosX = rng.Intn(side - p.Width() + 1)
		p.PosY = rng.Intn(side - p.Height() + 1)
	}
	s.MakeLayout()
	s.CalcScore()
}

// randomBoxSide is ceil(sqrt(2 * cells)) over the low-res and buffer cells of
// the enabled shapes, but never smaller than the largest buffer side.
func (s *Solution) randomBoxSide() int {
	cells, maxSide := 0, 0
	for _, p := range s.Placements {
		if !p.Enabled {
			continue
		}
		cells += p.Shape.LowRes.Count() + p.Shape.Buffer.Count()
		maxSide = max(maxSide, p.Width(), p.Height())
	}
	side := int(math.Ceil(math.Sqrt(2 * float64(cells))))
	return max(side, maxSide)
}

// Clone copies the placements so the clone can be moved independently.
// The layout is not copied.
func (s *Solution) Clone() *Solution {
	return &Solution{
		Placements:      append([]model.Placement(nil), s.Placements...),
		Score:           s.Score,
		Valid:           s.Valid,
		StartID:         s.StartID,
		AspectRatioPref: s.AspectRatioPref,
		ClusterLimit:    s.ClusterLimit,
		Breakdown:       s.Breakdown,
	}
}

// compass lists the eight shift directions as (dx, dy).
var compass = [8][2]int{
	{0, 1}, {1, 1}, {1, 0}, {1, -1},
	{0, -1}, {-1, -1}, {-1, 0}, {-1, 1},
}

// CreateNeighbor returns a new solution with one shape moved: either shifted
// by maxShift in one of eight directions or swapped with another shape.
// The receiver is not modified. There must be at least one placement.
func (s *Solution) CreateNeighbor(rng *rand.Rand, maxShift int) *Solution {
	next := s.Clone()
	ps := next.Placements

	i := rng.Intn(len(ps))
	move := rng.Intn(len(compass) + 1)
	if move < len(compass) {
		ps[i].PosX += compass[move][0] * maxShift
		ps[i].PosY += compass[move][1] * maxShift
	} else if len(ps) > 1 {
		j := rng.Intn(len(ps) - 1)
		if j >= i {
			j++
		}
		ps[i].PosX, ps[j].PosX = ps[j].PosX, ps[i].PosX
		ps[i].PosY, ps[j].PosY = ps[j].PosY, ps[i].PosY
	}

	next.MakeLayout()
	next.CalcScore()
	return next
}

// Shapes returns the shapes of the enabled placements, in placement order.
func (s *Solution) Shapes() []*model.Shape {
	var out []*model.Shape
	for _, p := range s.Placements {
		if p.Enabled {
			out = append(out, p.Shape)
		}
	}
	return out
}
