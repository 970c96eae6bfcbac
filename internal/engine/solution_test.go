package engine

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/CubbyCut/internal/model"
)

// squareShape is a 1x1 low-res shape with a 3x3 buffer.
func squareShape(t *testing.T, title string) *model.Shape {
	t.Helper()
	s, err := model.NewShape(title, model.FilledGrid(4, 4), 1)
	require.NoError(t, err)
	return s
}

// flatShape is a 2x1 low-res shape with a 4x3 buffer.
func flatShape(t *testing.T, title string) *model.Shape {
	t.Helper()
	s, err := model.NewShape(title, model.FilledGrid(4, 8), 1)
	require.NoError(t, err)
	return s
}

func placed(s *model.Shape, x, y int) model.Placement {
	return model.NewPlacement(s, x, y)
}

func TestMakeLayout_TrimsAndRebases(t *testing.T) {
	sol := NewSolution([]model.Placement{placed(squareShape(t, "a"), 5, 3)}, 0, model.AspectSquare, 0)

	assert.Equal(t, 3, sol.Layout.Width())
	assert.Equal(t, 3, sol.Layout.Height())
	assert.Equal(t, 0, sol.Placements[0].PosX)
	assert.Equal(t, 0, sol.Placements[0].PosY)
	assert.Equal(t, "0-0", sol.Placements[0].ID)
	assert.Equal(t, DefaultClusterLimit, sol.ClusterLimit)

	assert.True(t, sol.Layout[1][1].IsShape)
	assert.False(t, sol.Layout[1][1].IsBuffer)
	assert.True(t, sol.Layout[0][0].IsBuffer)
	assert.False(t, sol.Layout[0][0].IsShape)
}

func TestMakeLayout_GrowsToFitAllShapes(t *testing.T) {
	sol := NewSolution([]model.Placement{
		placed(squareShape(t, "a"), 0, 0),
		placed(squareShape(t, "b"), 10, 4),
	}, 0, model.AspectSquare, 0)

	assert.Equal(t, 13, sol.Layout.Width())
	assert.Equal(t, 7, sol.Layout.Height())
	assert.Equal(t, "4-10", sol.Placements[1].ID)
	assert.Equal(t, []int{1}, sol.Layout[5][11].Occupants)
}

func TestMakeLayout_NegativePositionsAreShifted(t *testing.T) {
	sol := NewSolution([]model.Placement{
		placed(squareShape(t, "a"), -2, -1),
		placed(squareShape(t, "b"), 3, 0),
	}, 0, model.AspectSquare, 0)

	assert.Equal(t, 0, sol.Placements[0].PosX)
	assert.Equal(t, 0, sol.Placements[0].PosY)
	assert.Equal(t, 5, sol.Placements[1].PosX)
	assert.Equal(t, 1, sol.Placements[1].PosY)
}

func TestMakeLayout_SkipsDisabledPlacements(t *testing.T) {
	b := placed(squareShape(t, "b"), 0, 0)
	b.Enabled = false
	sol := NewSolution([]model.Placement{placed(squareShape(t, "a"), 0, 0), b}, 0, model.AspectSquare, 0)

	assert.True(t, sol.Valid)
	assert.Equal(t, 9, sol.Layout.Width()*sol.Layout.Height())
	assert.Len(t, sol.Shapes(), 1)
}

func TestCalcScore_OverlapScoresHigherThanSeparated(t *testing.T) {
	a, b := squareShape(t, "a"), squareShape(t, "b")

	stacked := NewSolution([]model.Placement{placed(a, 0, 0), placed(b, 0, 0)}, 0, model.AspectSquare, 0)
	shifted := NewSolution([]model.Placement{placed(a, 0, 0), placed(b, 2, 0)}, 0, model.AspectSquare, 0)

	assert.False(t, stacked.Valid)
	assert.Equal(t, 72, stacked.Score, "9 overlapping cells times 2^3 plus 0.9 space")
	assert.Greater(t, stacked.Score, shifted.Score)

	apart := NewSolution([]model.Placement{placed(a, 0, 0), placed(b, 3, 0)}, 0, model.AspectSquare, 0)
	assert.True(t, apart.Valid)
	assert.Equal(t, 0.0, apart.Breakdown.Overlap)
	assert.InDelta(t, 20.0, apart.Breakdown.Aspect, 1e-9)
	assert.Equal(t, 21, apart.Score)
}

func TestCalcScore_IsPure(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	shapes := []*model.Shape{squareShape(t, "a"), flatShape(t, "b"), squareShape(t, "c")}
	for i := 0; i < 20; i++ {
		sol := RandomSolution(shapes, i, model.AspectWide, 0, rng)
		first, breakdown := sol.Score, sol.Breakdown
		assert.Equal(t, first, sol.CalcScore())
		assert.Equal(t, breakdown, sol.Breakdown)
	}
}

func TestCalcScore_AnnealScores(t *testing.T) {
	sol := NewSolution([]model.Placement{
		placed(squareShape(t, "a"), 0, 0),
		placed(squareShape(t, "b"), 4, 0),
	}, 0, model.AspectSquare, 0)

	require.Equal(t, 7, sol.Layout.Width())
	assert.Equal(t, 4, sol.Layout[0][3].AnnealScore)
	assert.Equal(t, 2, sol.Layout[1][3].AnnealScore)
	assert.Equal(t, 4, sol.Layout[2][3].AnnealScore)
	assert.Equal(t, 0, sol.Layout[1][1].AnnealScore)
}

func TestCalcScore_FloatingShapeIsInvalid(t *testing.T) {
	sol := NewSolution([]model.Placement{
		placed(squareShape(t, "a"), 0, 0),
		placed(squareShape(t, "b"), 5, 3),
	}, 0, model.AspectSquare, 0)

	assert.False(t, sol.Valid)
	assert.Equal(t, 24.0, sol.Breakdown.BottomLift, "posY 3 times 2^3")
	assert.Greater(t, sol.Breakdown.BottomEmptyRow, 0.0)
}

func TestCalcScore_StackedShapeIsValid(t *testing.T) {
	sol := NewSolution([]model.Placement{
		placed(squareShape(t, "a"), 0, 0),
		placed(squareShape(t, "b"), 0, 3),
	}, 0, model.AspectTall, 0)

	assert.True(t, sol.Valid)
	assert.Equal(t, 0.0, sol.Breakdown.BottomLift)
	assert.Equal(t, 0.0, sol.Breakdown.Aspect, "3x6 is exactly tall")
}

// countFloating re-derives the floating bottom shapes straight from the layout.
func countFloating(sol *Solution) int {
	floating := 0
	for _, p := range sol.Placements {
		if !p.Enabled || p.PosY == 0 {
			continue
		}
		supported := false
		for bx := 0; bx < p.Width(); bx++ {
			lowest := 0
			for !p.Shape.Buffer[lowest][bx] {
				lowest++
			}
			for y := 0; y < p.PosY+lowest; y++ {
				if sol.Layout.Occupied(y, p.PosX+bx) {
					supported = true
				}
			}
		}
		if !supported {
			floating++
		}
	}
	return floating
}

func TestCalcScore_ValidIffNoOverlapAndNoFloating(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	shapes := []*model.Shape{squareShape(t, "a"), squareShape(t, "b"), flatShape(t, "c"), flatShape(t, "d")}

	for i := 0; i < 100; i++ {
		sol := RandomSolution(shapes, i, model.AspectSquare, 0, rng)
		overlap := 0
		for _, row := range sol.Layout {
			for _, cell := range row {
				if len(cell.Occupants) > 1 {
					overlap++
				}
			}
		}
		expected := overlap == 0 && countFloating(sol) == 0
		assert.Equal(t, expected, sol.Valid, "layout %d", i)
	}
}

func TestCreateNeighbor_PreservesShapesAndStartID(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	shapes := []*model.Shape{squareShape(t, "a"), flatShape(t, "b"), squareShape(t, "c")}
	sol := RandomSolution(shapes, 4, model.AspectSquare, 0, rng)
	before := append([]model.Placement(nil), sol.Placements...)

	current := sol
	for i := 0; i < 200; i++ {
		next := current.CreateNeighbor(rng, 1+rng.Intn(5))
		require.Len(t, next.Placements, len(shapes))
		assert.Equal(t, 4, next.StartID)
		for j, p := range next.Placements {
			assert.Same(t, shapes[j], p.Shape)
			assert.GreaterOrEqual(t, p.PosX, 0)
			assert.GreaterOrEqual(t, p.PosY, 0)
		}
		current = next
	}
	assert.Equal(t, before, sol.Placements, "neighbours never modify their origin")
}

func TestCreateNeighbor_SingleShape(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	sol := NewSolution([]model.Placement{placed(squareShape(t, "only"), 0, 0)}, 0, model.AspectSquare, 0)
	for i := 0; i < 50; i++ {
		next := sol.CreateNeighbor(rng, 3)
		assert.Equal(t, 0, next.Placements[0].PosX)
		assert.Equal(t, 0, next.Placements[0].PosY)
		assert.True(t, next.Valid)
	}
}

func TestRandomSolution_FitsInsideSquare(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	shapes := []*model.Shape{squareShape(t, "a"), squareShape(t, "b"), squareShape(t, "c"), squareShape(t, "d")}
	// 4 shapes of 1 + 9 cells: side = ceil(sqrt(80)) = 9
	for i := 0; i < 20; i++ {
		sol := RandomSolution(shapes, i, model.AspectSquare, 0, rng)
		assert.LessOrEqual(t, sol.Layout.Width(), 9)
		assert.LessOrEqual(t, sol.Layout.Height(), 9)
		assert.Equal(t, i, sol.StartID)
	}
}

// cornerShape is an L of three low-res cells without clearance.
func cornerShape(t *testing.T, title string) *model.Shape {
	t.Helper()
	g := model.FilledGrid(8, 8)
	for y := 4; y < 8; y++ {
		for x := 4; x < 8; x++ {
			g[y][x] = false
		}
	}
	s, err := model.NewShape(title, g, 0)
	require.NoError(t, err)
	require.Equal(t, 3, s.Buffer.Count())
	return s
}

func TestRandomBoxSide_CountsCellsNotBoundingBoxes(t *testing.T) {
	sol := &Solution{Placements: []model.Placement{
		placed(cornerShape(t, "a"), 0, 0),
		placed(cornerShape(t, "b"), 0, 0),
		placed(cornerShape(t, "c"), 0, 0),
	}}
	// 3 shapes of 3 + 3 cells: ceil(sqrt(36)) = 6; bounding boxes would give 5
	assert.Equal(t, 6, sol.randomBoxSide())

	sol.Placements[1].Enabled = false
	sol.Placements[2].Enabled = false
	// ceil(sqrt(12)) = 4
	assert.Equal(t, 4, sol.randomBoxSide())

	big := &Solution{Placements: []model.Placement{placed(flatShape(t, "wide"), 0, 0)}}
	// 2 + 12 cells: ceil(sqrt(28)) = 6, wider than the 4 cell buffer
	assert.Equal(t, 6, big.randomBoxSide())
}

func TestCalcScore_Cluster(t *testing.T) {
	a, b := squareShape(t, "a"), squareShape(t, "b")

	// A two column gap: the gap's corner cells score 6, its middle row 5
	gap := []model.Placement{placed(a, 0, 0), placed(b, 5, 0)}
	sol := NewSolution(gap, 0, model.AspectSquare, 0)
	assert.Equal(t, 6, sol.Layout[0][3].AnnealScore)
	assert.Equal(t, 5, sol.Layout[1][3].AnnealScore)
	assert.InDelta(t, 10.0, sol.Breakdown.Cluster, 1e-9, "four pairs of 6s weigh 2, two of 5s weigh 1")

	strict := NewSolution(gap, 0, model.AspectSquare, 6)
	assert.InDelta(t, 4.0, strict.Breakdown.Cluster, 1e-9)

	// A four column gap has fully open cells in its middle columns, which
	// also pay for every missing neighbour at the layout edge.
	wide := NewSolution([]model.Placement{placed(a, 0, 0), placed(b, 7, 0)}, 0, model.AspectSquare, 8)
	assert.Equal(t, 8, wide.Layout[0][4].AnnealScore)
	assert.InDelta(t, 34.0, wide.Breakdown.Cluster, 1e-9)

	packed := NewSolution([]model.Placement{placed(a, 0, 0), placed(b, 3, 0)}, 0, model.AspectSquare, 0)
	assert.Zero(t, packed.Breakdown.Cluster)
}

func TestCalcScore_BottomEmptyRow(t *testing.T) {
	// The flat shape rests on the square but leaves row 3 empty beneath it
	sol := NewSolution([]model.Placement{
		placed(squareShape(t, "a"), 0, 0),
		placed(flatShape(t, "b"), 0, 4),
	}, 0, model.AspectSquare, 0)

	require.True(t, sol.Valid)
	assert.Zero(t, sol.Breakdown.BottomLift)
	row := []int{4, 2, 3, 5}
	for x, want := range row {
		assert.Equal(t, want, sol.Layout[3][x].AnnealScore, "x=%d", x)
	}
	assert.InDelta(t, 14*2/1.5, sol.Breakdown.BottomEmptyRow, 1e-9)

	touching := NewSolution([]model.Placement{
		placed(squareShape(t, "a"), 0, 0),
		placed(flatShape(t, "b"), 0, 3),
	}, 0, model.AspectSquare, 0)
	assert.Zero(t, touching.Breakdown.BottomEmptyRow)
}

func TestCalcScore_Aspect(t *testing.T) {
	a, b := squareShape(t, "a"), squareShape(t, "b")
	single := []model.Placement{placed(a, 0, 0)}
	pair := []model.Placement{placed(a, 0, 0), placed(b, 3, 0)}

	tests := []struct {
		name       string
		placements []model.Placement
		pref       model.AspectRatio
		want       float64
	}{
		{"square wants square", single, model.AspectSquare, 0},
		{"square wants wide", single, model.AspectWide, 5},
		{"square wants tall", single, model.AspectTall, 5},
		{"6x3 wants wide", pair, model.AspectWide, 0},
		{"6x3 wants square", pair, model.AspectSquare, 20},
		{"6x3 wants tall", pair, model.AspectTall, 180},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sol := NewSolution(tt.placements, 0, tt.pref, 0)
			assert.InDelta(t, tt.want, sol.Breakdown.Aspect, 1e-9)
		})
	}
}
