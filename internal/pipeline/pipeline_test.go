package pipeline

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/CubbyCut/internal/cellular"
	"github.com/piwi3910/CubbyCut/internal/engine"
	"github.com/piwi3910/CubbyCut/internal/model"
)

func newShape(t *testing.T, title string, h, w int) *model.Shape {
	t.Helper()
	s, err := model.NewShape(title, model.FilledGrid(h, w), 1)
	require.NoError(t, err)
	return s
}

// twoFlatShapes is an 8x3 layout of two 2x1 shapes side by side on the floor.
func twoFlatShapes(t *testing.T) *engine.Solution {
	t.Helper()
	sol := engine.NewSolution([]model.Placement{
		model.NewPlacement(newShape(t, "Kettle", 4, 8), 0, 0),
		model.NewPlacement(newShape(t, "Toaster", 4, 8), 4, 0),
	}, 0, model.AspectSquare, 0)
	require.True(t, sol.Valid)
	return sol
}

// quickSettings keeps annealing short enough for tests.
func quickSettings() model.Settings {
	s := model.DefaultSettings()
	s.Anneal.NumStarts = 2
	s.Anneal.MaxIterations = 150
	s.Anneal.MaxRefineAttempts = 2
	return s
}

func testShapes(t *testing.T) []*model.Shape {
	return []*model.Shape{
		newShape(t, "Mug", 4, 4),
		newShape(t, "Jar", 8, 4),
		newShape(t, "Tin", 4, 8),
	}
}

func TestGrow_TwoFlatShapes(t *testing.T) {
	res, err := Grow(twoFlatShapes(t), Options{Settings: model.DefaultSettings(), Seed: 3})
	require.NoError(t, err)

	assert.Nil(t, res.Stuck)
	assert.Equal(t, int64(3), res.Seed)
	assert.Len(t, res.Runs, 6)
	assert.InDelta(t, 800.0, res.WallLength(), 1e-9)
	require.Len(t, res.Cubbies, 2)
	assert.Equal(t, 8, res.Cubbies[0].Area)
	assert.Equal(t, 8, res.Cubbies[1].Area)
	assert.InDelta(t, 16.0/24.0*100, res.Coverage(), 1e-9)
	assert.NotEmpty(t, res.Walls)
	assert.Equal(t, 0, res.Cellular.NumAlive())
}

func TestRun_NoShapes(t *testing.T) {
	_, err := Run(context.Background(), nil, Options{Settings: quickSettings()})
	assert.ErrorIs(t, err, engine.ErrNoShapes)
}

func TestRun_ProducesGrownLayout(t *testing.T) {
	calls := 0
	res, err := Run(context.Background(), testShapes(t), Options{
		Settings: quickSettings(),
		Seed:     11,
		Progress: func(engine.Snapshot) { calls++ },
	})
	var stuck *cellular.StuckError
	if err != nil {
		require.True(t, errors.As(err, &stuck), "unexpected error: %v", err)
	}
	require.NotNil(t, res)
	require.NotNil(t, res.Solution)

	assert.Positive(t, calls)
	assert.Len(t, res.Solution.Placements, 3)
	assert.Equal(t, stuck, res.Stuck)
	if err == nil {
		assert.Equal(t, 0, res.Cellular.NumAlive())
		assert.Positive(t, res.WallLength())
	}
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, testShapes(t), Options{Settings: quickSettings()})
	assert.Error(t, err)
}

func TestSeedRange(t *testing.T) {
	assert.Equal(t, []int64{5, 6, 7}, SeedRange(5, 3))
	assert.Empty(t, SeedRange(1, 0))
}

func TestRunBatch_SeedOrder(t *testing.T) {
	seeds := SeedRange(20, 3)
	results, err := RunBatch(context.Background(), testShapes(t), BatchOptions{
		Options: Options{Settings: quickSettings()},
		Seeds:   seeds,
		Workers: 2,
	})
	require.NoError(t, err)
	require.Len(t, results, 3)
	for i, r := range results {
		assert.Equal(t, seeds[i], r.Seed)
		require.NotNil(t, r.Result)
		assert.Equal(t, seeds[i], r.Result.Seed)
	}
}

func TestRunBatch_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := RunBatch(ctx, testShapes(t), BatchOptions{
		Options: Options{Settings: quickSettings()},
		Seeds:   SeedRange(1, 4),
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunBatch_NoShapes(t *testing.T) {
	_, err := RunBatch(context.Background(), nil, BatchOptions{Seeds: SeedRange(1, 2)})
	assert.ErrorIs(t, err, engine.ErrNoShapes)
}

func TestBest(t *testing.T) {
	mk := func(seed int64, score int, valid bool, length float64) BatchResult {
		return BatchResult{Seed: seed, Result: &Result{
			Seed:     seed,
			Solution: &engine.Solution{Score: score, Valid: valid},
			Estimate: model.BoardEstimate{TotalLength: length},
		}}
	}

	results := []BatchResult{
		mk(1, 10, false, 100),
		mk(2, 40, true, 900),
		mk(3, 40, true, 500),
		{Seed: 4, Err: errors.New("boom")},
		mk(5, 60, true, 100),
	}
	best := Best(results)
	require.NotNil(t, best)
	assert.Equal(t, int64(3), best.Seed)

	assert.Nil(t, Best(nil))
	assert.Nil(t, Best([]BatchResult{{Seed: 1, Err: errors.New("boom")}}))
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, Summary{}, summarize(nil))
	assert.Equal(t, Summary{Mean: 4}, summarize([]float64{4}))

	s := summarize([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.InDelta(t, 5.0, s.Mean, 1e-9)
	assert.InDelta(t, math.Sqrt(32.0/7.0), s.StdDev, 1e-9)
}

func TestCompareGrowth(t *testing.T) {
	sols := []*engine.Solution{twoFlatShapes(t), twoFlatShapes(t)}
	stats := CompareGrowth(sols, cellular.DefaultConfig())
	require.Len(t, stats, 2)

	look := stats[0]
	assert.Equal(t, PolicyLookahead, look.Policy)
	assert.Equal(t, 2, look.Runs)
	assert.Equal(t, 0, look.Stuck)
	assert.InDelta(t, 32.0, look.WallLength.Mean, 1e-9)
	assert.Zero(t, look.WallLength.StdDev)
	assert.InDelta(t, 64.0, look.TotalWall, 1e-9)
	assert.InDelta(t, 4.0, look.Generations.Mean, 1e-9)

	base := stats[1]
	assert.Equal(t, PolicyBaseline, base.Policy)
	assert.Equal(t, 2, base.Runs)
	assert.Equal(t, 0, base.Stuck)
	assert.InDelta(t, 2.0, base.Generations.Mean, 1e-9)
	assert.Positive(t, base.WallLength.Mean)
}

func TestCompareScenarios(t *testing.T) {
	results, err := CompareScenarios(context.Background(), testShapes(t), Options{Settings: quickSettings(), Seed: 2})
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "Current Settings", results[0].Scenario.Name)
	for _, r := range results {
		assert.NotNil(t, r.Solution)
	}

	_, err = CompareScenarios(context.Background(), nil, Options{Settings: quickSettings()})
	assert.ErrorIs(t, err, engine.ErrNoShapes)
}

func TestGrowBaseline_TwoFlatShapes(t *testing.T) {
	res, br := GrowBaseline(twoFlatShapes(t), Options{Settings: model.DefaultSettings()})
	assert.Equal(t, 2, br.Ticks)
	assert.False(t, br.Capped)
	assert.Equal(t, 0, res.Cellular.NumAlive())
	assert.NotEmpty(t, res.Runs)
}
