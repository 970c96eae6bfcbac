package engine

import (
	"context"
	"fmt"

	"github.com/piwi3910/CubbyCut/internal/model"
)

// ComparisonScenario defines a named annealing configuration to compare.
type ComparisonScenario struct {
	Name   string
	Config AnnealConfig
}

// ComparisonResult holds the optimized layout and computed statistics
// for a single scenario.
type ComparisonResult struct {
	Scenario    ComparisonScenario
	Solution    *Solution
	Score       int
	Valid       bool
	Width       int
	Height      int
	FillPercent float64 // share of layout cells covered by shapes or buffers
}

// CompareScenarios anneals the same shapes under each scenario and returns
// the results in scenario order.
func CompareScenarios(ctx context.Context, scenarios []ComparisonScenario, shapes []*model.Shape) ([]ComparisonResult, error) {
	results := make([]ComparisonResult, 0, len(scenarios))

	for _, scenario := range scenarios {
		sol, err := NewAnnealer(shapes, scenario.Config).Run(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("scenario %q: %w", scenario.Name, err)
		}

		occupied := 0
		for _, row := range sol.Layout {
			for _, cell := range row {
				if cell.Occupied() {
					occupied++
				}
			}
		}
		fill := 0.0
		if total := sol.Layout.Width() * sol.Layout.Height(); total > 0 {
			fill = float64(occupied) / float64(total) * 100.0
		}

		results = append(results, ComparisonResult{
			Scenario:    scenario,
			Solution:    sol,
			Score:       sol.Score,
			Valid:       sol.Valid,
			Width:       sol.Layout.Width(),
			Height:      sol.Layout.Height(),
			FillPercent: fill,
		})
	}

	return results, nil
}

// BuildDefaultScenarios generates what-if variations of the base configuration:
// the other aspect ratio preferences, a stricter void penalty and a cheaper
// search with fewer starts.
func BuildDefaultScenarios(base AnnealConfig) []ComparisonScenario {
	scenarios := []ComparisonScenario{
		{Name: "Current Settings", Config: base},
	}

	for _, pref := range []model.AspectRatio{model.AspectSquare, model.AspectWide, model.AspectTall} {
		if pref == base.AspectRatio || (base.AspectRatio == "" && pref == model.AspectSquare) {
			continue
		}
		alt := base
		alt.AspectRatio = pref
		scenarios = append(scenarios, ComparisonScenario{
			Name:   fmt.Sprintf("Aspect %s", pref),
			Config: alt,
		})
	}

	if base.ClusterLimit > 1 {
		strict := base
		strict.ClusterLimit = base.ClusterLimit - 1
		scenarios = append(scenarios, ComparisonScenario{
			Name:   fmt.Sprintf("Cluster limit %d", strict.ClusterLimit),
			Config: strict,
		})
	}

	if base.NumStarts > 2 {
		quick := base
		quick.NumStarts = base.NumStarts / 2
		scenarios = append(scenarios, ComparisonScenario{
			Name:   fmt.Sprintf("%d starts (half)", quick.NumStarts),
			Config: quick,
		})
	}

	return scenarios
}
