package pipeline

import (
	"context"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/piwi3910/CubbyCut/internal/cellular"
	"github.com/piwi3910/CubbyCut/internal/engine"
	"github.com/piwi3910/CubbyCut/internal/model"
)

// Growth policy names used in GrowthStats.
const (
	PolicyLookahead = "lookahead"
	PolicyBaseline  = "baseline"
)

// Summary is the mean and sample standard deviation of a measurement.
type Summary struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
}

func summarize(x []float64) Summary {
	switch len(x) {
	case 0:
		return Summary{}
	case 1:
		return Summary{Mean: x[0]}
	}
	mean, std := stat.MeanStdDev(x, nil)
	return Summary{Mean: mean, StdDev: std}
}

// GrowthStats aggregates one growth policy over a set of solutions.
// Runs that got stuck, or hit the baseline tick limit, count towards Stuck
// and are left out of the summaries.
type GrowthStats struct {
	Policy      string  `json:"policy"`
	Runs        int     `json:"runs"`
	Stuck       int     `json:"stuck"`
	WallLength  Summary `json:"wall_length"` // low-res cell units
	Coverage    Summary `json:"coverage"`    // percent of layout cells in a cubby
	Generations Summary `json:"generations"`
	TotalWall   float64 `json:"total_wall"`
}

type growthSample struct {
	wall, coverage, generations []float64
}

func (s *growthSample) add(c *cellular.Cellular) {
	length := 0
	for _, r := range c.Runs() {
		length += r.Length
	}
	s.wall = append(s.wall, float64(length))
	s.coverage = append(s.coverage, coverage(c.Solution(), c.Cubbies()))
	s.generations = append(s.generations, float64(c.Generation()))
}

func (s *growthSample) stats(policy string, runs, stuck int) GrowthStats {
	return GrowthStats{
		Policy:      policy,
		Runs:        runs,
		Stuck:       stuck,
		WallLength:  summarize(s.wall),
		Coverage:    summarize(s.coverage),
		Generations: summarize(s.generations),
		TotalWall:   floats.Sum(s.wall),
	}
}

// CompareGrowth grows walls on every solution with both the lookahead policy
// and the baseline policy and returns their statistics, lookahead first.
func CompareGrowth(solutions []*engine.Solution, config cellular.Config) []GrowthStats {
	var look, base growthSample
	lookStuck, baseStuck := 0, 0

	for _, sol := range solutions {
		c := cellular.New(sol, config)
		if err := c.Grow(); err != nil {
			lookStuck++
		} else {
			look.add(c)
		}

		b := cellular.New(sol, config)
		if res := b.GrowBaseline(); res.Capped {
			baseStuck++
		} else {
			base.add(b)
		}
	}

	return []GrowthStats{
		look.stats(PolicyLookahead, len(solutions), lookStuck),
		base.stats(PolicyBaseline, len(solutions), baseStuck),
	}
}

// CompareScenarios anneals shapes under the default what-if scenarios derived
// from settings.
func CompareScenarios(ctx context.Context, shapes []*model.Shape, opts Options) ([]engine.ComparisonResult, error) {
	if len(shapes) == 0 {
		return nil, engine.ErrNoShapes
	}
	base := engine.ConfigFromSettings(opts.Settings, opts.Seed, opts.Logger)
	return engine.CompareScenarios(ctx, engine.BuildDefaultScenarios(base), shapes)
}
