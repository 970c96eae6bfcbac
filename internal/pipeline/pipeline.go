// Package pipeline chains annealing, wall growth and cubby measurement into
// single runs and concurrent batches.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/piwi3910/CubbyCut/internal/cellular"
	"github.com/piwi3910/CubbyCut/internal/engine"
	"github.com/piwi3910/CubbyCut/internal/model"
)

// Options configures a pipeline run.
type Options struct {
	Settings model.Settings
	Seed     int64
	Logger   *log.Logger           // nil disables logging
	Progress func(engine.Snapshot) // optional anneal progress callback
}

// Result is the outcome of one pipeline run.
type Result struct {
	Seed     int64
	Solution *engine.Solution
	Cellular *cellular.Cellular
	Walls    []cellular.WallSegment
	Runs     []model.WallRun
	Cubbies  []cellular.Cubby
	Estimate model.BoardEstimate
	Stuck    *cellular.StuckError // set when growth halted on a stuck front
	Anneal   time.Duration
	Growth   time.Duration
}

// WallLength is the total wall length in mm.
func (r *Result) WallLength() float64 {
	return r.Estimate.TotalLength
}

// Coverage is the share of layout cells inside some cubby, in percent.
func (r *Result) Coverage() float64 {
	return coverage(r.Solution, r.Cubbies)
}

func coverage(sol *engine.Solution, cubbies []cellular.Cubby) float64 {
	total := sol.Layout.Width() * sol.Layout.Height()
	if total == 0 {
		return 0
	}
	covered := 0
	for _, cb := range cubbies {
		covered += cb.Area
	}
	return float64(covered) / float64(total) * 100
}

// Run anneals shapes into a layout and grows walls around it. When growth
// stops on a stuck front the partial result is returned together with the
// *cellular.StuckError.
func Run(ctx context.Context, shapes []*model.Shape, opts Options) (*Result, error) {
	if len(shapes) == 0 {
		return nil, engine.ErrNoShapes
	}

	start := time.Now()
	annealer := engine.NewAnnealer(shapes, engine.ConfigFromSettings(opts.Settings, opts.Seed, opts.Logger))
	sol, err := annealer.Run(ctx, opts.Progress)
	if err != nil {
		return nil, fmt.Errorf("failed to anneal layout: %w", err)
	}
	annealTime := time.Since(start)
	if opts.Logger != nil {
		opts.Logger.Debug("annealed", "seed", opts.Seed, "score", sol.Score, "valid", sol.Valid,
			"width", sol.Layout.Width(), "height", sol.Layout.Height(), "elapsed", annealTime)
	}

	res, err := Grow(sol, opts)
	res.Anneal = annealTime
	return res, err
}

// Grow grows walls around an existing solution.
func Grow(sol *engine.Solution, opts Options) (*Result, error) {
	start := time.Now()
	c := cellular.New(sol, cellular.Config{
		LookaheadDepth: opts.Settings.LookaheadDepth,
		Logger:         opts.Logger,
	})
	growErr := c.Grow()

	res := collect(c, opts.Settings)
	res.Seed = opts.Seed
	res.Growth = time.Since(start)

	var stuck *cellular.StuckError
	if errors.As(growErr, &stuck) {
		res.Stuck = stuck
		if opts.Logger != nil {
			opts.Logger.Warn("wall growth stuck", "seed", opts.Seed, "generation", stuck.Generation,
				"y", stuck.Y, "x", stuck.X, "strain", stuck.Strain)
		}
		return res, fmt.Errorf("failed to grow walls: %w", growErr)
	}
	if growErr != nil {
		return res, fmt.Errorf("failed to grow walls: %w", growErr)
	}

	if opts.Logger != nil {
		opts.Logger.Debug("walls grown", "seed", opts.Seed, "generations", c.Generation(),
			"segments", len(res.Walls), "boards", len(res.Runs), "elapsed", res.Growth)
	}
	return res, nil
}

// collect measures a grown (or partially grown) cellular model.
func collect(c *cellular.Cellular, settings model.Settings) *Result {
	runs := c.Runs()
	return &Result{
		Solution: c.Solution(),
		Cellular: c,
		Walls:    c.Walls(),
		Runs:     runs,
		Cubbies:  c.Cubbies(),
		Estimate: model.CalculateBoardEstimate(runs, settings.CellSize, settings.StockLength,
			settings.KerfWidth, settings.WastePercent, settings.PricePerBoard),
	}
}

// GrowBaseline grows walls around sol with the baseline comparison policy
// instead of the lookahead.
func GrowBaseline(sol *engine.Solution, opts Options) (*Result, cellular.BaselineResult) {
	start := time.Now()
	c := cellular.New(sol, cellular.Config{
		LookaheadDepth: opts.Settings.LookaheadDepth,
		Logger:         opts.Logger,
	})
	br := c.GrowBaseline()

	res := collect(c, opts.Settings)
	res.Seed = opts.Seed
	res.Growth = time.Since(start)
	if opts.Logger != nil {
		opts.Logger.Debug("baseline walls grown", "ticks", br.Ticks, "stuck", br.Stuck, "capped", br.Capped)
	}
	return res, br
}
