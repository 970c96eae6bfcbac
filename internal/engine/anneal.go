package engine

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/piwi3910/CubbyCut/internal/model"
)

// ErrStopped is returned by Run after Stop was called.
var ErrStopped = errors.New("anneal stopped")

// Phase is the stage of an annealing run.
type Phase int32

const (
	PhaseMultiStart Phase = iota // independent fast runs from random layouts
	PhaseRefine                  // slow cooling of the best start until valid
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseMultiStart:
		return "multi-start"
	case PhaseRefine:
		return "refine"
	default:
		return "done"
	}
}

// AnnealConfig holds parameters for the simulated annealing optimizer.
type AnnealConfig struct {
	model.AnnealSettings
	AspectRatio  model.AspectRatio
	ClusterLimit int
	Seed         int64
	Logger       *log.Logger // nil disables logging
}

// DefaultAnnealConfig returns sensible default parameters.
func DefaultAnnealConfig() AnnealConfig {
	return AnnealConfig{
		AnnealSettings: model.DefaultAnnealSettings(),
		AspectRatio:    model.AspectSquare,
		ClusterLimit:   DefaultClusterLimit,
		Seed:           1,
	}
}

// ConfigFromSettings builds an AnnealConfig from project settings.
func ConfigFromSettings(s model.Settings, seed int64, logger *log.Logger) AnnealConfig {
	return AnnealConfig{
		AnnealSettings: s.Anneal,
		AspectRatio:    s.AspectRatio,
		ClusterLimit:   s.ClusterLimit,
		Seed:           seed,
		Logger:         logger,
	}
}

// Snapshot is handed to the progress callback after every iteration.
// Solution is shared with the optimizer and must not be modified.
type Snapshot struct {
	Phase       Phase
	Start       int // multi-start index, -1 while refining
	Iteration   int
	Temperature float64
	Score       int
	Valid       bool
	Solution    *Solution
}

// annealParams is the per-run part of the schedule.
type annealParams struct {
	temperature float64
	coolingRate float64
}

// Annealer searches for a low-score valid layout of a fixed set of shapes.
type Annealer struct {
	config AnnealConfig
	shapes []*model.Shape

	stop  atomic.Bool
	phase atomic.Int32
	mu    sync.Mutex // serializes progress callbacks
}

// NewAnnealer creates an optimizer for shapes. Zero-valued schedule fields
// fall back to the defaults.
func NewAnnealer(shapes []*model.Shape, config AnnealConfig) *Annealer {
	d := model.DefaultAnnealSettings()
	c := &config.AnnealSettings
	if c.Temperature <= 0 {
		c.Temperature = d.Temperature
	}
	if c.CoolingRate <= 0 || c.CoolingRate >= 1 {
		c.CoolingRate = d.CoolingRate
	}
	if c.MinTemp <= 0 {
		c.MinTemp = d.MinTemp
	}
	if c.MaxIterations <= 0 {
		c.MaxIterations = d.MaxIterations
	}
	if c.ReheatCounter <= 0 {
		c.ReheatCounter = d.ReheatCounter
	}
	if c.ReheatingBoost <= 1 {
		c.ReheatingBoost = d.ReheatingBoost
	}
	if c.NumStarts <= 0 {
		c.NumStarts = d.NumStarts
	}
	if c.MaxRefineAttempts <= 0 {
		c.MaxRefineAttempts = d.MaxRefineAttempts
	}
	if config.ClusterLimit <= 0 {
		config.ClusterLimit = DefaultClusterLimit
	}
	return &Annealer{config: config, shapes: shapes}
}

// Stop asks a running Run to return as soon as possible.
func (a *Annealer) Stop() { a.stop.Store(true) }

// Phase returns the current phase.
func (a *Annealer) Phase() Phase { return Phase(a.phase.Load()) }

// Run performs the multi-start phase followed by refinement and returns the
// best solution found. If refinement never produces a valid layout within
// MaxRefineAttempts the best invalid solution is returned without error.
// progress may be nil; calls to it are serialized.
func (a *Annealer) Run(ctx context.Context, progress func(Snapshot)) (*Solution, error) {
	if len(a.shapes) == 0 {
		return nil, ErrNoShapes
	}
	cfg := a.config

	// Multi-start: each start gets its own rng stream so results do not
	// depend on goroutine scheduling.
	a.setPhase(PhaseMultiStart)
	n := cfg.NumStarts
	results := make([]*Solution, n)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := 0; i < n; i++ {
		g.Go(func() error {
			rng := rand.New(rand.NewSource(cfg.Seed + int64(i)))
			initial := RandomSolution(a.shapes, i, cfg.AspectRatio, cfg.ClusterLimit, rng)
			params := annealParams{
				temperature: cfg.Temperature * (1 - float64(i)/float64(n)),
				coolingRate: cfg.CoolingRate * 0.75,
			}
			res := a.anneal(gctx, rng, initial, params, i, progress)
			if res == nil {
				return a.stopErr(gctx)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	best := results[0]
	for _, r := range results[1:] {
		if r.Score < best.Score {
			best = r
		}
	}
	a.debug("multi-start finished", "start", best.StartID, "score", best.Score, "valid", best.Valid)

	// Refine: slow cooling, lower start temperature on every invalid result
	a.setPhase(PhaseRefine)
	rng := rand.New(rand.NewSource(cfg.Seed + int64(n)))
	temperature := cfg.Temperature * 0.1
	result := best
	for attempt := 1; attempt <= cfg.MaxRefineAttempts; attempt++ {
		res := a.anneal(ctx, rng, result, annealParams{temperature: temperature, coolingRate: 0.99}, -1, progress)
		if res == nil {
			return nil, a.stopErr(ctx)
		}
		result = res
		a.debug("refine pass", "attempt", attempt, "temperature", temperature, "score", result.Score, "valid", result.Valid)
		if result.Valid {
			break
		}
		temperature /= 2
	}
	if !result.Valid && cfg.Logger != nil {
		cfg.Logger.Warn("no valid layout found, returning best invalid layout",
			"attempts", cfg.MaxRefineAttempts, "score", result.Score)
	}

	a.setPhase(PhaseDone)
	return result, nil
}

// anneal runs one cooling schedule from initial and returns the best solution
// seen, or nil if the run was stopped.
func (a *Annealer) anneal(ctx context.Context, rng *rand.Rand, initial *Solution, params annealParams, start int, progress func(Snapshot)) *Solution {
	cfg := a.config
	current, best := initial, initial
	temperature := params.temperature
	coolingRate := params.coolingRate
	stuck := 0

	for iter := 0; iter < cfg.MaxIterations; iter++ {
		if a.stop.Load() || ctx.Err() != nil {
			return nil
		}
		if temperature < cfg.MinTemp {
			break
		}

		shift := calcMovementRange(temperature, params.temperature, cfg.MinTemp)
		next := current.CreateNeighbor(rng, shift)
		if acceptSolution(rng, float64(next.Score-current.Score), temperature) {
			current = next
			if current.Score < best.Score {
				best = current
				stuck = 0
				coolingRate = math.Min(coolingRate+0.01, 0.99)
			}
		}

		temperature *= coolingRate
		stuck++
		if stuck > cfg.ReheatCounter {
			temperature = math.Min(temperature*cfg.ReheatingBoost, params.temperature)
			coolingRate = params.coolingRate
			stuck = 0
			a.debug("reheat", "start", start, "iteration", iter, "temperature", temperature)
		}

		if progress != nil {
			a.mu.Lock()
			progress(Snapshot{
				Phase:       a.Phase(),
				Start:       start,
				Iteration:   iter,
				Temperature: temperature,
				Score:       current.Score,
				Valid:       current.Valid,
				Solution:    current,
			})
			a.mu.Unlock()
		}
	}
	return best
}

// calcMovementRange maps the normalized temperature linearly onto 1..5 grid steps.
func calcMovementRange(temperature, initial, minTemp float64) int {
	if initial <= minTemp {
		return 1
	}
	norm := (temperature - minTemp) / (initial - minTemp)
	norm = math.Max(0, math.Min(1, norm))
	return 1 + int(math.Round(norm*4))
}

// acceptSolution applies the Metropolis criterion.
func acceptSolution(rng *rand.Rand, delta, temperature float64) bool {
	if delta < 0 {
		return true
	}
	if temperature <= 0 {
		return false
	}
	return rng.Float64() < math.Exp(-delta/temperature)
}

func (a *Annealer) setPhase(p Phase) {
	a.phase.Store(int32(p))
	a.debug("phase", "phase", p)
}

func (a *Annealer) stopErr(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return ErrStopped
}

func (a *Annealer) debug(msg string, keyvals ...interface{}) {
	if a.config.Logger != nil {
		a.config.Logger.Debug(msg, keyvals...)
	}
}
