package pipeline

import (
	"context"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/piwi3910/CubbyCut/internal/engine"
	"github.com/piwi3910/CubbyCut/internal/model"
)

// BatchResult is the outcome of one seed in a batch. Result may be set even
// when Err is, for runs whose growth got stuck.
type BatchResult struct {
	Seed   int64
	Result *Result
	Err    error
}

// BatchOptions configures RunBatch.
type BatchOptions struct {
	Options
	Seeds   []int64
	Workers int // 0 uses runtime.NumCPU
}

// SeedRange returns n consecutive seeds starting at first.
func SeedRange(first int64, n int) []int64 {
	seeds := make([]int64, n)
	for i := range seeds {
		seeds[i] = first + int64(i)
	}
	return seeds
}

// RunBatch runs the pipeline once per seed on a bounded pool of workers.
// Per-seed failures are reported in the results; only cancellation of ctx
// aborts the batch. Results are returned in seed order.
func RunBatch(ctx context.Context, shapes []*model.Shape, opts BatchOptions) ([]BatchResult, error) {
	if len(shapes) == 0 {
		return nil, engine.ErrNoShapes
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]BatchResult, len(opts.Seeds))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, seed := range opts.Seeds {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			run := opts.Options
			run.Seed = seed
			// Snapshots from concurrent runs would interleave.
			run.Progress = nil
			if run.Logger != nil {
				run.Logger = run.Logger.With("seed", seed)
			}

			res, err := Run(gctx, cloneShapes(shapes), run)
			if err != nil && gctx.Err() != nil {
				return gctx.Err()
			}
			results[i] = BatchResult{Seed: seed, Result: res, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// cloneShapes gives every seed its own shapes so no two runs share grids.
func cloneShapes(shapes []*model.Shape) []*model.Shape {
	out := make([]*model.Shape, len(shapes))
	for i, s := range shapes {
		out[i] = s.Clone()
	}
	return out
}

// Best returns the completed result with the lowest score, preferring valid
// layouts, then shorter walls. It returns nil when no seed succeeded.
func Best(results []BatchResult) *BatchResult {
	var ok []BatchResult
	for _, r := range results {
		if r.Err == nil && r.Result != nil {
			ok = append(ok, r)
		}
	}
	if len(ok) == 0 {
		return nil
	}
	sort.SliceStable(ok, func(i, j int) bool {
		a, b := ok[i].Result, ok[j].Result
		if a.Solution.Valid != b.Solution.Valid {
			return a.Solution.Valid
		}
		if a.Solution.Score != b.Solution.Score {
			return a.Solution.Score < b.Solution.Score
		}
		return a.WallLength() < b.WallLength()
	})
	return &ok[0]
}
