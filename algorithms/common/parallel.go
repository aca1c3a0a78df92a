package common

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// OptimalWorkerCount determines the number of workers for numFrames
// independent frame jobs. requested > 0 overrides the heuristic.
func OptimalWorkerCount(numFrames, requested int) int {
	if numFrames <= 0 {
		return 1
	}
	if requested > 0 {
		return min(requested, numFrames)
	}

	numCPU := runtime.NumCPU()

	// For small workloads, don't over-parallelize
	if numFrames < 100 {
		return max(1, min(numCPU/2, numFrames))
	}

	if numFrames < 1000 {
		return max(1, min(numCPU, 8))
	}

	return numCPU
}

// ParallelFrames calls fn for every frame index in [0, n) on at most
// workers goroutines. fn must only write to the output slot of its own
// index. The first error cancels the remaining frames and is returned.
func ParallelFrames(ctx context.Context, n, workers int, fn func(ctx context.Context, i int) error) error {
	if n <= 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(OptimalWorkerCount(n, workers))

	for i := range n {
		if err := gctx.Err(); err != nil {
			// frames from i on were never scheduled
			g.Go(func() error { return err })
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(gctx, i)
		})
	}

	return g.Wait()
}
