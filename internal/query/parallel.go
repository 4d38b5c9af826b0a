package query

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// RunParallel runs fn once per item concurrently, bounded by jobs workers
// (jobs <= 0 picks runtime.GOMAXPROCS(0)), stopping at the first error,
// using errgroup.WithContext with SetLimit. §4.C is
// explicit that no core invariant depends on this: Engine.Query is safe to
// call from every goroutine this spawns because its cache table is
// mutex-guarded, so running queries through RunParallel or a plain loop
// produces identical results, just at different wall-clock cost.
func RunParallel(ctx context.Context, n int, jobs int, fn func(ctx context.Context, i int) error) error {
	if n == 0 {
		return nil
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, n))
	for i := 0; i < n; i++ {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			return fn(gctx, i)
		})
	}
	return g.Wait()
}
