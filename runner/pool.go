// Package runner executes batches of independent jobs with bounded
// parallelism and drives the external collaborators, the FreeFem++ solver
// and the Ghostscript converter.
package runner

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Result is one worker outcome. Message carries the failure reason and is
// ignored on success.
type Result struct {
	OK      bool
	Message string
}

// Worker processes a single item. Operational failures are reported through
// Result, not panics; the pool never aborts the batch on one bad item.
type Worker[T any] func(ctx context.Context, item T) Result

// Map runs worker over items with at most parallel concurrent invocations,
// printing one progress line per item in completion order:
//
//	[i/N] [OK] name
//	[i/N] [FAIL] name: message
//
// It returns the success and failure counts plus the failed items in
// completion order. parallel values below 1 are treated as 1.
func Map[T any](ctx context.Context, items []T, worker Worker[T], parallel int, name func(T) string) (success, fail int, failed []T) {
	if parallel < 1 {
		parallel = 1
	}
	total := len(items)

	var mu sync.Mutex
	done := 0

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for _, item := range items {
		item := item
		g.Go(func() error {
			var res Result
			if err := ctx.Err(); err != nil {
				res = Result{OK: false, Message: err.Error()}
			} else {
				res = worker(ctx, item)
			}

			mu.Lock()
			defer mu.Unlock()
			done++
			if res.OK {
				success++
				fmt.Printf("[%d/%d] [OK] %s\n", done, total, name(item))
			} else {
				failed = append(failed, item)
				fmt.Printf("[%d/%d] [FAIL] %s: %s\n", done, total, name(item), res.Message)
			}
			return nil
		})
	}
	g.Wait()
	return success, len(failed), failed
}
