package classify

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Run checks targets with at most threads concurrent checks and returns the
// outcomes in input order. onResult, when non-nil, is called as each check
// finishes and may be called from several goroutines at once. If ctx is
// cancelled, targets not yet started are skipped and ctx.Err() is returned
// with the outcomes gathered so far.
func Run(ctx context.Context, checker *Checker, targets []string, threads int, onResult func(Outcome)) ([]Outcome, error) {
	if len(targets) == 0 {
		return nil, nil
	}
	if threads < 1 {
		threads = 1
	}

	results := make([]Outcome, len(targets))
	done := make([]bool, len(targets))

	g := new(errgroup.Group)
	g.SetLimit(threads)
	for i, target := range targets {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			out := checker.Inspect(ctx, target)
			results[i] = out
			done[i] = true
			if onResult != nil {
				onResult(out)
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		var partial []Outcome
		for i, ok := range done {
			if ok {
				partial = append(partial, results[i])
			}
		}
		return partial, err
	}
	return results, nil
}
