package eligibility

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DefaultBatchWorkers bounds EvaluateBatch when the caller passes workers <= 0.
const DefaultBatchWorkers = 4

// BatchResult pairs an input position with its determination or error.
type BatchResult struct {
	Index         int
	Person        *Person
	Determination Determination
	Err           error
}

// EvaluateBatch evaluates every input on a bounded worker pool. Records are
// independent, so there is no locking; each goroutine writes only its own
// slot. A bad record sets that slot's Err and never fails the batch. The
// returned error is non-nil only when ctx is done before every record ran.
func EvaluateBatch(ctx context.Context, inputs []Input, workers int) ([]BatchResult, error) {
	if workers <= 0 {
		workers = DefaultBatchWorkers
	}
	results := make([]BatchResult, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, in := range inputs {
		i, in := i, in
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = evaluateOne(i, in)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func evaluateOne(i int, in Input) BatchResult {
	p, err := NewPerson(in)
	if err != nil {
		return BatchResult{Index: i, Err: err}
	}
	return BatchResult{Index: i, Person: p, Determination: Evaluate(p)}
}
