/*
Package gas estimates the system fee of invocation scripts.

An Estimator test-executes scripts with a fixed signer set and reports the
consumed gas, optionally with a safety margin on top for scripts whose cost
depends on chain state that may change before the real transaction lands.
*/
package gas

import (
	"context"
	"fmt"
	"sync"

	"github.com/halyard-dev/neokit/pkg/clienterr"
	"github.com/halyard-dev/neokit/pkg/rpcclient/invoker"
	"github.com/halyard-dev/neokit/pkg/transaction"
)

// Estimator test-executes scripts to price them.
type Estimator struct {
	inv *invoker.Invoker
}

// New creates an Estimator invoking scripts on behalf of the given signers.
func New(client invoker.RPCInvoke, signers []transaction.Signer) *Estimator {
	return &Estimator{inv: invoker.New(client, signers)}
}

// Estimate returns the amount of gas (in datoshi) consumed by the script. A
// FAULTed execution is an error (clienterr.ExecutionFailedError).
func (e *Estimator) Estimate(script []byte) (int64, error) {
	r, err := e.inv.Run(script)
	if err != nil {
		return 0, err
	}
	if err := r.ExecutionError(); err != nil {
		return 0, err
	}
	return r.GasConsumed, nil
}

// EstimateWithMargin estimates the script and adds marginPct percent on top,
// truncating the result (estimate * (100 + marginPct) / 100).
func (e *Estimator) EstimateWithMargin(script []byte, marginPct int64) (int64, error) {
	if marginPct < 0 {
		return 0, fmt.Errorf("%w: negative margin", clienterr.ErrInvalidArgument)
	}
	estimate, err := e.Estimate(script)
	if err != nil {
		return 0, err
	}
	return estimate * (100 + marginPct) / 100, nil
}

// BatchEstimate estimates several scripts concurrently. The result slice
// keeps the input order. The first error aborts the whole batch, as does
// context cancellation.
func (e *Estimator) BatchEstimate(ctx context.Context, scripts [][]byte) ([]int64, error) {
	var (
		res      = make([]int64, len(scripts))
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	for i := range scripts {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if ctx.Err() != nil {
				errOnce.Do(func() { firstErr = ctx.Err() })
				return
			}
			est, err := e.Estimate(scripts[i])
			if err != nil {
				errOnce.Do(func() { firstErr = fmt.Errorf("script %d: %w", i, err) })
				return
			}
			res[i] = est
		}(i)
	}
	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	return res, nil
}

// Accuracy reports how far the estimate was from the actually consumed gas
// as a percentage of the actual value (|estimated-actual|/max(actual,1)*100).
func Accuracy(estimated, actual int64) float64 {
	diff := estimated - actual
	if diff < 0 {
		diff = -diff
	}
	denom := actual
	if denom < 1 {
		denom = 1
	}
	return float64(diff) / float64(denom) * 100
}
