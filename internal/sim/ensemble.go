package sim

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// RunEnsemble runs independent drivers concurrently, one goroutine each,
// driver i with opts[i]. Results are returned in driver order.
func RunEnsemble(ctx context.Context, drivers []*Driver, opts []RunOptions) ([]RunResult, error) {
	if len(opts) != len(drivers) {
		return nil, fmt.Errorf("ensemble: %d drivers, %d run options", len(drivers), len(opts))
	}
	results := make([]RunResult, len(drivers))
	errs := make([]error, len(drivers))

	var wg sync.WaitGroup
	for i, d := range drivers {
		wg.Add(1)
		go func(idx int, d *Driver) {
			defer wg.Done()
			results[idx], errs[idx] = Run(ctx, d, opts[idx])
		}(i, d)
	}

	wg.Wait()
	return results, errors.Join(errs...)
}
