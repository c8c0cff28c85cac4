package common

import (
	"sync"

	"github.com/buildbuildio/stitching/gqlerrors"
)

// AsyncMap runs mapFunc for every element concurrently and returns results in payload order.
// Every failure is collected, the first one does not cancel the others. Errors
// are reported in payload order as well.
func AsyncMap[T, P any](payload []T, mapFunc func(value T) (P, error)) ([]P, gqlerrors.ErrorList) {
	var wg sync.WaitGroup

	results := make([]P, len(payload))
	failures := make([]error, len(payload))

	wg.Add(len(payload))
	for i, value := range payload {
		go func(i int, v T) {
			defer wg.Done()

			res, err := mapFunc(v)
			if err != nil {
				failures[i] = err
				return
			}
			results[i] = res
		}(i, value)
	}

	wg.Wait()

	var errs gqlerrors.ErrorList
	for _, err := range failures {
		if err != nil {
			errs = gqlerrors.ExtendErrorList(errs, err)
		}
	}

	if len(errs) > 0 {
		return results, errs
	}

	return results, nil
}
