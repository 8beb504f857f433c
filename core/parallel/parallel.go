// Package parallel splits index ranges across CPU cores.
package parallel

import (
	"runtime"
	"sync"
)

// DefaultThreshold is the item count below which work stays sequential.
const DefaultThreshold = 1000

// Parallelize divides items into one contiguous range per CPU core and runs
// fn on every range concurrently. It returns when all ranges are done.
func Parallelize(items int, fn func(start, end int)) {
	_ = ParallelizeErr(items, func(start, end int) error {
		fn(start, end)
		return nil
	})
}

// ParallelizeErr is Parallelize for range functions that can fail. It
// returns the error of the lowest failing range.
func ParallelizeErr(items int, fn func(start, end int) error) error {
	if items <= 0 {
		return nil
	}

	numWorkers := runtime.NumCPU()
	if numWorkers > items {
		numWorkers = items
	}
	chunkSize := (items + numWorkers - 1) / numWorkers

	errs := make([]error, numWorkers)
	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > items {
			end = items
		}
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(w, s, e int) {
			defer wg.Done()
			errs[w] = fn(s, e)
		}(i, start, end)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// ParallelizeWithThreshold runs fn(0, items) on the calling goroutine when
// items is below threshold, and Parallelize otherwise.
func ParallelizeWithThreshold(items int, threshold int, fn func(start, end int)) {
	if items < threshold {
		if items > 0 {
			fn(0, items)
		}
		return
	}
	Parallelize(items, fn)
}

// ParallelizeErrWithThreshold is ParallelizeWithThreshold for range
// functions that can fail.
func ParallelizeErrWithThreshold(items int, threshold int, fn func(start, end int) error) error {
	if items < threshold {
		if items <= 0 {
			return nil
		}
		return fn(0, items)
	}
	return ParallelizeErr(items, fn)
}
