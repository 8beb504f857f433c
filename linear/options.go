package linear

import "github.com/YuminosukeSato/dataexplorer/pkg/log"

// Option is a function that configures SimpleRegression
type Option func(*SimpleRegression)

// WithLogger sets the logger used for fit and predict events
func WithLogger(l log.Logger) Option {
	return func(r *SimpleRegression) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithParallelThreshold sets the row count from which the design matrix and
// the fitted values are computed in parallel
func WithParallelThreshold(n int) Option {
	return func(r *SimpleRegression) {
		if n > 0 {
			r.threshold = n
		}
	}
}
