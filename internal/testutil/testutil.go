package testutil

import (
	"math"

	"github.com/google/go-cmp/cmp"

	"github.com/calvingit/performance-tracker/internal/timeutil"
)

var (
	alwaysEqual       = cmp.Comparer(func(_, _ interface{}) bool { return true })
	defaultCmpOptions = []cmp.Option{
		// NaNs compare equal
		cmp.FilterValues(func(x, y float64) bool {
			return math.IsNaN(x) && math.IsNaN(y)
		}, alwaysEqual),
		cmp.FilterValues(func(x, y float32) bool {
			return math.IsNaN(float64(x)) && math.IsNaN(float64(y))
		}, alwaysEqual),
		cmp.Comparer(func(x, y timeutil.Time) bool {
			return x.Time().Equal(y.Time())
		}),
	}
)

func Diff(a, b interface{}, opts ...cmp.Option) string {
	opts = append(opts, defaultCmpOptions...)
	return cmp.Diff(a, b, opts...)
}

// I64 and F64 build the pointer-typed optional fields used across record and
// stats literals in tests.
func I64(v int64) *int64 {
	return &v
}

func F64(v float64) *float64 {
	return &v
}
