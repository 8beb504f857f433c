package preprocessing

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// mean は観測値の算術平均を返す。values は空でないこと。
func mean(values []float64) float64 {
	return stat.Mean(values, nil)
}

// median は観測値の中央値を返す。偶数個の場合は中央2値の平均。
// values は空でないこと。values は変更しない。
func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
