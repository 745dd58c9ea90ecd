package statistic

import (
	"errors"
	"slices"
)

// ErrEmptyDistribution is returned when a distribution has no values, or when
// a value-weighted distribution has zero total mass.
var ErrEmptyDistribution = errors.New("distribution has no data")

// Distribution is a cumulative distribution over sorted values.
// Cumulative[i] is the cumulative probability at Values[i].
type Distribution struct {
	Values     []float64 `json:"values"`
	Cumulative []float64 `json:"cumulative"`
}

// Len returns the number of points.
func (d *Distribution) Len() int {
	return len(d.Values)
}

// Sum returns the total of all values.
func (d *Distribution) Sum() float64 {
	var sum float64
	for _, v := range d.Values {
		sum += v
	}
	return sum
}

// CountWeightedECDF sorts values ascending and gives the k-th smallest value
// (0-based) the probability k/N, so the first point sits at 0 and the last
// at (N-1)/N. The input slice is not modified.
func CountWeightedECDF(values []float64) (*Distribution, error) {
	if len(values) == 0 {
		return nil, ErrEmptyDistribution
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	n := float64(len(sorted))
	cumulative := make([]float64, len(sorted))
	for i := range sorted {
		cumulative[i] = float64(i) / n
	}
	return &Distribution{Values: sorted, Cumulative: cumulative}, nil
}

// ValueWeightedCDF sorts values ascending and gives each point the running
// sum divided by the total sum: the fraction of total magnitude carried by
// values up to and including that point. The last point is exactly 1.
func ValueWeightedCDF(values []float64) (*Distribution, error) {
	if len(values) == 0 {
		return nil, ErrEmptyDistribution
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	var total float64
	for _, v := range sorted {
		total += v
	}
	if total == 0 {
		return nil, ErrEmptyDistribution
	}

	cumulative := make([]float64, len(sorted))
	var running float64
	for i, v := range sorted {
		running += v
		cumulative[i] = running / total
	}
	return &Distribution{Values: sorted, Cumulative: cumulative}, nil
}

// Float64s converts integer samples for the distribution functions.
func Float64s[T ~int | ~int64 | ~uint64](values []T) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = float64(v)
	}
	return out
}
