package optimizer

import (
	"math"
	"sort"
)

// epsilon is the denominator floor in the utility ratio, preventing
// division by zero when the "bad" kernel density collapses to zero.
const epsilon = 1e-6

// surrogate is the per-stage Tree-Parzen-Estimator-style density-ratio
// model described in the package doc. good and bad only ever grow; nothing
// removes or reorders their contents once appended.
type surrogate struct {
	good []float64
	bad  []float64
}

func newSurrogate() *surrogate {
	return &surrogate{}
}

// update classifies score against the running median of every score this
// surrogate has seen so far (the union of good and bad, before this
// insertion) and appends it to the corresponding set. Ties, and the
// first-ever observation, go to good.
func (s *surrogate) update(score float64) {
	union := make([]float64, 0, len(s.good)+len(s.bad))
	union = append(union, s.good...)
	union = append(union, s.bad...)

	if len(union) == 0 {
		s.good = append(s.good, score)
		return
	}

	m := median(union)
	if score >= m {
		s.good = append(s.good, score)
	} else {
		s.bad = append(s.bad, score)
	}
}

// utility returns the preference signal for mutating this stage next. Pure
// exploration — a uniform random draw from r — until both good and bad hold
// at least one observation.
func (s *surrogate) utility(score float64, r rng) float64 {
	if len(s.good) == 0 || len(s.bad) == 0 {
		return r.float64()
	}
	return parzen(score, s.good) / (parzen(score, s.bad) + epsilon)
}

// parzen is a Gaussian kernel density estimate of arr evaluated at x, with
// bandwidth chosen by a Silverman-style rule-of-thumb.
func parzen(x float64, arr []float64) float64 {
	h := bandwidth(arr)
	sum := 0.0
	for _, v := range arr {
		sum += gaussian(x, v, h)
	}
	return sum / float64(len(arr))
}

// bandwidth computes h = 1e-3 + 1.06*stddev(arr)*|arr|^-0.2. The additive
// 1e-3 term is the floor that keeps h positive even as stddev collapses to
// zero on a degenerate (single-valued) population.
func bandwidth(arr []float64) float64 {
	n := float64(len(arr))
	return 1e-3 + 1.06*stddevAroundMedian(arr)*math.Pow(n, -0.2)
}

// gaussian is the standard normal kernel with mean mu and standard
// deviation sigma evaluated at x.
func gaussian(x, mu, sigma float64) float64 {
	if sigma == 0 {
		sigma = epsilon
	}
	coeff := 1.0 / (sigma * math.Sqrt(2*math.Pi))
	exponent := -0.5 * math.Pow((x-mu)/sigma, 2)
	return coeff * math.Exp(exponent)
}

// median returns the median of arr without mutating it. Even-length slices
// average the two middle elements.
func median(arr []float64) float64 {
	n := len(arr)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, arr)
	sort.Float64s(sorted)

	mid := n / 2
	if n%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// stddevAroundMedian computes the standard deviation of arr centered on its
// median rather than its mean. This departs from the textbook formula on
// purpose.
func stddevAroundMedian(arr []float64) float64 {
	n := len(arr)
	if n == 0 {
		return 0
	}
	m := median(arr)
	var sumSq float64
	for _, v := range arr {
		d := v - m
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(n))
}
