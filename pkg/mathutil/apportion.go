package mathutil

import (
	"math"
	"sort"
)

// remainderQuantum is the resolution used when ranking fractional remainders.
// Remainders closer than this are treated as ties and fall back to input order.
const remainderQuantum = 1e9

// Apportion splits total into integer shares proportional to weights using the
// largest-remainder method: every share first receives floor(total*w), then the
// leftover units go one each to the shares with the largest fractional
// remainder, ties broken by position. The shares always sum to total exactly.
//
// Weights need not be normalized. Non-positive weights receive nothing. If no
// weight is positive every share is zero.
func Apportion(total int64, weights []float64) []int64 {
	shares := make([]int64, len(weights))
	if total == 0 || len(weights) == 0 {
		return shares
	}
	if total < 0 {
		for i, share := range Apportion(-total, weights) {
			shares[i] = -share
		}
		return shares
	}

	sum := 0.0
	for _, w := range weights {
		if w > 0 {
			sum += w
		}
	}
	if sum <= 0 {
		return shares
	}

	remainders := make([]float64, len(weights))
	order := make([]int, 0, len(weights))
	var assigned int64
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		quota := float64(total) * (w / sum)
		floor := math.Floor(quota)
		shares[i] = int64(floor)
		remainders[i] = math.Round((quota-floor)*remainderQuantum) / remainderQuantum
		assigned += shares[i]
		order = append(order, i)
	}

	sort.SliceStable(order, func(a, b int) bool {
		return remainders[order[a]] > remainders[order[b]]
	})

	leftover := total - assigned
	for k := 0; leftover > 0; k = (k + 1) % len(order) {
		shares[order[k]]++
		leftover--
	}
	// Floating point can overshoot the floors by a unit on very large totals;
	// take it back from the smallest remainders.
	for k := len(order) - 1; leftover < 0; k-- {
		if k < 0 {
			k = len(order) - 1
		}
		if shares[order[k]] > 0 {
			shares[order[k]]--
			leftover++
		}
	}

	return shares
}
