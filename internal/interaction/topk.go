package interaction

import "sort"

// topK returns the indices of the k values with the largest magnitude,
// largest first. Equal magnitudes keep ascending index order. Values with
// magnitude below eps are never returned, so fewer than k may come back.
// Only the k winners are sorted.
func topK(values []float32, k int, eps float32) []int {
	idx := make([]int, 0, len(values))
	for i, v := range values {
		if abs32(v) >= eps {
			idx = append(idx, i)
		}
	}

	less := func(a, b int) bool {
		ma, mb := abs32(values[a]), abs32(values[b])
		if ma != mb {
			return ma > mb
		}
		return a < b
	}

	if k < len(idx) {
		quickselect(idx, k, less)
		idx = idx[:k]
	}
	sort.Slice(idx, func(a, b int) bool { return less(idx[a], idx[b]) })
	return idx
}

// quickselect reorders idx so its first k entries are the k smallest under
// less, in no particular order.
func quickselect(idx []int, k int, less func(a, b int) bool) {
	lo, hi := 0, len(idx)-1
	for lo < hi {
		p := partition(idx, lo, hi, less)
		switch {
		case p == k:
			return
		case p < k:
			lo = p + 1
		default:
			hi = p - 1
		}
	}
}

// partition uses the median of lo, mid and hi as pivot.
func partition(idx []int, lo, hi int, less func(a, b int) bool) int {
	mid := lo + (hi-lo)/2
	if less(idx[mid], idx[lo]) {
		idx[mid], idx[lo] = idx[lo], idx[mid]
	}
	if less(idx[hi], idx[lo]) {
		idx[hi], idx[lo] = idx[lo], idx[hi]
	}
	if less(idx[mid], idx[hi]) {
		idx[mid], idx[hi] = idx[hi], idx[mid]
	}

	pivot := idx[hi]
	i := lo
	for j := lo; j < hi; j++ {
		if less(idx[j], pivot) {
			idx[i], idx[j] = idx[j], idx[i]
			i++
		}
	}
	idx[i], idx[hi] = idx[hi], idx[i]
	return i
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
