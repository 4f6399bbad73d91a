package core

// Zero clears buf. Filters use it to reset pool-resident state.
func Zero(buf []float64) {
	clear(buf)
}

// CopyInto copies as much of src as fits into dst and returns the count.
func CopyInto(dst, src []float64) int {
	return copy(dst, src)
}

// Mix adds gain*src into dst over their common length and returns it.
func Mix(dst, src []float64, gain float64) int {
	n := min(len(dst), len(src))
	for i := range n {
		dst[i] += gain * src[i]
	}

	return n
}
