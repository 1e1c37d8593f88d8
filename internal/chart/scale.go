package chart

import "math"

// Levels maps each value onto 0..levels-1 between lo and hi.
// Values outside the range are clamped. A flat range maps to the middle level.
func Levels(values []float64, lo, hi float64, levels int) []int {
	if levels <= 0 {
		return nil
	}
	out := make([]int, len(values))
	span := hi - lo
	for i, v := range values {
		if span <= 0 || math.IsNaN(v) {
			out[i] = levels / 2
			continue
		}
		f := (v - lo) / span
		f = math.Max(0, math.Min(1, f))
		out[i] = int(math.Round(f * float64(levels-1)))
	}
	return out
}

// Bounds returns the min and max of values. ok is false for an empty slice.
func Bounds(values []float64) (lo, hi float64, ok bool) {
	if len(values) == 0 {
		return 0, 0, false
	}
	lo, hi = values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi, true
}

// Prices extracts the price column of points.
func Prices(points []MergedPoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Price
	}
	return out
}

// Sentiments extracts the sentiment column of a window.
func Sentiments(points []SentimentPoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Sentiment
	}
	return out
}
