package tomo

import "math"

// SquareWave evaluates the odd-harmonic Fourier approximation of a square
// wave at x: (4/pi) * sum(sin(n*x)/n) for odd n <= harmonics. The result
// is bounded by +/- 4/pi for any x and any odd harmonic count.
func SquareWave(x float64, harmonics int) float64 {
	var sum float64
	for n := 1; n <= harmonics; n += 2 {
		sum += math.Sin(float64(n)*x) / float64(n)
	}
	return (4.0 / math.Pi) * sum
}

// SquareWaveSeries evaluates SquareWave at each point of xs. Used by the
// monitor and plotting paths.
func SquareWaveSeries(xs []float64, harmonics int) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = SquareWave(x, harmonics)
	}
	return out
}
