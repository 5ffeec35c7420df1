package embed

import "math"

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// vectorMagnitude returns the L2 norm of v.
func vectorMagnitude(v []float32) float64 {
	return math.Sqrt(dot(v, v))
}

// cosineSimilarity is 0 for vectors of different length or zero magnitude.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	ma, mb := vectorMagnitude(a), vectorMagnitude(b)
	if ma == 0 || mb == 0 {
		return 0
	}
	return dot(a, b) / (ma * mb)
}
