package vector

import "math"

// SquaredL2 returns the squared Euclidean distance between two vectors.
// Mismatched or empty vectors yield +Inf so they never rank as near.
func SquaredL2(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return math.Inf(1)
	}
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}

// Similarity converts a squared-L2 distance into a similarity in (0, 1],
// strictly decreasing in distance. Distance 0 maps to 1.
func Similarity(distance float64) float64 {
	return 1.0 / (1.0 + distance)
}

// L2Norm returns the Euclidean norm of a vector.
func L2Norm(x []float32) float64 {
	var sum float64
	for _, v := range x {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}
