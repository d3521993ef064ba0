package geometry

import "github.com/viterin/vek"

// batchThreshold is the candidate count below which the scalar loop beats
// the vectorized path (slice allocation dominates for tiny inputs).
const batchThreshold = 32

// BatchDistances computes the Euclidean distance from center to each
// coordinate pair in xs/ys. Both slices must have equal length. Large
// inputs go through SIMD-accelerated vector ops.
func BatchDistances(center Point, xs, ys []float64) []float64 {
	if len(xs) != len(ys) {
		panic("geometry: coordinate slice length mismatch")
	}
	if len(xs) < batchThreshold {
		out := make([]float64, len(xs))
		for i := range xs {
			out[i] = center.DistanceTo(Point{X: xs[i], Y: ys[i]})
		}
		return out
	}

	dx := vek.SubNumber(xs, center.X)
	dy := vek.SubNumber(ys, center.Y)
	vek.Mul_Inplace(dx, dx)
	vek.Mul_Inplace(dy, dy)
	vek.Add_Inplace(dx, dy)
	vek.Sqrt_Inplace(dx)
	return dx
}
