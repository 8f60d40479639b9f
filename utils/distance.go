package utils

import (
	"gonum.org/v1/gonum/floats"

	"boxwatch/types"
)

// PathLength returns the distance traveled along points, the sum of the
// displacements between consecutive entries. Sentinel points are not skipped:
// a jump to or from (-1, -1) counts like any other move.
func PathLength(points []types.Point) float64 {
	if len(points) < 2 {
		return 0
	}
	var distance float64
	prev := []float64{points[0].Y, points[0].X}
	cur := make([]float64, 2)
	for _, p := range points[1:] {
		cur[0], cur[1] = p.Y, p.X
		distance += floats.Distance(cur, prev, 2)
		prev, cur = cur, prev
	}
	return distance
}
