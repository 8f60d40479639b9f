package tracking

import (
	"gonum.org/v1/gonum/stat"

	"boxwatch/types"
)

// SmoothTrack averages each centroid with its valid neighbours inside a
// window of 2*radius+1 frames, clipped at the track ends. A frame whose
// window holds no valid centroid keeps its original value. The input is not
// modified.
func SmoothTrack(track []types.Point, radius int) []types.Point {
	n := len(track)
	smoothed := make([]types.Point, n)
	ys := make([]float64, 0, 2*radius+1)
	xs := make([]float64, 0, 2*radius+1)

	for i := range track {
		start := max(0, i-radius)
		end := min(n, i+radius+1)

		ys, xs = ys[:0], xs[:0]
		for _, p := range track[start:end] {
			if p.Valid() {
				ys = append(ys, p.Y)
				xs = append(xs, p.X)
			}
		}
		if len(ys) == 0 {
			smoothed[i] = track[i]
			continue
		}
		smoothed[i] = types.Point{Y: stat.Mean(ys, nil), X: stat.Mean(xs, nil)}
	}
	return smoothed
}

// Smooth replaces every centroid row of the grid with its smoothed version
func (g *Grid) Smooth(radius int) {
	for b, track := range g.centroids {
		g.centroids[b] = SmoothTrack(track, radius)
	}
}
