package tracking

import (
	"boxwatch/types"
	"boxwatch/utils"
)

// Grid owns the visibility and centroid arrays of one run. Both are stored
// box-major so every box row can be sliced into per-worker windows.
type Grid struct {
	frames     int
	visibility [][]types.State
	centroids  [][]types.Point
}

// NewGrid allocates a grid with every cell Hidden and without detection
func NewGrid(boxes, frames int) *Grid {
	g := &Grid{
		frames:     frames,
		visibility: make([][]types.State, boxes),
		centroids:  make([][]types.Point, boxes),
	}
	for b := 0; b < boxes; b++ {
		g.visibility[b] = make([]types.State, frames)
		track := make([]types.Point, frames)
		for f := range track {
			track[f] = types.NoDetection
		}
		g.centroids[b] = track
	}
	return g
}

// Boxes returns the number of box rows
func (g *Grid) Boxes() int {
	return len(g.visibility)
}

// Frames returns the number of frame columns
func (g *Grid) Frames() int {
	return g.frames
}

// States returns the visibility row of a box
func (g *Grid) States(rank int) []types.State {
	return g.visibility[rank]
}

// Track returns the centroid row of a box
func (g *Grid) Track(rank int) []types.Point {
	return g.centroids[rank]
}

// Window hands out the columns [r.Start, r.End) of every row. Windows over
// disjoint ranges share no memory, which is what lets workers write without
// locking.
func (g *Grid) Window(r utils.FrameRange) Window {
	w := Window{
		Start:      r.Start,
		End:        r.End,
		visibility: make([][]types.State, len(g.visibility)),
		centroids:  make([][]types.Point, len(g.centroids)),
	}
	for b := range g.visibility {
		w.visibility[b] = g.visibility[b][r.Start:r.End:r.End]
		w.centroids[b] = g.centroids[b][r.Start:r.End:r.End]
	}
	return w
}

// VisibilityArray copies the visibility array, shape boxes x frames
func (g *Grid) VisibilityArray() [][]types.State {
	out := make([][]types.State, len(g.visibility))
	for b, row := range g.visibility {
		out[b] = append([]types.State(nil), row...)
	}
	return out
}

// CentroidArray copies the centroid array, shape frames x boxes
func (g *Grid) CentroidArray() [][]types.Point {
	out := make([][]types.Point, g.frames)
	for f := range out {
		out[f] = make([]types.Point, len(g.centroids))
		for b, track := range g.centroids {
			out[f][b] = track[f]
		}
	}
	return out
}

// Window is an exclusive view over a contiguous frame range of a Grid
type Window struct {
	Start int
	End   int

	visibility [][]types.State
	centroids  [][]types.Point
}

// Len returns the number of frames in the window
func (w Window) Len() int {
	return w.End - w.Start
}

// Detect marks a box visible at the absolute frame index with its centroid
func (w Window) Detect(frame, rank int, centroid types.Point) {
	i := frame - w.Start
	w.visibility[rank][i] = types.Visible
	w.centroids[rank][i] = centroid
}
