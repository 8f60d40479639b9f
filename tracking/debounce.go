package tracking

import (
	"boxwatch/types"
	"boxwatch/utils"
)

type debouncePhase int

const (
	noTransitionYet debouncePhase = iota
	accumulating
)

// debouncer walks one box timeline. anchor is the first candidate transition
// of the pending unstable stretch and latest the most recent one; every frame
// in [anchor, latest) is flicker until a stable run proves otherwise.
type debouncer struct {
	phase  debouncePhase
	anchor int
	latest int

	minLength float64
	states    []types.State
	track     []types.Point
}

// transition handles a state change after frame f (the next run starts at f+1)
func (d *debouncer) transition(f int) {
	switch d.phase {
	case noTransitionYet:
		d.anchor, d.latest = f+1, f+1
		d.phase = accumulating
	case accumulating:
		if utils.PathLength(d.track[d.latest:f]) < d.minLength {
			d.latest = f + 1
			return
		}
		for i := d.anchor; i < d.latest; i++ {
			d.states[i] = types.Hidden
			d.track[i] = types.NoDetection
		}
		d.anchor, d.latest = f+1, f+1
	}
}

// Debounce applies the tracking window [first, last) to one box and collapses
// sub-threshold flicker inside it to Hidden. Frames outside the window become
// BeforeStart or AfterEnd with the sentinel centroid. Both slices are
// modified in place.
func Debounce(states []types.State, track []types.Point, first, last int, minLength float64) {
	for f := 0; f < first; f++ {
		states[f] = types.BeforeStart
		track[f] = types.NoDetection
	}
	for f := last; f < len(states); f++ {
		states[f] = types.AfterEnd
		track[f] = types.NoDetection
	}

	d := &debouncer{minLength: minLength, states: states, track: track}
	for f := first; f < last; f++ {
		// The last tracked frame always closes the current run.
		if f+1 < last && states[f] == states[f+1] {
			continue
		}
		d.transition(f)
	}
}

// Debounce runs the debouncer over every box row with its calibrated window
func (g *Grid) Debounce(boxes []types.Box, cal types.Calibration) {
	for _, b := range boxes {
		first, last := cal.Window(b.Label, g.frames)
		Debounce(g.visibility[b.Rank], g.centroids[b.Rank], first, last, cal.MinTrackLength)
	}
}
