package tracking

import (
	"boxwatch/types"
	"boxwatch/utils"
)

// ExtractSessions splits a debounced box timeline into its hidden and visible
// sessions. Scanning stops at the first AfterEnd frame. A session still open
// on the last frame of the video is closed there, without counting as a
// transition.
func ExtractSessions(states []types.State, track []types.Point) types.BoxSessions {
	out := types.BoxSessions{Sessions: []types.Session{}}
	n := len(states)
	start := 1

	for f := 0; f < n; f++ {
		prev := states[f]
		next := types.AfterEnd
		endOfVideo := f+1 == n
		if !endOfVideo {
			next = states[f+1]
		}
		if prev == next {
			continue
		}

		if prev == types.BeforeStart {
			start = f + 2
		} else {
			out.Sessions = append(out.Sessions, types.Session{
				Start:    start,
				End:      f + 1,
				Duration: f - start + 1,
				Distance: utils.PathLength(track[start-1 : f+1]),
				Status:   prev,
			})
			if !endOfVideo {
				out.Count++
			}
			start = f + 2
		}

		if next == types.AfterEnd {
			break
		}
	}
	return out
}

// Sessions extracts the session summary of every box, keyed by rank
func (g *Grid) Sessions() map[int]types.BoxSessions {
	all := make(map[int]types.BoxSessions, len(g.visibility))
	for b := range g.visibility {
		all[b] = ExtractSessions(g.visibility[b], g.centroids[b])
	}
	return all
}
