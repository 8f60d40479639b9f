package types

import "fmt"

// State is the visibility of a box at one frame
type State int8

const (
	AfterEnd    State = -2
	BeforeStart State = -1
	Hidden      State = 0
	Visible     State = 1
)

// String returns a readable name for the state
func (s State) String() string {
	switch s {
	case AfterEnd:
		return "after-end"
	case BeforeStart:
		return "before-start"
	case Hidden:
		return "hidden"
	case Visible:
		return "visible"
	}
	return fmt.Sprintf("state(%d)", int8(s))
}

// Tracked reports whether the state belongs to the tracking window
func (s State) Tracked() bool {
	return s == Hidden || s == Visible
}

// Point is a centroid position in pixel coordinates (row, column)
type Point struct {
	Y float64
	X float64
}

// NoDetection is the sentinel centroid of a frame without a region
var NoDetection = Point{Y: -1, X: -1}

// Valid reports whether the point is a real detection rather than the sentinel.
// Any negative coordinate counts as sentinel.
func (p Point) Valid() bool {
	return p.Y >= 0 && p.X >= 0
}

// Box is one labeled region of interest
type Box struct {
	// Label is the value of the region in the label image (never 0)
	Label int
	// Rank is the 0-based row of the box in every array the processor owns
	Rank int
}

// Session is a maximal run of frames during which a box keeps the same status.
// Start and End are 1-based inclusive frame numbers, the convention used by
// calibration files; Distance covers 0-based frames [Start-1, End).
type Session struct {
	Start    int     `json:"start" yaml:"start"`
	End      int     `json:"end" yaml:"end"`
	Duration int     `json:"duration" yaml:"duration"`
	Distance float64 `json:"distance" yaml:"distance"`
	Status   State   `json:"status" yaml:"status"`
}

// Seconds converts the session duration to seconds
func (s Session) Seconds(fps float64) float64 {
	if fps <= 0 {
		return 0
	}
	return float64(s.Duration) / fps
}

// ScaledDistance converts the pixel distance with a units-per-pixel factor
func (s Session) ScaledDistance(unitsPerPixel float64) float64 {
	return s.Distance * unitsPerPixel
}

// BoxSessions is the session summary of one box
type BoxSessions struct {
	Sessions []Session `json:"sessions" yaml:"sessions"`
	Count    int       `json:"count" yaml:"count"`
}

// VideoMeta holds what the processor reads once from the mask video
type VideoMeta struct {
	Frames int
	FPS    float64
	Width  int
	Height int
}
