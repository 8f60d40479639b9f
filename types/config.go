package types

import (
	"fmt"
	"sort"
)

// Calibration holds the per-box tracking window and the stability threshold
type Calibration struct {
	// StartFrames maps a box label to its calibrated start frame, as a
	// 1-based frame number
	StartFrames map[int]int
	// TrackDuration is the number of frames tracked from each box's start
	TrackDuration int
	// MinTrackLength is the distance a run must cover to count as stable
	MinTrackLength float64
}

// Window returns the 0-based tracked range [first, last) of a box.
// The calibrated frame is shifted forward by one and back by one across the
// two layers that consume it, so first equals the calibrated value.
func (c Calibration) Window(label, nFrames int) (first, last int) {
	starter := c.StartFrames[label] + 1
	first = starter - 1
	if first < 0 {
		first = 0
	}
	if first > nFrames {
		first = nFrames
	}
	last = first + c.TrackDuration
	if last > nFrames {
		last = nFrames
	}
	return first, last
}

// Validate checks the calibration against the boxes found in the label image.
// Every box needs a start frame and every start frame needs a box.
func (c Calibration) Validate(boxes []Box) error {
	if c.TrackDuration <= 0 {
		return fmt.Errorf("%w: track duration must be positive, got %d", ErrInvalidConfig, c.TrackDuration)
	}
	if c.MinTrackLength < 0 {
		return fmt.Errorf("%w: minimum track length must not be negative, got %g", ErrInvalidConfig, c.MinTrackLength)
	}

	known := make(map[int]bool, len(boxes))
	for _, b := range boxes {
		known[b.Label] = true
		start, ok := c.StartFrames[b.Label]
		if !ok {
			return fmt.Errorf("%w: box %d has no calibrated start frame", ErrInvalidConfig, b.Label)
		}
		if start < 0 {
			return fmt.Errorf("%w: box %d has negative start frame %d", ErrInvalidConfig, b.Label, start)
		}
	}

	var unknown []int
	for label := range c.StartFrames {
		if !known[label] {
			unknown = append(unknown, label)
		}
	}
	if len(unknown) > 0 {
		sort.Ints(unknown)
		return fmt.Errorf("%w: calibration references boxes %v missing from the label image", ErrInvalidConfig, unknown)
	}
	return nil
}

// ProcessorConfig holds the engine settings that used to be process-wide constants
type ProcessorConfig struct {
	// Workers is the classification pool size, 0 picks one from the CPU count
	Workers int
	// MaxWorkers caps the pool size, requested or automatic
	MaxWorkers int
	// SmoothRadius is the half width of the centroid smoothing window
	SmoothRadius int
	// BinaryThreshold separates foreground from codec noise (intensity > threshold)
	BinaryThreshold int
	// SnapshotDir enables on-disk array snapshots when set
	SnapshotDir string
}

// DefaultProcessorConfig returns the default processor configuration
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		Workers:         0,
		MaxWorkers:      4,
		SmoothRadius:    2,
		BinaryThreshold: 127,
	}
}

// Validate rejects settings the engine cannot run with
func (c ProcessorConfig) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("%w: worker count must not be negative, got %d", ErrInvalidConfig, c.Workers)
	}
	if c.MaxWorkers < 1 {
		return fmt.Errorf("%w: max workers must be at least 1, got %d", ErrInvalidConfig, c.MaxWorkers)
	}
	if c.SmoothRadius < 0 {
		return fmt.Errorf("%w: smoothing radius must not be negative, got %d", ErrInvalidConfig, c.SmoothRadius)
	}
	if c.BinaryThreshold < 0 || c.BinaryThreshold > 254 {
		return fmt.Errorf("%w: binary threshold must be in [0, 254], got %d", ErrInvalidConfig, c.BinaryThreshold)
	}
	return nil
}
