package types

import (
	"fmt"
	"sort"
)

// LabelMap is the static labeled-region image. Labels are stored row-major,
// 0 is background and every other value identifies one box.
type LabelMap struct {
	Width  int
	Height int
	Labels []uint16
}

// NewLabelMap validates the buffer size against the dimensions
func NewLabelMap(width, height int, labels []uint16) (LabelMap, error) {
	if width <= 0 || height <= 0 {
		return LabelMap{}, fmt.Errorf("%w: label image has size %dx%d", ErrInvalidConfig, width, height)
	}
	if len(labels) != width*height {
		return LabelMap{}, fmt.Errorf("%w: label buffer holds %d values, want %d", ErrInvalidConfig, len(labels), width*height)
	}
	return LabelMap{Width: width, Height: height, Labels: labels}, nil
}

// Boxes enumerates the distinct non-zero labels in ascending order
func (m LabelMap) Boxes() []Box {
	seen := make(map[int]struct{})
	for _, l := range m.Labels {
		if l != 0 {
			seen[int(l)] = struct{}{}
		}
	}
	labels := make([]int, 0, len(seen))
	for l := range seen {
		labels = append(labels, l)
	}
	sort.Ints(labels)

	boxes := make([]Box, len(labels))
	for i, l := range labels {
		boxes[i] = Box{Label: l, Rank: i}
	}
	return boxes
}

// MaxLabel returns the largest label value, 0 for an all-background image
func (m LabelMap) MaxLabel() int {
	max := 0
	for _, l := range m.Labels {
		if int(l) > max {
			max = int(l)
		}
	}
	return max
}
