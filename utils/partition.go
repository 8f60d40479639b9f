package utils

import "runtime"

// FrameRange is a half-open range of frame indices [Start, End)
type FrameRange struct {
	Start int
	End   int
}

// Len returns the number of frames in the range
func (r FrameRange) Len() int {
	return r.End - r.Start
}

// SplitFrameRanges splits [0, nFrames) into n contiguous, non-overlapping
// ranges. Sizes differ by at most one frame, the first nFrames%n ranges
// getting the extra one. Ranges may be empty when nFrames < n.
func SplitFrameRanges(n, nFrames int) []FrameRange {
	if n < 1 {
		n = 1
	}
	if nFrames < 0 {
		nFrames = 0
	}

	ranges := make([]FrameRange, 0, n)
	base := nFrames / n
	remainder := nFrames % n

	start := 0
	for i := 0; i < n; i++ {
		end := start + base
		if i < remainder {
			end++
		}
		ranges = append(ranges, FrameRange{Start: start, End: end})
		start = end
	}
	return ranges
}

// WorkerCount resolves the classification pool size: the request, or
// NumCPU/2 when the request is 0, capped at maxWorkers and never less than one.
func WorkerCount(requested, maxWorkers int) int {
	n := requested
	if n <= 0 {
		n = runtime.NumCPU() / 2
	}
	if n > maxWorkers {
		n = maxWorkers
	}
	if n < 1 {
		n = 1
	}
	return n
}
