package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitFrameRanges(t *testing.T) {
	t.Parallel()

	t.Run("three workers over 97 frames", func(t *testing.T) {
		t.Parallel()
		ranges := SplitFrameRanges(3, 97)
		require.Len(t, ranges, 3)
		assert.Equal(t, []FrameRange{{0, 33}, {33, 65}, {65, 97}}, ranges)
		assert.Equal(t, 33, ranges[0].Len())
		assert.Equal(t, 32, ranges[1].Len())
		assert.Equal(t, 32, ranges[2].Len())
	})

	t.Run("fewer frames than workers", func(t *testing.T) {
		t.Parallel()
		ranges := SplitFrameRanges(4, 2)
		assert.Equal(t, []FrameRange{{0, 1}, {1, 2}, {2, 2}, {2, 2}}, ranges)
	})

	t.Run("zero workers falls back to one", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, []FrameRange{{0, 10}}, SplitFrameRanges(0, 10))
	})
}

func TestSplitFrameRangesCoverage(t *testing.T) {
	t.Parallel()

	for nFrames := 0; nFrames <= 40; nFrames++ {
		for k := 1; k <= 7; k++ {
			ranges := SplitFrameRanges(k, nFrames)
			require.Len(t, ranges, k)

			next := 0
			minLen, maxLen := nFrames, 0
			for _, r := range ranges {
				require.Equal(t, next, r.Start, "n=%d k=%d: ranges must be sorted and gapless", nFrames, k)
				require.GreaterOrEqual(t, r.End, r.Start)
				next = r.End
				minLen = min(minLen, r.Len())
				maxLen = max(maxLen, r.Len())
			}
			assert.Equal(t, nFrames, next, "n=%d k=%d: union must end at nFrames", nFrames, k)
			assert.LessOrEqual(t, maxLen-minLen, 1, "n=%d k=%d: sizes differ by more than one", nFrames, k)
		}
	}
}

func TestWorkerCount(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 3, WorkerCount(3, 4))
	assert.Equal(t, 4, WorkerCount(9, 4), "an explicit request is capped too")
	assert.Equal(t, 1, WorkerCount(5, 0))

	auto := WorkerCount(0, 4)
	assert.GreaterOrEqual(t, auto, 1)
	assert.LessOrEqual(t, auto, 4)
	assert.Equal(t, 1, WorkerCount(0, 1))
}
