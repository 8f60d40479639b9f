package tracking

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"boxwatch/types"
)

// syntheticSource renders frames on demand. paint fills a zeroed frame.
type syntheticSource struct {
	meta  types.VideoMeta
	paint func(frame int, gray []byte)

	failOpenAt  int // start frame whose Open fails, -1 for none
	failReadAt  int // frame whose Read fails, -1 for none
	mu          sync.Mutex
	opened      []int
	openReaders int
}

func newSyntheticSource(width, height, frames int, paint func(frame int, gray []byte)) *syntheticSource {
	return &syntheticSource{
		meta:       types.VideoMeta{Frames: frames, FPS: 30, Width: width, Height: height},
		paint:      paint,
		failOpenAt: -1,
		failReadAt: -1,
	}
}

func (s *syntheticSource) Meta() types.VideoMeta { return s.meta }

func (s *syntheticSource) Open(start int) (types.FrameReader, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if start == s.failOpenAt {
		return nil, errors.New("cannot open mask video")
	}
	s.opened = append(s.opened, start)
	s.openReaders++
	return &syntheticReader{src: s, next: start}, nil
}

func (s *syntheticSource) readersOpen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.openReaders
}

type syntheticReader struct {
	src  *syntheticSource
	next int
}

func (r *syntheticReader) Read(dst *gocv.Mat) error {
	if r.next >= r.src.meta.Frames {
		return fmt.Errorf("frame %d past end of video", r.next)
	}
	if r.next == r.src.failReadAt {
		return fmt.Errorf("corrupt frame %d", r.next)
	}
	gray := make([]byte, r.src.meta.Width*r.src.meta.Height)
	if r.src.paint != nil {
		r.src.paint(r.next, gray)
	}
	if err := copyGray(r.src.meta.Width, r.src.meta.Height, gray, dst); err != nil {
		return err
	}
	r.next++
	return nil
}

// copyGray copies a row-major 8-bit frame into dst
func copyGray(width, height int, gray []byte, dst *gocv.Mat) error {
	m, err := gocv.NewMatFromBytes(height, width, gocv.MatTypeCV8UC1, gray)
	if err != nil {
		return err
	}
	defer m.Close()
	m.CopyTo(dst)
	return nil
}

// grayMat builds an owned 8-bit frame Mat, closed when the test ends
func grayMat(t *testing.T, width, height int, gray []byte) gocv.Mat {
	t.Helper()
	m := gocv.NewMat()
	t.Cleanup(func() { m.Close() })
	require.NoError(t, copyGray(width, height, gray, &m))
	return m
}

// newTestClassifier builds a classifier released when the test ends
func newTestClassifier(t *testing.T, labels types.LabelMap, boxes []types.Box, threshold int) *Classifier {
	t.Helper()
	c, err := NewClassifier(labels, boxes, threshold)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func (r *syntheticReader) Close() error {
	r.src.mu.Lock()
	defer r.src.mu.Unlock()
	r.src.openReaders--
	return nil
}

// fillRect sets pixels of rows [y0, y1) and columns [x0, x1) to v
func fillRect(gray []byte, width, y0, x0, y1, x1 int, v byte) {
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			gray[y*width+x] = v
		}
	}
}

// labelHalves labels the left half of the image 1 and the right half 2
func labelHalves(t *testing.T, width, height int) types.LabelMap {
	t.Helper()
	labels := make([]uint16, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if x < width/2 {
				labels[y*width+x] = 1
			} else {
				labels[y*width+x] = 2
			}
		}
	}
	m, err := types.NewLabelMap(width, height, labels)
	require.NoError(t, err)
	return m
}

// uniformLabels labels the whole image with one box
func uniformLabels(t *testing.T, width, height int, label uint16) types.LabelMap {
	t.Helper()
	labels := make([]uint16, width*height)
	for i := range labels {
		labels[i] = label
	}
	m, err := types.NewLabelMap(width, height, labels)
	require.NoError(t, err)
	return m
}

// statesFromString builds a timeline from '.' (hidden), '#' (visible),
// '<' (before start) and '>' (after end)
func statesFromString(s string) []types.State {
	states := make([]types.State, len(s))
	for i, c := range s {
		switch c {
		case '#':
			states[i] = types.Visible
		case '<':
			states[i] = types.BeforeStart
		case '>':
			states[i] = types.AfterEnd
		default:
			states[i] = types.Hidden
		}
	}
	return states
}

func emptyTrack(n int) []types.Point {
	track := make([]types.Point, n)
	for i := range track {
		track[i] = types.NoDetection
	}
	return track
}

// requireSessionsCoverTimeline checks that the sessions tile the tracked part
// of the timeline in order, with the right status for every frame.
func requireSessionsCoverTimeline(t *testing.T, states []types.State, summary types.BoxSessions) {
	t.Helper()

	first, last := -1, -1
	for f, s := range states {
		if s.Tracked() {
			if first < 0 {
				first = f
			}
			last = f + 1
		}
	}
	if first < 0 {
		require.Empty(t, summary.Sessions)
		return
	}
	require.NotEmpty(t, summary.Sessions)

	expected := first + 1
	for i, s := range summary.Sessions {
		require.Equal(t, expected, s.Start, "session %d starts after a gap or overlap", i)
		require.GreaterOrEqual(t, s.End, s.Start, "session %d", i)
		require.Equal(t, s.End-s.Start, s.Duration, "session %d", i)
		for f := s.Start - 1; f < s.End; f++ {
			require.Equal(t, s.Status, states[f], "session %d frame %d", i, f)
		}
		if i > 0 {
			require.NotEqual(t, summary.Sessions[i-1].Status, s.Status, "adjacent sessions share status")
		}
		expected = s.End + 1
	}
	require.Equal(t, last, summary.Sessions[len(summary.Sessions)-1].End)
}
