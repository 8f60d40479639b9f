package tracking

import (
	"context"
	"encoding/binary"
	"fmt"
	"runtime"

	"gocv.io/x/gocv"

	"boxwatch/types"
)

// Classifier turns mask frames into per-box presence and centroids. It keeps
// one region mask per box, 255 where the label image holds the box label.
// The masks are only read while classifying, so workers may share them.
type Classifier struct {
	width     int
	height    int
	threshold float32
	regions   []gocv.Mat // indexed by box rank
}

// NewClassifier builds the region masks of the given boxes. Close releases them.
func NewClassifier(labels types.LabelMap, boxes []types.Box, threshold int) (*Classifier, error) {
	buf := make([]byte, 2*len(labels.Labels))
	for i, l := range labels.Labels {
		binary.NativeEndian.PutUint16(buf[2*i:], l)
	}
	labelMat, err := gocv.NewMatFromBytes(labels.Height, labels.Width, gocv.MatTypeCV16UC1, buf)
	if err != nil {
		return nil, fmt.Errorf("%w: label image: %v", types.ErrInvalidConfig, err)
	}
	defer labelMat.Close()

	c := &Classifier{
		width:     labels.Width,
		height:    labels.Height,
		threshold: float32(threshold),
		regions:   make([]gocv.Mat, 0, len(boxes)),
	}
	for _, b := range boxes {
		region := gocv.NewMat()
		value := gocv.NewScalar(float64(b.Label), 0, 0, 0)
		gocv.InRangeWithScalar(labelMat, value, value, &region)
		c.regions = append(c.regions, region)
	}
	runtime.KeepAlive(buf)
	return c, nil
}

// Close releases the region masks
func (c *Classifier) Close() {
	for i := range c.regions {
		c.regions[i].Close()
	}
	c.regions = nil
}

// scratch holds the per-worker intermediate images
type scratch struct {
	gray   gocv.Mat
	binary gocv.Mat
	masked gocv.Mat
}

func newScratch() *scratch {
	return &scratch{gray: gocv.NewMat(), binary: gocv.NewMat(), masked: gocv.NewMat()}
}

func (s *scratch) close() {
	s.gray.Close()
	s.binary.Close()
	s.masked.Close()
}

// centroid returns the truncated mean position of the pixels counted by the
// binary image moments
func centroid(m map[string]float64) types.Point {
	n := int64(m["m00"])
	return types.Point{
		Y: float64(int64(m["m01"]) / n),
		X: float64(int64(m["m10"]) / n),
	}
}

// classifyFrame classifies one intensity frame. Pixels brighter than the
// threshold are foreground; each box whose region holds foreground pixels is
// reported visible at their centroid.
func (c *Classifier) classifyFrame(gray gocv.Mat, frame int, w Window, s *scratch) error {
	if gray.Rows() != c.height || gray.Cols() != c.width || gray.Type() != gocv.MatTypeCV8UC1 {
		return fmt.Errorf("%w: frame %d is %dx%d type %v, want %dx%d 8-bit gray",
			types.ErrInputUnreadable, frame, gray.Cols(), gray.Rows(), gray.Type(), c.width, c.height)
	}

	gocv.Threshold(gray, &s.binary, c.threshold, 255, gocv.ThresholdBinary)
	for rank, region := range c.regions {
		gocv.BitwiseAnd(s.binary, region, &s.masked)
		m := gocv.Moments(s.masked, true)
		if m["m00"] == 0 {
			continue
		}
		w.Detect(frame, rank, centroid(m))
	}
	return nil
}

// ClassifyRange decodes the window's frames from its own reader and writes
// detections into the window. It returns the number of frames classified.
func (c *Classifier) ClassifyRange(ctx context.Context, source types.FrameSource, w Window) (int, error) {
	if w.Len() == 0 {
		return 0, nil
	}

	reader, err := source.Open(w.Start)
	if err != nil {
		return 0, fmt.Errorf("%w: opening reader at frame %d: %w", types.ErrInputUnreadable, w.Start, err)
	}
	defer reader.Close()

	s := newScratch()
	defer s.close()
	for f := w.Start; f < w.End; f++ {
		if err := ctx.Err(); err != nil {
			return f - w.Start, err
		}
		if err := reader.Read(&s.gray); err != nil {
			return f - w.Start, fmt.Errorf("%w: reading frame %d: %w", types.ErrInputUnreadable, f, err)
		}
		if err := c.classifyFrame(s.gray, f, w, s); err != nil {
			return f - w.Start, err
		}
	}
	return w.Len(), nil
}
