package capture

import (
	"fmt"

	"gocv.io/x/gocv"

	"boxwatch/types"
)

// Source is a mask video on disk. It only remembers the path and metadata;
// every Open call gets a decoder of its own.
type Source struct {
	path string
	meta types.VideoMeta
}

// OpenSource probes the video metadata and releases the probe handle
func OpenSource(path string) (*Source, error) {
	vc, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: could not open %s: %v", types.ErrInputUnreadable, path, err)
	}
	defer vc.Close()

	if !vc.IsOpened() {
		return nil, fmt.Errorf("%w: could not open %s", types.ErrInputUnreadable, path)
	}

	meta := types.VideoMeta{
		Frames: int(vc.Get(gocv.VideoCaptureFrameCount)),
		FPS:    vc.Get(gocv.VideoCaptureFPS),
		Width:  int(vc.Get(gocv.VideoCaptureFrameWidth)),
		Height: int(vc.Get(gocv.VideoCaptureFrameHeight)),
	}
	if meta.Frames < 0 || meta.Width <= 0 || meta.Height <= 0 {
		return nil, fmt.Errorf("%w: %s reports %d frames of %dx%d", types.ErrInputUnreadable, path, meta.Frames, meta.Width, meta.Height)
	}
	return &Source{path: path, meta: meta}, nil
}

// Path returns the video path
func (s *Source) Path() string {
	return s.path
}

// Meta returns the probed metadata
func (s *Source) Meta() types.VideoMeta {
	return s.meta
}

// Open starts an independent decoder positioned at frame start
func (s *Source) Open(start int) (types.FrameReader, error) {
	vc, err := gocv.VideoCaptureFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: could not open %s: %v", types.ErrInputUnreadable, s.path, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("%w: could not open %s", types.ErrInputUnreadable, s.path)
	}
	if start > 0 {
		vc.Set(gocv.VideoCapturePosFrames, float64(start))
	}
	return &Reader{
		vc:     vc,
		frame:  gocv.NewMat(),
		width:  s.meta.Width,
		height: s.meta.Height,
	}, nil
}

// Reader decodes frames and converts them to single-channel intensity
type Reader struct {
	vc     *gocv.VideoCapture
	frame  gocv.Mat
	width  int
	height int
	read   int
}

// Read decodes the next frame into dst as 8-bit gray
func (r *Reader) Read(dst *gocv.Mat) error {
	if ok := r.vc.Read(&r.frame); !ok || r.frame.Empty() {
		return fmt.Errorf("%w: no frame after %d reads", types.ErrInputUnreadable, r.read)
	}
	r.read++

	if r.frame.Channels() == 1 {
		r.frame.CopyTo(dst)
	} else {
		gocv.CvtColor(r.frame, dst, gocv.ColorBGRToGray)
	}
	if dst.Rows() != r.height || dst.Cols() != r.width {
		return fmt.Errorf("%w: decoded %dx%d frame, want %dx%d", types.ErrInputUnreadable, dst.Cols(), dst.Rows(), r.width, r.height)
	}
	return nil
}

// Close releases the decoder and its buffer
func (r *Reader) Close() error {
	r.frame.Close()
	if err := r.vc.Close(); err != nil {
		return fmt.Errorf("error closing video capture: %v", err)
	}
	return nil
}
