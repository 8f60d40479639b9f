package types

import "gocv.io/x/gocv"

// FrameReader yields consecutive single-channel 8-bit intensity frames
type FrameReader interface {
	// Read decodes the next frame into dst as a Height x Width CV_8UC1 Mat
	Read(dst *gocv.Mat) error
	Close() error
}

// FrameSource opens independent readers over the same mask video. Readers
// never share decoder state, so one can be handed to each worker.
type FrameSource interface {
	Meta() VideoMeta
	// Open returns a reader positioned at the 0-based frame start
	Open(start int) (FrameReader, error)
}
