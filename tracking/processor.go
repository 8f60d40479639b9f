package tracking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"boxwatch/metrics"
	"boxwatch/recording"
	"boxwatch/types"
	"boxwatch/utils"
)

// Result holds everything a successful run produces
type Result struct {
	RunID string
	Meta  types.VideoMeta
	Boxes []types.Box
	// Visibility is indexed [rank][frame]
	Visibility [][]types.State
	// Centroids is indexed [frame][rank]
	Centroids [][]types.Point
	// Sessions is keyed by box rank
	Sessions map[int]types.BoxSessions
}

// Processor computes box visibility, centroids and sessions for a mask video.
// The boxes, calibration and frame partition are fixed at construction.
type Processor struct {
	source  types.FrameSource
	labels  types.LabelMap
	boxes   []types.Box
	cal     types.Calibration
	cfg     types.ProcessorConfig
	meta    types.VideoMeta
	ranges  []utils.FrameRange
	metrics *metrics.Metrics
}

// Option configures optional processor collaborators
type Option func(*Processor)

// WithMetrics records run metrics into m
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Processor) {
		p.metrics = m
	}
}

// NewProcessor validates the inputs against each other before any frame is read
func NewProcessor(source types.FrameSource, labels types.LabelMap, cal types.Calibration, cfg types.ProcessorConfig, opts ...Option) (*Processor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	meta := source.Meta()
	if meta.Frames < 0 {
		return nil, fmt.Errorf("%w: video reports %d frames", types.ErrInputUnreadable, meta.Frames)
	}
	if meta.Width != labels.Width || meta.Height != labels.Height {
		return nil, fmt.Errorf("%w: label image is %dx%d but video frames are %dx%d",
			types.ErrInvalidConfig, labels.Width, labels.Height, meta.Width, meta.Height)
	}

	boxes := labels.Boxes()
	if err := cal.Validate(boxes); err != nil {
		return nil, err
	}

	workers := utils.WorkerCount(cfg.Workers, cfg.MaxWorkers)
	p := &Processor{
		source: source,
		labels: labels,
		boxes:  boxes,
		cal:    cal,
		cfg:    cfg,
		meta:   meta,
		ranges: utils.SplitFrameRanges(workers, meta.Frames),
	}
	for _, opt := range opts {
		opt(p)
	}

	labelsFound := make([]int, len(boxes))
	for i, b := range boxes {
		labelsFound[i] = b.Label
	}
	Logf("Total frames: %d", meta.Frames)
	Logf("FPS: %g", meta.FPS)
	Logf("Boxes: %v", labelsFound)
	Logf("Starters: %v", cal.StartFrames)
	Logf("Using %d workers", workers)
	return p, nil
}

// Boxes returns the boxes found in the label image, ordered by rank
func (p *Processor) Boxes() []types.Box {
	return p.boxes
}

// Ranges returns the frame ranges handed to the classification workers
func (p *Processor) Ranges() []utils.FrameRange {
	return p.ranges
}

// Run classifies every frame in parallel, then smooths, debounces and
// extracts sessions sequentially. Any failure fails the whole run and no
// partial result is returned.
func (p *Processor) Run(ctx context.Context) (*Result, error) {
	res, err := p.run(ctx)
	p.metrics.RecordRun(err)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (p *Processor) run(ctx context.Context) (*Result, error) {
	runID := uuid.NewString()
	grid := NewGrid(len(p.boxes), p.meta.Frames)

	var recorder *recording.Recorder
	if p.cfg.SnapshotDir != "" {
		r, err := recording.NewRecorder(p.cfg.SnapshotDir, runID)
		if err != nil {
			Logf("[%s] snapshots disabled: %v", runID, err)
		} else {
			recorder = r
		}
	}

	Logf("[%s] (1/3) Processing visibility...", runID)
	start := time.Now()
	if err := p.classify(ctx, grid); err != nil {
		return nil, fmt.Errorf("visibility processing failed: %w", err)
	}
	p.metrics.RecordStage(metrics.StageClassify, time.Since(start).Seconds())

	Logf("[%s] (2/3) Processing number of in/out...", runID)
	start = time.Now()
	grid.Smooth(p.cfg.SmoothRadius)
	p.metrics.RecordStage(metrics.StageSmooth, time.Since(start).Seconds())

	start = time.Now()
	grid.Debounce(p.boxes, p.cal)
	p.metrics.RecordStage(metrics.StageDebounce, time.Since(start).Seconds())
	snapshot(recorder, runID, "02", grid)

	Logf("[%s] (3/3) Processing sessions time and distance...", runID)
	start = time.Now()
	sessions := grid.Sessions()
	p.metrics.RecordStage(metrics.StageSessions, time.Since(start).Seconds())
	p.metrics.RecordSessions(sessions)
	snapshot(recorder, runID, "03", grid)

	return &Result{
		RunID:      runID,
		Meta:       p.meta,
		Boxes:      p.boxes,
		Visibility: grid.VisibilityArray(),
		Centroids:  grid.CentroidArray(),
		Sessions:   sessions,
	}, nil
}

// classify fans the frame ranges out to one worker each. Every worker owns
// the grid window of its range, its own reader and scratch images; the
// region masks are shared read-only. The first failure cancels the others.
func (p *Processor) classify(ctx context.Context, grid *Grid) error {
	classifier, err := NewClassifier(p.labels, p.boxes, p.cfg.BinaryThreshold)
	if err != nil {
		return err
	}
	defer classifier.Close()

	p.metrics.SetWorkers(len(p.ranges))
	g, gctx := errgroup.WithContext(ctx)
	for _, r := range p.ranges {
		if r.Len() == 0 {
			continue
		}
		w := grid.Window(r)
		g.Go(func() error {
			n, err := classifier.ClassifyRange(gctx, p.source, w)
			p.metrics.RecordFrames(n)
			if err != nil {
				return fmt.Errorf("frames [%d, %d): %w", r.Start, r.End, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func snapshot(r *recording.Recorder, runID, stage string, grid *Grid) {
	if r == nil {
		return
	}
	if err := r.Snapshot(stage, grid.VisibilityArray(), grid.CentroidArray()); err != nil {
		Logf("[%s] snapshot %s failed: %v", runID, stage, err)
	}
}
