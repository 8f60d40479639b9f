// Package recording writes diagnostic snapshots of a run's raw arrays as
// NumPy .npy files.
package recording

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"

	"boxwatch/types"
)

// Recorder writes diagnostic snapshots of the raw arrays of one run
type Recorder struct {
	dir string
}

// NewRecorder creates <root>/<runID> for the run's snapshots
func NewRecorder(root, runID string) (*Recorder, error) {
	dir := filepath.Join(root, runID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("could not create snapshot directory: %w", err)
	}
	return &Recorder{dir: dir}, nil
}

// Dir returns the snapshot directory
func (r *Recorder) Dir() string {
	return r.dir
}

// Snapshot writes visibility-<stage>.npy and centroids-<stage>.npy
func (r *Recorder) Snapshot(stage string, visibility [][]types.State, centroids [][]types.Point) error {
	if err := r.writeFile("visibility-"+stage+".npy", func(w io.Writer) error {
		return WriteVisibility(w, visibility)
	}); err != nil {
		return err
	}
	return r.writeFile("centroids-"+stage+".npy", func(w io.Writer) error {
		return WriteCentroids(w, centroids)
	})
}

func (r *Recorder) writeFile(name string, write func(io.Writer) error) error {
	path := filepath.Join(r.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create snapshot %s: %w", name, err)
	}
	bw := bufio.NewWriter(f)
	if err := write(bw); err != nil {
		f.Close()
		return fmt.Errorf("error writing snapshot %s: %w", name, err)
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("error writing snapshot %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("error closing snapshot %s: %w", name, err)
	}
	return nil
}

// WriteVisibility encodes the boxes x frames state array as float64 values
// -2..1 in row-major order
func WriteVisibility(w io.Writer, visibility [][]types.State) error {
	frames := 0
	if len(visibility) > 0 {
		frames = len(visibility[0])
	}
	data := make([]float64, 0, len(visibility)*frames)
	for _, row := range visibility {
		if len(row) != frames {
			return fmt.Errorf("ragged visibility array: row of %d frames, want %d", len(row), frames)
		}
		for _, s := range row {
			data = append(data, float64(s))
		}
	}
	return writeMatrix(w, len(visibility), frames, data)
}

// WriteCentroids encodes the frames x boxes centroid array as a
// frames x 2*boxes matrix with columns y0, x0, y1, x1, ...
func WriteCentroids(w io.Writer, centroids [][]types.Point) error {
	boxes := 0
	if len(centroids) > 0 {
		boxes = len(centroids[0])
	}
	data := make([]float64, 0, len(centroids)*boxes*2)
	for _, row := range centroids {
		if len(row) != boxes {
			return fmt.Errorf("ragged centroid array: row of %d boxes, want %d", len(row), boxes)
		}
		for _, p := range row {
			data = append(data, p.Y, p.X)
		}
	}
	return writeMatrix(w, len(centroids), 2*boxes, data)
}

// writeMatrix writes a rows x cols matrix. gonum matrices cannot be empty,
// so an empty array is written as a zero-length vector.
func writeMatrix(w io.Writer, rows, cols int, data []float64) error {
	if rows == 0 || cols == 0 {
		return npyio.Write(w, []float64{})
	}
	return npyio.Write(w, mat.NewDense(rows, cols, data))
}
