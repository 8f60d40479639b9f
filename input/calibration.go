package input

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"boxwatch/types"
)

// calibrationFile is the on-disk calibration layout:
//
//	starts:        # box label -> 1-based start frame
//	  1: 820
//	  2: 815
//	duration: 17885
//	min_length: 55
type calibrationFile struct {
	Starts    map[int]int `yaml:"starts"`
	Duration  int         `yaml:"duration"`
	MinLength float64     `yaml:"min_length"`
}

// LoadCalibration reads a calibration file
func LoadCalibration(path string) (types.Calibration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Calibration{}, fmt.Errorf("%w: failed to read calibration file: %v", types.ErrInvalidConfig, err)
	}
	return ParseCalibration(bytes.NewReader(data))
}

// ParseCalibration decodes a calibration document. Unknown keys are rejected
// so a misspelled field cannot silently fall back to zero.
func ParseCalibration(r io.Reader) (types.Calibration, error) {
	var file calibrationFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		if err == io.EOF {
			return types.Calibration{}, fmt.Errorf("%w: calibration file is empty", types.ErrInvalidConfig)
		}
		return types.Calibration{}, fmt.Errorf("%w: failed to parse calibration: %v", types.ErrInvalidConfig, err)
	}
	if len(file.Starts) == 0 {
		return types.Calibration{}, fmt.Errorf("%w: calibration lists no start frames", types.ErrInvalidConfig)
	}
	for label := range file.Starts {
		if label <= 0 {
			return types.Calibration{}, fmt.Errorf("%w: box label %d must be positive", types.ErrInvalidConfig, label)
		}
	}
	return types.Calibration{
		StartFrames:    file.Starts,
		TrackDuration:  file.Duration,
		MinTrackLength: file.MinLength,
	}, nil
}

// Overrides replaces calibration values with ones given on the command line.
// Nil fields leave the calibration untouched; a zero is applied like any value.
type Overrides struct {
	Duration  *int
	MinLength *float64
}

// Apply returns the calibration with the overrides applied
func (o Overrides) Apply(cal types.Calibration) types.Calibration {
	if o.Duration != nil {
		cal.TrackDuration = *o.Duration
	}
	if o.MinLength != nil {
		cal.MinTrackLength = *o.MinLength
	}
	return cal
}
