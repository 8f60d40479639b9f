package input

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boxwatch/types"
)

func TestParseCalibration(t *testing.T) {
	doc := `
starts:
  1: 820
  2: 815
duration: 17885
min_length: 55
`
	cal, err := ParseCalibration(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, map[int]int{1: 820, 2: 815}, cal.StartFrames)
	assert.Equal(t, 17885, cal.TrackDuration)
	assert.InDelta(t, 55.0, cal.MinTrackLength, 0)

	boxes := []types.Box{{Label: 1, Rank: 0}, {Label: 2, Rank: 1}}
	assert.NoError(t, cal.Validate(boxes))
}

func TestParseCalibrationErrors(t *testing.T) {
	testCases := []struct {
		name string
		doc  string
	}{
		{"empty document", ""},
		{"no start frames", "duration: 10\n"},
		{"unknown field", "starts: {1: 3}\nduraton: 10\n"},
		{"label zero", "starts: {0: 3}\nduration: 10\n"},
		{"malformed yaml", "starts: [1, 2\n"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseCalibration(strings.NewReader(tc.doc))
			require.ErrorIs(t, err, types.ErrInvalidConfig)
		})
	}
}

func TestLoadCalibration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calibration.yaml")
	require.NoError(t, os.WriteFile(path, []byte("starts:\n  3: 12\nduration: 40\n"), 0o600))

	cal, err := LoadCalibration(path)
	require.NoError(t, err)
	assert.Equal(t, map[int]int{3: 12}, cal.StartFrames)

	_, err = LoadCalibration(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, types.ErrInvalidConfig)
}

func TestOverridesApply(t *testing.T) {
	cal := types.Calibration{StartFrames: map[int]int{1: 0}, TrackDuration: 10, MinTrackLength: 5}

	assert.Equal(t, cal, Overrides{}.Apply(cal))

	duration, minLength := 20, 7.5
	got := Overrides{Duration: &duration, MinLength: &minLength}.Apply(cal)
	assert.Equal(t, 20, got.TrackDuration)
	assert.InDelta(t, 7.5, got.MinTrackLength, 0)
	assert.Equal(t, 10, cal.TrackDuration, "the original is not modified")
}

func TestOverridesApplyZeroMinLength(t *testing.T) {
	cal := types.Calibration{StartFrames: map[int]int{1: 0}, TrackDuration: 10, MinTrackLength: 5}

	zero := 0.0
	got := Overrides{MinLength: &zero}.Apply(cal)
	assert.Zero(t, got.MinTrackLength)
	assert.Equal(t, 10, got.TrackDuration)
}
