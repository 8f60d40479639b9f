package capture

import (
	"fmt"

	"gocv.io/x/gocv"

	"boxwatch/types"
)

// LoadLabels reads a single-channel 8 or 16 bit label image (TIFF, PNG, ...)
// without any conversion, so label values survive intact.
func LoadLabels(path string) (types.LabelMap, error) {
	img := gocv.IMRead(path, gocv.IMReadUnchanged)
	defer img.Close()

	if img.Empty() {
		return types.LabelMap{}, fmt.Errorf("%w: could not read label image %s", types.ErrInputUnreadable, path)
	}
	if img.Channels() != 1 {
		return types.LabelMap{}, fmt.Errorf("%w: label image %s has %d channels, want 1", types.ErrInvalidConfig, path, img.Channels())
	}

	width, height := img.Cols(), img.Rows()
	labels := make([]uint16, width*height)
	switch img.Type() {
	case gocv.MatTypeCV8U:
		data, err := img.DataPtrUint8()
		if err != nil {
			return types.LabelMap{}, fmt.Errorf("%w: label image data: %v", types.ErrInputUnreadable, err)
		}
		for i, v := range data {
			labels[i] = uint16(v)
		}
	case gocv.MatTypeCV16U:
		data, err := img.DataPtrUint16()
		if err != nil {
			return types.LabelMap{}, fmt.Errorf("%w: label image data: %v", types.ErrInputUnreadable, err)
		}
		copy(labels, data)
	default:
		return types.LabelMap{}, fmt.Errorf("%w: label image %s must be 8 or 16 bit unsigned", types.ErrInvalidConfig, path)
	}

	return types.NewLabelMap(width, height, labels)
}
