package models

// MaskVolume is a dense 3D segmentation mask assembled from per-slice
// planes. Every voxel holds either the configured background value or
// the foreground value 1.
type MaskVolume struct {
	// Data is the volume as a 1D array, plane-major: voxel (y, x) of
	// plane z lives at z*Height*Width + y*Width + x
	Data []float64

	// Width is the number of columns in each plane
	Width int

	// Height is the number of rows in each plane
	Height int

	// Depth is the number of planes, one per source image
	Depth int

	// Background is the fill value outside every region of interest
	Background float64
}

// NewMaskVolume allocates a volume with every voxel set to background
func NewMaskVolume(height, width, depth int, background float64) *MaskVolume {
	v := &MaskVolume{
		Data:       make([]float64, height*width*depth),
		Width:      width,
		Height:     height,
		Depth:      depth,
		Background: background,
	}
	if background != 0 {
		for i := range v.Data {
			v.Data[i] = background
		}
	}
	return v
}

// SetPlane overwrites plane z with the given row-major Height×Width mask
func (v *MaskVolume) SetPlane(z int, plane []float64) {
	copy(v.Data[z*v.Height*v.Width:(z+1)*v.Height*v.Width], plane)
}

// Plane returns a copy of plane z as a row-major Height×Width mask
func (v *MaskVolume) Plane(z int) []float64 {
	plane := make([]float64, v.Height*v.Width)
	copy(plane, v.Data[z*v.Height*v.Width:(z+1)*v.Height*v.Width])
	return plane
}
