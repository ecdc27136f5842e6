// Package visualization renders mask volume planes as grayscale images
// for quick visual QC of a conversion: foreground voxels are white,
// everything else black, one JPEG per slice.
package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"

	"rois2nifti/internal/models"
)

// Viewer extracts preview images from an assembled mask volume.
type Viewer struct {
	volume *models.MaskVolume
}

// NewViewer creates a viewer over the given volume
func NewViewer(volume *models.MaskVolume) *Viewer {
	return &Viewer{volume: volume}
}

// ExtractPlane renders plane z as a grayscale image. Foreground voxels
// (value 1) map to white; any other value maps to black.
func (v *Viewer) ExtractPlane(z int) (image.Image, error) {
	if z < 0 || z >= v.volume.Depth {
		return nil, fmt.Errorf("plane %d exceeds depth %d", z, v.volume.Depth)
	}

	img := image.NewGray(image.Rect(0, 0, v.volume.Width, v.volume.Height))
	plane := v.volume.Plane(z)
	for y := 0; y < v.volume.Height; y++ {
		for x := 0; x < v.volume.Width; x++ {
			if plane[y*v.volume.Width+x] == 1 {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}

	return img, nil
}

// SavePlane saves one rendered plane as a JPEG image
func (v *Viewer) SavePlane(img image.Image, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return jpeg.Encode(file, img, &jpeg.Options{Quality: 90})
}

// SavePlaneSequence renders and saves every plane of the volume into
// outputDir, one numbered JPEG per slice.
func (v *Viewer) SavePlaneSequence(outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	for z := 0; z < v.volume.Depth; z++ {
		img, err := v.ExtractPlane(z)
		if err != nil {
			return err
		}

		filename := filepath.Join(outputDir, fmt.Sprintf("mask_%03d.jpg", z))
		if err := v.SavePlane(img, filename); err != nil {
			return err
		}
	}

	return nil
}
