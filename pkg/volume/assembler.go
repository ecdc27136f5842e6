// Package volume assembles per-slice ROI masks into a single 3D mask
// volume aligned with an ordered image sequence.
package volume

import (
	"errors"
	"fmt"
	"log"

	"rois2nifti/internal/models"
	"rois2nifti/pkg/rasterize"
	"rois2nifti/pkg/roiset"
)

// ErrEmptySequence marks an assembly attempt with no ordered images to
// align against.
var ErrEmptySequence = errors.New("empty image sequence")

// Assembler builds a mask volume from an annotation set. It is a pure
// single-pass transform: no state survives between Assemble calls, so
// independent input pairs can be processed concurrently with separate
// assemblers.
type Assembler struct {
	background float64
	rasterizer *rasterize.Rasterizer
}

// NewAssembler creates an assembler using the given background value
// for every plane it produces.
func NewAssembler(background float64) *Assembler {
	return &Assembler{
		background: background,
		rasterizer: rasterize.NewRasterizer(background),
	}
}

// Assemble produces a height×width×depth mask volume, with depth the
// length of the ordered sequence. Every plane starts as uniform
// background; each ROI record is rasterized into the plane its 1-based
// position targets. Records with unsupported kinds or out-of-range
// targets are reported and skipped; when two records target the same
// plane the later one in set order wins.
func (a *Assembler) Assemble(height, width int, ordered []string, set *roiset.Set) (*models.MaskVolume, error) {
	if len(ordered) == 0 {
		return nil, ErrEmptySequence
	}
	if height <= 0 || width <= 0 {
		return nil, fmt.Errorf("invalid reference dimensions %dx%d", height, width)
	}

	depth := len(ordered)
	vol := models.NewMaskVolume(height, width, depth, a.background)

	for _, name := range set.Names() {
		roi, _ := set.Get(name)

		z := roi.Position - 1
		if z < 0 || z >= depth {
			log.Printf("Skipping ROI %q: position %d outside slice range 1..%d", roi.Name, roi.Position, depth)
			continue
		}

		plane, err := a.rasterizer.Mask(roi, height, width)
		if err != nil {
			// Leaves the target plane as it already is
			log.Printf("Skipping ROI %q: %v", roi.Name, err)
			continue
		}

		vol.SetPlane(z, plane)
	}

	return vol, nil
}
