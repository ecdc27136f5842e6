// Package rasterize converts ROI shape records into per-slice binary
// masks. Vertex coordinates are (x, y) with y growing downward, the
// ImageJ image convention; pixels are indexed (row, col) = (y, x).
package rasterize

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"rois2nifti/internal/models"
)

// ErrUnsupportedKind marks an ROI record whose shape kind this
// rasterizer cannot fill. Callers skip the record and continue.
var ErrUnsupportedKind = errors.New("unsupported ROI shape kind")

// Rasterizer fills ROI shapes into fixed-size binary planes.
type Rasterizer struct {
	// background is the fill value outside the region, applied
	// uniformly to every produced plane
	background float64
}

// NewRasterizer creates a rasterizer using the given background value.
func NewRasterizer(background float64) *Rasterizer {
	return &Rasterizer{background: background}
}

// Mask rasterizes one ROI record into a row-major height×width plane
// holding 1 inside the region and the background value elsewhere.
// An unrecognized shape kind yields an ErrUnsupportedKind error that
// names the offending record.
func (r *Rasterizer) Mask(roi models.ROI, height, width int) ([]float64, error) {
	plane := make([]float64, height*width)
	if r.background != 0 {
		for i := range plane {
			plane[i] = r.background
		}
	}

	switch roi.Kind {
	case models.KindFreehand:
		fillPolygon(plane, height, width, roi.Vertices)
	case models.KindOval:
		fillEllipse(plane, height, width, roi.Top, roi.Left, roi.BoxWidth, roi.BoxHeight)
	case models.KindComposite:
		// A pixel is foreground if it is inside any constituent path
		for _, path := range roi.Paths {
			fillPolygon(plane, height, width, path)
		}
	default:
		return nil, fmt.Errorf("%w: record %q has type %d", ErrUnsupportedKind, roi.Name, roi.RawType)
	}

	return plane, nil
}

// fillPolygon scan-fills a closed polygon using the even-odd rule.
// For each pixel row the crossings of the polygon edges are paired
// into half-open [start, end) column spans, so an axis-aligned square
// of side N covers exactly N*N pixels.
func fillPolygon(plane []float64, height, width int, vertices []models.Point) {
	if len(vertices) < 3 {
		return
	}

	minY, maxY := vertices[0].Y, vertices[0].Y
	for _, v := range vertices[1:] {
		minY = math.Min(minY, v.Y)
		maxY = math.Max(maxY, v.Y)
	}

	rowFirst := int(math.Ceil(minY))
	rowLast := int(math.Floor(maxY))
	if rowFirst < 0 {
		rowFirst = 0
	}
	if rowLast > height-1 {
		rowLast = height - 1
	}

	crossings := make([]float64, 0, len(vertices))
	for row := rowFirst; row <= rowLast; row++ {
		y := float64(row)
		crossings = crossings[:0]

		for i := range vertices {
			p1 := vertices[i]
			p2 := vertices[(i+1)%len(vertices)]

			// Half-open edge rule: horizontal edges never cross and
			// a vertex on the scanline is counted exactly once
			if (p1.Y > y) == (p2.Y > y) {
				continue
			}
			x := p1.X + (y-p1.Y)*(p2.X-p1.X)/(p2.Y-p1.Y)
			crossings = append(crossings, x)
		}

		sort.Float64s(crossings)

		for k := 0; k+1 < len(crossings); k += 2 {
			col := int(math.Ceil(crossings[k]))
			if col < 0 {
				col = 0
			}
			for ; col < width && float64(col) < crossings[k+1]; col++ {
				plane[row*width+col] = 1
			}
		}
	}
}

// fillEllipse fills the ellipse inscribed in the bounding box at
// (top, left) with the given width and height. Radii are the integer
// half-extents, matching ImageJ's own rounding; the center is the
// top-left corner offset by the radii.
func fillEllipse(plane []float64, height, width, top, left, boxWidth, boxHeight int) {
	ry := boxHeight / 2
	rx := boxWidth / 2
	cy := top + ry
	cx := left + rx

	for row := cy - ry; row <= cy+ry; row++ {
		if row < 0 || row >= height {
			continue
		}
		for col := cx - rx; col <= cx+rx; col++ {
			if col < 0 || col >= width {
				continue
			}
			dy := row - cy
			dx := col - cx

			// Inside test in integer arithmetic, boundary inclusive:
			// (dy/ry)^2 + (dx/rx)^2 <= 1 scaled by (ry*rx)^2
			if dy*dy*rx*rx+dx*dx*ry*ry <= ry*ry*rx*rx {
				plane[row*width+col] = 1
			}
		}
	}
}
