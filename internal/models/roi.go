package models

// ShapeKind identifies the geometry carried by an ROI record.
// The set is closed: every consumer switches over it with an explicit
// KindUnknown arm so that unsupported records are reported and skipped
// rather than silently rasterized.
type ShapeKind int

const (
	// KindFreehand is a single closed polygon given as a vertex list
	KindFreehand ShapeKind = iota

	// KindOval is an ellipse inscribed in a bounding box
	KindOval

	// KindComposite is a union of several closed polygon paths
	KindComposite

	// KindUnknown is any ImageJ record type this tool does not rasterize
	KindUnknown
)

// String returns the ImageJ-style name of the shape kind
func (k ShapeKind) String() string {
	switch k {
	case KindFreehand:
		return "freehand"
	case KindOval:
		return "oval"
	case KindComposite:
		return "composite"
	default:
		return "unknown"
	}
}

// Point is a single vertex in image coordinates.
// X grows rightward, Y grows downward (ImageJ puts y=0 at the top).
type Point struct {
	X float64
	Y float64
}

// ROI is one parsed ImageJ region-of-interest record.
// Records are immutable once parsed; only the fields matching Kind
// carry geometry.
type ROI struct {
	// Name is the record's key, taken from its archive entry name
	Name string

	// Kind tags which geometry fields are populated
	Kind ShapeKind

	// RawType is the ImageJ type byte of the record, kept for
	// diagnostics when Kind is KindUnknown
	RawType int

	// Position is the 1-based index of the target slice in the
	// ordered image sequence
	Position int

	// Vertices is the closed polygon outline (KindFreehand)
	Vertices []Point

	// Top, Left, BoxWidth, BoxHeight describe the bounding box of the
	// inscribed ellipse (KindOval)
	Top       int
	Left      int
	BoxWidth  int
	BoxHeight int

	// Paths holds the closed constituent outlines (KindComposite)
	Paths [][]Point
}
