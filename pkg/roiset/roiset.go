// Package roiset reads ImageJ RoiSet archives: a .zip of binary .roi
// records as written by ImageJ's ROI Manager. Only the record fields
// this tool rasterizes are decoded; records with types it does not
// support are kept with an unknown kind so the caller can report and
// skip them individually.
package roiset

import (
	"archive/zip"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"path"
	"strings"

	"rois2nifti/internal/models"
)

// ErrCorruptArchive marks a RoiSet archive that cannot be parsed at
// all. The whole conversion for the input pair is aborted.
var ErrCorruptArchive = errors.New("corrupt RoiSet archive")

// ImageJ ROI type bytes, from the .roi header
const (
	typePolygon  = 0
	typeRect     = 1
	typeOval     = 2
	typeFreehand = 7
)

// Shape path segment opcodes used by composite (shape) records
const (
	segMoveTo  = 0
	segLineTo  = 1
	segQuadTo  = 2
	segCubicTo = 3
	segClose   = 4
)

// Set is one parsed annotation archive. Records are keyed by their
// archive entry name and iterated in archive order, so output built
// from a Set is reproducible.
type Set struct {
	names   []string
	records map[string]models.ROI
}

// NewSet creates an empty annotation set
func NewSet() *Set {
	return &Set{records: make(map[string]models.ROI)}
}

// Add appends a record to the set under its name. Re-adding a name
// replaces the record but keeps its original iteration position.
func (s *Set) Add(roi models.ROI) {
	if _, ok := s.records[roi.Name]; !ok {
		s.names = append(s.names, roi.Name)
	}
	s.records[roi.Name] = roi
}

// Len returns the number of records in the set
func (s *Set) Len() int {
	return len(s.names)
}

// Names returns the record keys in archive entry order
func (s *Set) Names() []string {
	return s.names
}

// Get returns the record with the given key
func (s *Set) Get(name string) (models.ROI, bool) {
	roi, ok := s.records[name]
	return roi, ok
}

// ReadZip parses a RoiSet .zip archive into a Set. Any failure to open
// the archive or decode a record inside it is a CorruptAnnotationArchive
// condition and aborts the whole set.
func ReadZip(zipPath string) (*Set, error) {
	reader, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptArchive, zipPath, err)
	}
	defer reader.Close()

	set := NewSet()
	for _, entry := range reader.File {
		if !strings.HasSuffix(strings.ToLower(entry.Name), ".roi") {
			continue
		}

		rc, err := entry.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: entry %s: %v", ErrCorruptArchive, entry.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: entry %s: %v", ErrCorruptArchive, entry.Name, err)
		}

		name := strings.TrimSuffix(path.Base(entry.Name), path.Ext(entry.Name))
		roi, err := Decode(name, data)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %s: %v", ErrCorruptArchive, entry.Name, err)
		}

		set.Add(roi)
	}

	return set, nil
}

// Decode parses one binary .roi record. The layout is big-endian:
// a 64-byte header ("Iout" magic, type byte at offset 6, bounding box
// shorts at 8-15, coordinate count at 16, shape array length at 36,
// stack position at 56) followed by the coordinate data.
func Decode(name string, data []byte) (models.ROI, error) {
	if len(data) < 64 {
		return models.ROI{}, fmt.Errorf("record %q: truncated header (%d bytes)", name, len(data))
	}
	if string(data[0:4]) != "Iout" {
		return models.ROI{}, fmt.Errorf("record %q: bad magic %q", name, data[0:4])
	}

	roiType := int(data[6])
	top := int(int16(binary.BigEndian.Uint16(data[8:])))
	left := int(int16(binary.BigEndian.Uint16(data[10:])))
	bottom := int(int16(binary.BigEndian.Uint16(data[12:])))
	right := int(int16(binary.BigEndian.Uint16(data[14:])))
	nCoords := int(binary.BigEndian.Uint16(data[16:]))
	shapeLen := int(int32(binary.BigEndian.Uint32(data[36:])))
	position := int(int32(binary.BigEndian.Uint32(data[56:])))

	roi := models.ROI{
		Name:     name,
		RawType:  roiType,
		Position: position,
	}

	switch {
	case roiType == typeFreehand:
		vertices, err := decodeVertices(data, top, left, nCoords)
		if err != nil {
			return models.ROI{}, fmt.Errorf("record %q: %v", name, err)
		}
		roi.Kind = models.KindFreehand
		roi.Vertices = vertices

	case roiType == typeOval:
		roi.Kind = models.KindOval
		roi.Top = top
		roi.Left = left
		roi.BoxWidth = right - left
		roi.BoxHeight = bottom - top

	case roiType == typeRect && shapeLen > 0:
		if len(data) < 64+4*shapeLen {
			return models.ROI{}, fmt.Errorf("record %q: truncated shape array", name)
		}
		paths, err := decodeShapePaths(data, shapeLen)
		if err != nil {
			// Well-formed but not rasterizable (curved segments);
			// keep the record so the caller reports and skips it
			roi.Kind = models.KindUnknown
			return roi, nil
		}
		roi.Kind = models.KindComposite
		roi.Paths = paths

	default:
		roi.Kind = models.KindUnknown
	}

	return roi, nil
}

// decodeVertices reads nCoords pairs of int16 offsets starting at byte
// 64: first all x values relative to left, then all y values relative
// to top.
func decodeVertices(data []byte, top, left, nCoords int) ([]models.Point, error) {
	need := 64 + 4*nCoords
	if len(data) < need {
		return nil, fmt.Errorf("truncated coordinates: need %d bytes, have %d", need, len(data))
	}

	vertices := make([]models.Point, nCoords)
	for i := 0; i < nCoords; i++ {
		x := int(int16(binary.BigEndian.Uint16(data[64+2*i:])))
		y := int(int16(binary.BigEndian.Uint16(data[64+2*nCoords+2*i:])))
		vertices[i] = models.Point{X: float64(left + x), Y: float64(top + y)}
	}
	return vertices, nil
}

// decodeShapePaths reads a shape array of shapeLen float32 values
// starting at byte 64 and splits it into closed paths. Only MOVETO,
// LINETO and CLOSE segments are supported.
func decodeShapePaths(data []byte, shapeLen int) ([][]models.Point, error) {
	floats := make([]float64, shapeLen)
	for i := 0; i < shapeLen; i++ {
		bits := binary.BigEndian.Uint32(data[64+4*i:])
		floats[i] = float64(math.Float32frombits(bits))
	}

	var paths [][]models.Point
	var current []models.Point
	for i := 0; i < len(floats); {
		op := int(floats[i])
		i++
		switch op {
		case segMoveTo:
			if len(current) > 0 {
				paths = append(paths, current)
			}
			if i+2 > len(floats) {
				return nil, fmt.Errorf("shape array ends inside MOVETO")
			}
			current = []models.Point{{X: floats[i], Y: floats[i+1]}}
			i += 2
		case segLineTo:
			if i+2 > len(floats) {
				return nil, fmt.Errorf("shape array ends inside LINETO")
			}
			current = append(current, models.Point{X: floats[i], Y: floats[i+1]})
			i += 2
		case segClose:
			if len(current) > 0 {
				paths = append(paths, current)
				current = nil
			}
		case segQuadTo, segCubicTo:
			return nil, fmt.Errorf("curved shape segment %d not supported", op)
		default:
			return nil, fmt.Errorf("unknown shape segment opcode %d", op)
		}
	}
	if len(current) > 0 {
		paths = append(paths, current)
	}
	return paths, nil
}
