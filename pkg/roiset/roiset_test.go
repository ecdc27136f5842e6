package roiset

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"rois2nifti/internal/models"
)

// encodeHeader builds a minimal 64-byte .roi header
func encodeHeader(roiType, top, left, bottom, right, nCoords, shapeLen, position int) []byte {
	h := make([]byte, 64)
	copy(h[0:4], "Iout")
	binary.BigEndian.PutUint16(h[4:], 228) // version
	h[6] = byte(roiType)
	binary.BigEndian.PutUint16(h[8:], uint16(top))
	binary.BigEndian.PutUint16(h[10:], uint16(left))
	binary.BigEndian.PutUint16(h[12:], uint16(bottom))
	binary.BigEndian.PutUint16(h[14:], uint16(right))
	binary.BigEndian.PutUint16(h[16:], uint16(nCoords))
	binary.BigEndian.PutUint32(h[36:], uint32(shapeLen))
	binary.BigEndian.PutUint32(h[56:], uint32(position))
	return h
}

// encodeFreehand builds a freehand record from absolute vertices
func encodeFreehand(top, left, position int, vertices []models.Point) []byte {
	data := encodeHeader(typeFreehand, top, left, 0, 0, len(vertices), 0, position)
	coords := make([]byte, 4*len(vertices))
	for i, v := range vertices {
		binary.BigEndian.PutUint16(coords[2*i:], uint16(int16(int(v.X)-left)))
		binary.BigEndian.PutUint16(coords[2*len(vertices)+2*i:], uint16(int16(int(v.Y)-top)))
	}
	return append(data, coords...)
}

// encodeShape builds a composite record from a flat shape array
func encodeShape(position int, shape []float32) []byte {
	data := encodeHeader(typeRect, 0, 0, 0, 0, 0, len(shape), position)
	arr := make([]byte, 4*len(shape))
	for i, f := range shape {
		binary.BigEndian.PutUint32(arr[4*i:], math.Float32bits(f))
	}
	return append(data, arr...)
}

// writeZip writes the given entries to a .zip file under dir
func writeZip(t *testing.T, dir string, entries map[string][]byte, order []string) string {
	t.Helper()
	zipPath := filepath.Join(dir, "RoiSet.zip")

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range order {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("Failed to create zip entry %s: %v", name, err)
		}
		if _, err := w.Write(entries[name]); err != nil {
			t.Fatalf("Failed to write zip entry %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Failed to close zip writer: %v", err)
	}
	if err := os.WriteFile(zipPath, buf.Bytes(), 0644); err != nil {
		t.Fatalf("Failed to write zip file: %v", err)
	}
	return zipPath
}

// TestDecodeFreehand verifies vertex reconstruction from the relative
// short coordinate arrays
func TestDecodeFreehand(t *testing.T) {
	vertices := []models.Point{
		{X: 10, Y: 5},
		{X: 20, Y: 5},
		{X: 20, Y: 15},
		{X: 10, Y: 15},
	}
	data := encodeFreehand(5, 10, 3, vertices)

	roi, err := Decode("0003-0010", data)
	if err != nil {
		t.Fatalf("Decode() returned error: %v", err)
	}

	if roi.Kind != models.KindFreehand {
		t.Errorf("expected KindFreehand, got %v", roi.Kind)
	}
	if roi.Position != 3 {
		t.Errorf("expected position 3, got %d", roi.Position)
	}
	if diff := cmp.Diff(vertices, roi.Vertices); diff != "" {
		t.Errorf("vertices mismatch (-want +got):\n%s", diff)
	}
}

// TestDecodeOval verifies the bounding-box fields
func TestDecodeOval(t *testing.T) {
	data := encodeHeader(typeOval, 4, 6, 14, 18, 0, 0, 2)

	roi, err := Decode("oval", data)
	if err != nil {
		t.Fatalf("Decode() returned error: %v", err)
	}

	if roi.Kind != models.KindOval {
		t.Fatalf("expected KindOval, got %v", roi.Kind)
	}
	if roi.Top != 4 || roi.Left != 6 || roi.BoxWidth != 12 || roi.BoxHeight != 10 {
		t.Errorf("bounding box mismatch: top=%d left=%d w=%d h=%d",
			roi.Top, roi.Left, roi.BoxWidth, roi.BoxHeight)
	}
}

// TestDecodeComposite verifies shape-array path splitting
func TestDecodeComposite(t *testing.T) {
	shape := []float32{
		segMoveTo, 1, 1,
		segLineTo, 4, 1,
		segLineTo, 4, 4,
		segClose,
		segMoveTo, 8, 8,
		segLineTo, 10, 8,
		segLineTo, 10, 10,
		segClose,
	}
	data := encodeShape(1, shape)

	roi, err := Decode("composite", data)
	if err != nil {
		t.Fatalf("Decode() returned error: %v", err)
	}

	if roi.Kind != models.KindComposite {
		t.Fatalf("expected KindComposite, got %v", roi.Kind)
	}

	want := [][]models.Point{
		{{X: 1, Y: 1}, {X: 4, Y: 1}, {X: 4, Y: 4}},
		{{X: 8, Y: 8}, {X: 10, Y: 8}, {X: 10, Y: 10}},
	}
	if diff := cmp.Diff(want, roi.Paths); diff != "" {
		t.Errorf("paths mismatch (-want +got):\n%s", diff)
	}
}

// TestDecodeCurvedShapeIsUnknown verifies that curved composites are
// kept as unknown-kind records instead of failing the archive
func TestDecodeCurvedShapeIsUnknown(t *testing.T) {
	shape := []float32{
		segMoveTo, 1, 1,
		segQuadTo, 2, 2, 3, 1,
		segClose,
	}
	data := encodeShape(1, shape)

	roi, err := Decode("curved", data)
	if err != nil {
		t.Fatalf("Decode() returned error: %v", err)
	}
	if roi.Kind != models.KindUnknown {
		t.Errorf("expected KindUnknown for curved shape, got %v", roi.Kind)
	}
}

// TestDecodeUnsupportedType verifies that line and point records stay
// decodable with an unknown kind
func TestDecodeUnsupportedType(t *testing.T) {
	const typeLine = 3
	data := encodeHeader(typeLine, 0, 0, 0, 0, 0, 0, 5)

	roi, err := Decode("line", data)
	if err != nil {
		t.Fatalf("Decode() returned error: %v", err)
	}
	if roi.Kind != models.KindUnknown {
		t.Errorf("expected KindUnknown, got %v", roi.Kind)
	}
	if roi.RawType != typeLine {
		t.Errorf("expected raw type %d, got %d", typeLine, roi.RawType)
	}
	if roi.Position != 5 {
		t.Errorf("expected position 5, got %d", roi.Position)
	}
}

// TestDecodeRejectsGarbage covers the truncated and bad-magic cases
func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := Decode("short", []byte("Iout")); err == nil {
		t.Error("Decode() should fail on a truncated record")
	}

	bad := encodeHeader(typeOval, 0, 0, 4, 4, 0, 0, 1)
	copy(bad[0:4], "NOPE")
	if _, err := Decode("magic", bad); err == nil {
		t.Error("Decode() should fail on a bad magic")
	}
}

// TestReadZip verifies archive-order iteration and per-record decoding
func TestReadZip(t *testing.T) {
	dir := t.TempDir()

	entries := map[string][]byte{
		"b-second.roi": encodeHeader(typeOval, 0, 0, 6, 6, 0, 0, 2),
		"a-first.roi": encodeFreehand(0, 0, 1, []models.Point{
			{X: 0, Y: 0}, {X: 3, Y: 0}, {X: 3, Y: 3}, {X: 0, Y: 3},
		}),
		"notes.txt": []byte("not a roi"),
	}
	order := []string{"b-second.roi", "a-first.roi", "notes.txt"}
	zipPath := writeZip(t, dir, entries, order)

	set, err := ReadZip(zipPath)
	if err != nil {
		t.Fatalf("ReadZip() returned error: %v", err)
	}

	if set.Len() != 2 {
		t.Fatalf("expected 2 records, got %d", set.Len())
	}
	if diff := cmp.Diff([]string{"b-second", "a-first"}, set.Names()); diff != "" {
		t.Errorf("iteration order mismatch (-want +got):\n%s", diff)
	}

	oval, ok := set.Get("b-second")
	if !ok || oval.Kind != models.KindOval {
		t.Errorf("record b-second: expected oval, got %+v", oval)
	}
}

// TestReadZipCorrupt verifies that a non-zip file aborts with
// ErrCorruptArchive
func TestReadZipCorrupt(t *testing.T) {
	dir := t.TempDir()
	badPath := filepath.Join(dir, "broken.zip")
	if err := os.WriteFile(badPath, []byte("this is not a zip archive"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	_, err := ReadZip(badPath)
	if err == nil {
		t.Fatal("ReadZip() should fail on a corrupt archive")
	}
	if !errors.Is(err, ErrCorruptArchive) {
		t.Errorf("expected ErrCorruptArchive, got %v", err)
	}
}

// TestReadZipBadRecord verifies that a broken record inside the archive
// aborts the whole set
func TestReadZipBadRecord(t *testing.T) {
	dir := t.TempDir()
	entries := map[string][]byte{"bad.roi": []byte("Io")}
	zipPath := writeZip(t, dir, entries, []string{"bad.roi"})

	_, err := ReadZip(zipPath)
	if !errors.Is(err, ErrCorruptArchive) {
		t.Errorf("expected ErrCorruptArchive, got %v", err)
	}
}
