package visualization

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"rois2nifti/internal/models"
)

// maskVolume builds a 4x4x2 volume with one foreground pixel on plane 1
func maskVolume() *models.MaskVolume {
	vol := models.NewMaskVolume(4, 4, 2, 0)
	vol.Data[1*4*4+2*4+3] = 1 // plane 1, row 2, col 3
	return vol
}

// TestExtractPlane verifies the foreground/background rendering
func TestExtractPlane(t *testing.T) {
	viewer := NewViewer(maskVolume())

	img, err := viewer.ExtractPlane(1)
	if err != nil {
		t.Fatalf("ExtractPlane() returned error: %v", err)
	}

	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			got := img.At(x, y).(color.Gray).Y
			want := uint8(0)
			if x == 3 && y == 2 {
				want = 255
			}
			if got != want {
				t.Errorf("pixel (%d,%d): expected %d, got %d", x, y, want, got)
			}
		}
	}
}

// TestExtractPlaneOutOfRange verifies plane index validation
func TestExtractPlaneOutOfRange(t *testing.T) {
	viewer := NewViewer(maskVolume())

	if _, err := viewer.ExtractPlane(2); err == nil {
		t.Error("ExtractPlane(2) should fail for a depth-2 volume")
	}
	if _, err := viewer.ExtractPlane(-1); err == nil {
		t.Error("ExtractPlane(-1) should fail")
	}
}

// TestSavePlaneSequence verifies that one JPEG per plane is written
func TestSavePlaneSequence(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "preview")
	viewer := NewViewer(maskVolume())

	if err := viewer.SavePlaneSequence(dir); err != nil {
		t.Fatalf("SavePlaneSequence() returned error: %v", err)
	}

	for _, name := range []string{"mask_000.jpg", "mask_001.jpg"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s to exist: %v", name, err)
		}
	}
}
