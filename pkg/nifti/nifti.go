// Package nifti writes mask volumes as NIfTI-1 files. The emitted file
// is the 348-byte NIfTI-1 header, a 4-byte extension indicator, then
// the voxels as little-endian float64 in Fortran order (rows fastest),
// matching a (H, W, D) array saved by the common neuroimaging tools.
// The spatial transform is always the identity: no calibration is
// computed from the source images.
package nifti

import (
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"

	"rois2nifti/internal/models"
)

// datatype code for 64-bit floats in the NIfTI-1 standard
const dtFloat64 = 64

// header is the fixed NIfTI-1 header layout. Field sizes follow the
// standard exactly; binary.Write emits it without padding.
type header struct {
	SizeofHdr     int32
	DataType      [10]byte
	DBName        [18]byte
	Extents       int32
	SessionError  int16
	Regular       byte
	DimInfo       byte
	Dim           [8]int16
	IntentP1      float32
	IntentP2      float32
	IntentP3      float32
	IntentCode    int16
	Datatype      int16
	Bitpix        int16
	SliceStart    int16
	Pixdim        [8]float32
	VoxOffset     float32
	SclSlope      float32
	SclInter      float32
	SliceEnd      int16
	SliceCode     byte
	XyztUnits     byte
	CalMax        float32
	CalMin        float32
	SliceDuration float32
	Toffset       float32
	Glmax         int32
	Glmin         int32
	Descrip       [80]byte
	AuxFile       [24]byte
	QformCode     int16
	SformCode     int16
	QuaternB      float32
	QuaternC      float32
	QuaternD      float32
	QoffsetX      float32
	QoffsetY      float32
	QoffsetZ      float32
	SrowX         [4]float32
	SrowY         [4]float32
	SrowZ         [4]float32
	IntentName    [16]byte
	Magic         [4]byte
}

// newHeader builds the header for a volume of the given dimensions
// with an identity affine.
func newHeader(height, width, depth int) header {
	h := header{
		SizeofHdr: 348,
		Regular:   'r',
		Dim:       [8]int16{3, int16(height), int16(width), int16(depth), 1, 1, 1, 1},
		Datatype:  dtFloat64,
		Bitpix:    64,
		Pixdim:    [8]float32{1, 1, 1, 1, 1, 1, 1, 1},
		VoxOffset: 352,
		SclSlope:  1,
		SformCode: 2,
		SrowX:     [4]float32{1, 0, 0, 0},
		SrowY:     [4]float32{0, 1, 0, 0},
		SrowZ:     [4]float32{0, 0, 1, 0},
		Magic:     [4]byte{'n', '+', '1', 0},
	}
	copy(h.Descrip[:], "binary ROI mask")
	return h
}

// Write saves the volume at path. A .gz suffix selects gzip
// compression, so the conventional name.nii.gz comes out compressed.
func Write(vol *models.MaskVolume, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %v", err)
	}
	defer file.Close()

	var w io.Writer = file
	if strings.HasSuffix(strings.ToLower(path), ".gz") {
		gz := gzip.NewWriter(file)
		defer gz.Close()
		w = gz
	}

	return Encode(w, vol)
}

// Encode emits the header, extension indicator and voxel payload.
// Voxels are written rows-fastest so voxel (row, col) of plane z lands
// where an (H, W, D) array's element (row, col, z) belongs.
func Encode(w io.Writer, vol *models.MaskVolume) error {
	if err := binary.Write(w, binary.LittleEndian, newHeader(vol.Height, vol.Width, vol.Depth)); err != nil {
		return fmt.Errorf("failed to write NIfTI header: %v", err)
	}

	// No header extensions
	if _, err := w.Write([]byte{0, 0, 0, 0}); err != nil {
		return fmt.Errorf("failed to write extension indicator: %v", err)
	}

	buf := make([]float64, vol.Height)
	for z := 0; z < vol.Depth; z++ {
		base := z * vol.Height * vol.Width
		for col := 0; col < vol.Width; col++ {
			for row := 0; row < vol.Height; row++ {
				buf[row] = vol.Data[base+row*vol.Width+col]
			}
			if err := binary.Write(w, binary.LittleEndian, buf); err != nil {
				return fmt.Errorf("failed to write voxel data: %v", err)
			}
		}
	}

	return nil
}
