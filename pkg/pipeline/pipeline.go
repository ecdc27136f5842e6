// Package pipeline wires the mask conversion together: image directory
// scan, slice ordering, annotation parsing, volume assembly and NIfTI
// output. One Converter handles one image-directory/RoiSet pair to
// completion; nothing is shared between converters, so independent
// pairs can run concurrently.
package pipeline

import (
	"fmt"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/stat"

	"rois2nifti/internal/models"
	"rois2nifti/pkg/dicomdir"
	"rois2nifti/pkg/nifti"
	"rois2nifti/pkg/roiset"
	"rois2nifti/pkg/sequence"
	"rois2nifti/pkg/volume"
)

// Params holds the conversion configuration for one input pair.
type Params struct {
	// DicomDir is the directory containing the 2D DICOM images
	DicomDir string

	// RoiZipPath is the ImageJ RoiSet .zip matching the images
	RoiZipPath string

	// OutputDir receives the .nii.gz file, named after the RoiSet zip
	OutputDir string

	// Background is the voxel value outside every region of interest
	Background float64

	// Delimiter splits filenames for the fallback slice sort
	Delimiter string
}

// MaskStats summarizes the produced volume. The per-plane coverage
// statistics give a quick sanity check that the annotations landed on
// the slices they were drawn on.
type MaskStats struct {
	// ForegroundVoxels is the total count of voxels holding 1
	ForegroundVoxels int

	// ForegroundFraction is ForegroundVoxels over the volume size
	ForegroundFraction float64

	// PopulatedPlanes is the number of planes with any foreground
	PopulatedPlanes int

	// MeanPlaneCoverage is the mean foreground fraction across planes
	MeanPlaneCoverage float64

	// StdDevPlaneCoverage is the standard deviation of the per-plane
	// foreground fraction
	StdDevPlaneCoverage float64
}

// Converter runs the conversion for one input pair.
type Converter struct {
	params  *Params
	ordered []string
	volume  *models.MaskVolume
	stats   MaskStats
}

// NewConverter creates a converter for the given parameters.
func NewConverter(params *Params) *Converter {
	return &Converter{params: params}
}

// Process runs the full conversion pipeline and writes the output
// volume. Per-record defects inside the steps are recovered locally;
// an error returned here means no volume was produced for this pair.
func (c *Converter) Process() error {
	// Step 1: Scan the image directory headers
	fmt.Println("Step 1: Scanning DICOM directory...")
	records, err := dicomdir.Scan(c.params.DicomDir)
	if err != nil {
		return fmt.Errorf("failed to scan image directory: %v", err)
	}
	if len(records) == 0 {
		return fmt.Errorf("no decodable DICOM images in %s", c.params.DicomDir)
	}
	fmt.Printf("Found %d DICOM images in %s\n", len(records), c.params.DicomDir)

	// Step 2: Determine the slice order
	fmt.Println("Step 2: Determining slice order...")
	c.ordered = sequence.NewSorter(c.params.Delimiter).Order(records)

	// Step 3: Parse the annotation archive
	fmt.Println("Step 3: Reading RoiSet archive...")
	set, err := roiset.ReadZip(c.params.RoiZipPath)
	if err != nil {
		return fmt.Errorf("failed to read annotations: %v", err)
	}
	fmt.Printf("Parsed %d ROI records from %s\n", set.Len(), c.params.RoiZipPath)

	// Step 4: Read the reference dimensions from the first ordered image
	fmt.Println("Step 4: Reading reference image dimensions...")
	rows, cols, err := dicomdir.ReferenceDimensions(filepath.Join(c.params.DicomDir, c.ordered[0]))
	if err != nil {
		return fmt.Errorf("failed to read reference dimensions: %v", err)
	}
	fmt.Printf("Mask planes will be %dx%d\n", rows, cols)

	// Step 5: Assemble the mask volume
	fmt.Println("Step 5: Rasterizing ROIs into the mask volume...")
	vol, err := volume.NewAssembler(c.params.Background).Assemble(rows, cols, c.ordered, set)
	if err != nil {
		return fmt.Errorf("failed to assemble mask volume: %v", err)
	}
	c.volume = vol
	c.stats = computeStats(vol)

	// Step 6: Write the NIfTI volume
	fmt.Println("Step 6: Writing NIfTI output...")
	outputPath := c.OutputPath()
	if err := nifti.Write(vol, outputPath); err != nil {
		return fmt.Errorf("failed to write output volume: %v", err)
	}
	fmt.Printf("Mask volume saved to: %s\n", outputPath)

	return nil
}

// OutputPath returns the destination file: the RoiSet zip's base name
// with a .nii.gz suffix, inside the output directory.
func (c *Converter) OutputPath() string {
	base := filepath.Base(c.params.RoiZipPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(c.params.OutputDir, base+".nii.gz")
}

// GetStats returns the summary statistics of the assembled volume
func (c *Converter) GetStats() MaskStats {
	return c.stats
}

// GetVolume returns the assembled mask volume, or nil before Process
// has succeeded
func (c *Converter) GetVolume() *models.MaskVolume {
	return c.volume
}

// computeStats derives the mask summary from per-plane foreground
// coverage fractions.
func computeStats(vol *models.MaskVolume) MaskStats {
	planeSize := vol.Height * vol.Width
	coverages := make([]float64, vol.Depth)

	total := 0
	populated := 0
	for z := 0; z < vol.Depth; z++ {
		count := 0
		for _, v := range vol.Data[z*planeSize : (z+1)*planeSize] {
			if v == 1 {
				count++
			}
		}
		coverages[z] = float64(count) / float64(planeSize)
		total += count
		if count > 0 {
			populated++
		}
	}

	return MaskStats{
		ForegroundVoxels:    total,
		ForegroundFraction:  float64(total) / float64(planeSize*vol.Depth),
		PopulatedPlanes:     populated,
		MeanPlaneCoverage:   stat.Mean(coverages, nil),
		StdDevPlaneCoverage: stat.StdDev(coverages, nil),
	}
}
