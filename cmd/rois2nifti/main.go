package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"rois2nifti/pkg/config"
	"rois2nifti/pkg/pipeline"
	"rois2nifti/pkg/visualization"
)

func main() {
	// Parse command line arguments
	dicomDir := flag.String("dicom", "", "Directory containing the 2D DICOM images")
	roiZip := flag.String("rois", "", "Path to the ImageJ RoiSet .zip matching the images")
	outputDir := flag.String("output", ".", "Directory for the output .nii.gz file")
	background := flag.Float64("background", 0, "Voxel value outside the regions of interest")
	configPath := flag.String("config", "config.yaml", "Path to an optional YAML configuration file")
	savePreview := flag.Bool("preview", false, "Save per-plane mask preview JPEGs")
	previewDir := flag.String("preview-dir", "", "Directory for preview images (default: from config)")
	flag.Parse()

	// Validate inputs
	if *dicomDir == "" || *roiZip == "" {
		flag.Usage()
		os.Exit(1)
	}

	// Load configuration; command line flags override it
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if flagPassed("background") {
		cfg.Mask.Background = *background
	}
	if *savePreview {
		cfg.Output.SavePreview = true
	}
	if *previewDir != "" {
		cfg.Output.PreviewDir = *previewDir
	}

	fmt.Println("================================")
	fmt.Println("IMAGEJ ROI RASTERIZATION TO NIFTI MASK VOLUMES")
	fmt.Println("================================")

	// Initialize conversion parameters
	params := &pipeline.Params{
		DicomDir:   *dicomDir,
		RoiZipPath: *roiZip,
		OutputDir:  *outputDir,
		Background: cfg.Mask.Background,
		Delimiter:  cfg.Sequence.Delimiter,
	}

	// Create converter instance
	converter := pipeline.NewConverter(params)

	// Run the conversion pipeline
	fmt.Println("Starting ROI to mask volume conversion...")
	startTime := time.Now()
	if err := converter.Process(); err != nil {
		log.Fatalf("Conversion failed: %v", err)
	}
	processingTime := time.Since(startTime)

	// Display the mask summary
	stats := converter.GetStats()
	vol := converter.GetVolume()
	fmt.Printf("\nConversion completed successfully in %.2f seconds!\n", processingTime.Seconds())
	fmt.Printf("Output volume saved to: %s\n\n", converter.OutputPath())

	fmt.Printf("Mask volume summary:\n")
	fmt.Printf("====================\n")
	fmt.Printf("Dimensions (HxWxD): %dx%dx%d\n", vol.Height, vol.Width, vol.Depth)
	fmt.Printf("Background value: %g\n", vol.Background)
	fmt.Printf("Foreground voxels: %d (%.4f%% of volume)\n",
		stats.ForegroundVoxels, stats.ForegroundFraction*100)
	fmt.Printf("Planes with foreground: %d of %d\n", stats.PopulatedPlanes, vol.Depth)
	fmt.Printf("Mean plane coverage: %.4f (stddev %.4f)\n",
		stats.MeanPlaneCoverage, stats.StdDevPlaneCoverage)

	// Save preview images if requested
	if cfg.Output.SavePreview {
		previewPath := filepath.Join(*outputDir, cfg.Output.PreviewDir)
		fmt.Printf("\nSaving mask plane previews to: %s\n", previewPath)

		viewer := visualization.NewViewer(vol)
		if err := viewer.SavePlaneSequence(previewPath); err != nil {
			log.Printf("Warning: Failed to save previews: %v", err)
		} else {
			fmt.Println("Preview images saved!")
		}
	}
}

// flagPassed reports whether the named flag was set on the command line
func flagPassed(name string) bool {
	passed := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			passed = true
		}
	})
	return passed
}
