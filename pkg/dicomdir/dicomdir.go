// Package dicomdir is the image source for mask conversion: it scans a
// directory of DICOM files, extracting each file's identity and its
// optional InstanceNumber ordering key, and reads the reference
// dimensions that establish the mask plane size. Pixel data is never
// loaded; only headers matter here.
package dicomdir

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	"rois2nifti/pkg/sequence"
)

// Scan parses the headers of every file in dir and returns one record
// per decodable DICOM file. Files that fail to decode are skipped with
// a diagnostic; they are never fatal for the directory.
func Scan(dir string) ([]sequence.Record, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read image directory: %v", err)
	}

	var records []sequence.Record
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		dataset, err := dicom.ParseFile(filepath.Join(dir, entry.Name()), nil, dicom.SkipPixelData())
		if err != nil {
			log.Printf("Skipping undecodable file %s: %v", entry.Name(), err)
			continue
		}

		record := sequence.Record{Filename: entry.Name()}
		if n, ok := instanceNumber(&dataset); ok {
			record.InstanceNumber = n
			record.HasInstanceNumber = true
		}
		records = append(records, record)
	}

	return records, nil
}

// ReferenceDimensions returns the Rows and Columns of the image at
// path. The caller uses the first ordered image; all slices of a stack
// are assumed to share these dimensions.
func ReferenceDimensions(path string) (rows, cols int, err error) {
	dataset, err := dicom.ParseFile(path, nil, dicom.SkipPixelData())
	if err != nil {
		return 0, 0, fmt.Errorf("failed to parse reference image %s: %v", path, err)
	}

	rows, ok := intTag(&dataset, tag.Rows)
	if !ok {
		return 0, 0, fmt.Errorf("reference image %s has no Rows tag", path)
	}
	cols, ok = intTag(&dataset, tag.Columns)
	if !ok {
		return 0, 0, fmt.Errorf("reference image %s has no Columns tag", path)
	}
	return rows, cols, nil
}

// instanceNumber extracts the (0020,0013) InstanceNumber ordering key.
// The tag's IS value arrives as a decimal string; a missing tag or an
// unparseable value reads as "key absent" so the sorter can fall back.
func instanceNumber(dataset *dicom.Dataset) (int, bool) {
	element, err := dataset.FindElementByTag(tag.InstanceNumber)
	if err != nil {
		return 0, false
	}
	return intFromValue(element.Value.GetValue())
}

// intTag reads a single-valued integer element such as Rows or Columns
func intTag(dataset *dicom.Dataset, t tag.Tag) (int, bool) {
	element, err := dataset.FindElementByTag(t)
	if err != nil {
		return 0, false
	}
	return intFromValue(element.Value.GetValue())
}

// intFromValue converts a decoded DICOM element value to an int,
// accepting both integer and integer-string representations
func intFromValue(value interface{}) (int, bool) {
	switch v := value.(type) {
	case []int:
		if len(v) > 0 {
			return v[0], true
		}
	case []string:
		if len(v) > 0 {
			n, err := strconv.Atoi(strings.TrimSpace(v[0]))
			if err == nil {
				return n, true
			}
		}
	}
	return 0, false
}
