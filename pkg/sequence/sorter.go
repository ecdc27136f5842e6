// Package sequence determines the slice order of a 2D image stack.
// Acquisition metadata is authoritative when it is well-formed; when it
// is missing or ambiguous the sorter falls back to a hierarchical
// numeric filename sort, the same ordering ImageJ's "sort names
// numerically" import option produces.
package sequence

import (
	"sort"
	"strconv"
	"strings"
)

// Record is one image file as seen by the sorter: its identity plus the
// optional ordering key extracted from its metadata.
type Record struct {
	// Filename is the image's identity within its directory
	Filename string

	// InstanceNumber is the per-image ordering key from the image
	// metadata; only meaningful when HasInstanceNumber is true
	InstanceNumber int

	// HasInstanceNumber reports whether the ordering key was present
	// and readable
	HasInstanceNumber bool
}

// Sorter orders image records into their slice sequence.
type Sorter struct {
	// delimiter splits filenames into segments for the fallback sort
	delimiter string
}

// NewSorter creates a sorter using the given filename segment delimiter
// (ImageJ-style stacks are dot-delimited).
func NewSorter(delimiter string) *Sorter {
	if delimiter == "" {
		delimiter = "."
	}
	return &Sorter{delimiter: delimiter}
}

// Order returns the filenames of the given records in slice order.
// If every record carries a distinct instance number the records are
// sorted ascending by it; otherwise the filename fallback is used.
// The strategy is chosen once for the whole set, never per file.
func (s *Sorter) Order(records []Record) []string {
	if allKeysUsable(records) {
		sorted := make([]Record, len(records))
		copy(sorted, records)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].InstanceNumber < sorted[j].InstanceNumber
		})
		names := make([]string, len(sorted))
		for i, r := range sorted {
			names[i] = r.Filename
		}
		return names
	}

	names := make([]string, len(records))
	for i, r := range records {
		names[i] = r.Filename
	}
	s.SortNamesNumerically(names)
	return names
}

// allKeysUsable reports whether every record has an instance number and
// no two records share one.
func allKeysUsable(records []Record) bool {
	if len(records) == 0 {
		return false
	}
	seen := make(map[int]bool, len(records))
	for _, r := range records {
		if !r.HasInstanceNumber || seen[r.InstanceNumber] {
			return false
		}
		seen[r.InstanceNumber] = true
	}
	return true
}

// SortNamesNumerically sorts filenames in place by their delimited
// segments, dropping the final segment (the extension) and comparing
// segment sequences left to right: two integer segments compare
// numerically, anything else compares as plain strings. A 3-segment
// key like 7.55.8 therefore sorts before 7.123.2.
func (s *Sorter) SortNamesNumerically(names []string) {
	keys := make(map[string][]segment, len(names))
	for _, name := range names {
		keys[name] = s.segmentKey(name)
	}
	sort.SliceStable(names, func(i, j int) bool {
		return lessSegments(keys[names[i]], keys[names[j]])
	})
}

// segment is one delimited filename component, numeric when it parses
// as an integer.
type segment struct {
	isInt bool
	num   int
	str   string
}

// segmentKey splits a filename into comparable segments, dropping the
// final one.
func (s *Sorter) segmentKey(name string) []segment {
	parts := strings.Split(name, s.delimiter)
	if len(parts) > 1 {
		parts = parts[:len(parts)-1]
	}
	key := make([]segment, len(parts))
	for i, p := range parts {
		if n, err := strconv.Atoi(p); err == nil {
			key[i] = segment{isInt: true, num: n, str: p}
		} else {
			key[i] = segment{str: p}
		}
	}
	return key
}

// lessSegments compares two segment sequences lexicographically.
// Mixed int/string pairs compare as opaque strings so the ordering is
// total and deterministic; a shorter sequence that is a prefix of a
// longer one sorts first.
func lessSegments(a, b []segment) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i].isInt && b[i].isInt {
			if a[i].num != b[i].num {
				return a[i].num < b[i].num
			}
			continue
		}
		if a[i].str != b[i].str {
			return a[i].str < b[i].str
		}
	}
	return len(a) < len(b)
}
