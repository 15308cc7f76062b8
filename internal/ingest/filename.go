package ingest

import (
	"path/filepath"
	"strings"
)

// regionSegment is the zero-based position of the region name among the
// underscore-delimited segments of a source file name.
const regionSegment = 2

// RegionFromFilename extracts the region label from a source file name, e.g.
// "vhi_11_Kyiv_20240501120000.csv" -> "Kyiv". The segment is returned
// verbatim. When the name has fewer than three segments ok is false and the
// label degrades to the base name without its extension.
func RegionFromFilename(name string) (region string, ok bool) {
	base := filepath.Base(name)
	parts := strings.Split(base, "_")
	if len(parts) > regionSegment {
		return parts[regionSegment], true
	}
	return strings.TrimSuffix(base, filepath.Ext(base)), false
}
