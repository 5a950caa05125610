// Package match decides which enrolled identity, if any, a query face
// descriptor belongs to.
package match

import (
	"faceattend/internal/facedesc"
	"faceattend/internal/gallery"
)

// Unknown is returned when no gallery entry is close enough to the query.
const Unknown = "Unknown"

// Identify returns the name of the gallery entry closest to the query,
// provided that entry's distance is under tolerance; otherwise Unknown.
//
// Every entry is first flagged as a candidate (distance < tolerance), then
// the global minimum distance is taken. A query can be under tolerance for
// several identities; the closest one wins, not the first one under
// tolerance. Ties on the minimum break toward the earliest entry in gallery
// order, which is deterministic because the gallery preserves store order.
//
// Identify is pure: it performs no I/O and never mutates the gallery. A
// tolerance <= 0 falls back to facedesc.DefaultTolerance.
func Identify(entries []gallery.Entry, query facedesc.Descriptor, tolerance float64) string {
	if len(entries) == 0 {
		return Unknown
	}
	if tolerance <= 0 {
		tolerance = facedesc.DefaultTolerance
	}

	distances := make([]float64, len(entries))
	matches := make([]bool, len(entries))
	for i, e := range entries {
		distances[i] = facedesc.Distance(e.Descriptor, query)
		matches[i] = distances[i] < tolerance
	}

	best := 0
	for i := 1; i < len(distances); i++ {
		// Strict < keeps the first occurrence on equal distances.
		if distances[i] < distances[best] {
			best = i
		}
	}

	if matches[best] {
		return entries[best].Name
	}
	return Unknown
}
