package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"faceattend/internal/facedesc"
	"faceattend/internal/gallery"
)

// at returns a descriptor at the given euclidean distance from the zero
// vector, using a single component.
func at(dist float64) facedesc.Descriptor {
	d := make(facedesc.Descriptor, facedesc.Dim)
	d[0] = dist
	return d
}

func entry(name string, dist float64) gallery.Entry {
	return gallery.Entry{Name: name, Descriptor: at(dist)}
}

func TestIdentifyEmptyGallery(t *testing.T) {
	assert.Equal(t, Unknown, Identify(nil, at(0), 0.6))
	assert.Equal(t, Unknown, Identify([]gallery.Entry{}, at(0), 0.6))
}

func TestIdentifyExactMatch(t *testing.T) {
	entries := []gallery.Entry{entry("alice", 1.0), entry("bob", 2.0)}
	// Query equal to bob's descriptor: distance 0 is always under tolerance.
	assert.Equal(t, "bob", Identify(entries, at(2.0), 0.6))
}

func TestIdentifyAllOverTolerance(t *testing.T) {
	entries := []gallery.Entry{entry("alice", 0.9), entry("bob", 1.4)}
	assert.Equal(t, Unknown, Identify(entries, at(0), 0.6))
}

func TestClosestUnderToleranceWins(t *testing.T) {
	// "far" sits earlier in gallery order at distance 0.5 from the query;
	// "near" is at 0.3. Both are under 0.6 — the closest wins, not the
	// first one under tolerance.
	entries := []gallery.Entry{entry("far", 0.5), entry("near", 0.3)}
	assert.Equal(t, "near", Identify(entries, at(0), 0.6))
}

func TestTieBreaksOnGalleryOrder(t *testing.T) {
	entries := []gallery.Entry{entry("first", 0.2), entry("second", 0.2)}
	assert.Equal(t, "first", Identify(entries, at(0), 0.6))
}

func TestSingleEntryGallery(t *testing.T) {
	entries := []gallery.Entry{entry("alice", 0.3)}
	assert.Equal(t, "alice", Identify(entries, at(0), 0.6))
	assert.Equal(t, Unknown, Identify(entries, at(1.5), 0.6))
}

func TestIdentifyIsPure(t *testing.T) {
	entries := []gallery.Entry{entry("alice", 0.1), entry("bob", 0.4)}
	query := at(0)

	wantQuery := make(facedesc.Descriptor, len(query))
	copy(wantQuery, query)
	wantFirst := make(facedesc.Descriptor, facedesc.Dim)
	copy(wantFirst, entries[0].Descriptor)

	first := Identify(entries, query, 0.6)
	second := Identify(entries, query, 0.6)

	require.Equal(t, first, second)
	assert.Equal(t, wantQuery, query)
	assert.Equal(t, wantFirst, entries[0].Descriptor)
}

func TestZeroToleranceFallsBackToDefault(t *testing.T) {
	entries := []gallery.Entry{entry("alice", 0.5)}
	assert.Equal(t, "alice", Identify(entries, at(0), 0))
}
