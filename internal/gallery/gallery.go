package gallery

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"

	"faceattend/internal/facedesc"
)

// Row is a persisted (name, raw descriptor) pair as the store returns it,
// before any decoding.
type Row struct {
	Name       string
	Descriptor []byte
}

// Source lists descriptor rows for all enrolled staff, in enrollment order.
type Source interface {
	ListDescriptorRows(ctx context.Context) ([]Row, error)
}

// Entry is one enrolled identity available for matching.
type Entry struct {
	Name       string
	Descriptor facedesc.Descriptor
}

// Gallery is the in-memory projection of all enrolled descriptors. It is a
// rebuildable cache, never a source of truth: Load reconstructs it entirely
// from the store. The snapshot is replaced with a single atomic pointer swap,
// so concurrent matchers never observe a half-populated gallery.
type Gallery struct {
	source  Source
	entries atomic.Pointer[[]Entry]
}

// New returns an empty gallery backed by the given source. Call Load before
// matching; an unloaded gallery only ever answers unknown.
func New(source Source) *Gallery {
	g := &Gallery{source: source}
	empty := make([]Entry, 0)
	g.entries.Store(&empty)
	return g
}

// Load rebuilds the gallery from the store. Rows whose descriptor is absent
// or undecodable are skipped with a warning so one bad row cannot block the
// whole gallery. On a source error the previous snapshot stays in place.
func (g *Gallery) Load(ctx context.Context) error {
	rows, err := g.source.ListDescriptorRows(ctx)
	if err != nil {
		return fmt.Errorf("load gallery: %w", err)
	}

	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		if len(row.Descriptor) == 0 {
			log.Printf("WARNING: no face descriptor stored for %q, skipping", row.Name)
			continue
		}
		d, err := facedesc.Decode(row.Descriptor)
		if err != nil {
			log.Printf("WARNING: unreadable face descriptor for %q, skipping: %v", row.Name, err)
			continue
		}
		entries = append(entries, Entry{Name: row.Name, Descriptor: d})
	}

	g.entries.Store(&entries)
	return nil
}

// Snapshot returns the current cached entries in store order. The returned
// slice is shared and must not be mutated.
func (g *Gallery) Snapshot() []Entry {
	return *g.entries.Load()
}

// Size reports how many identities are currently matchable.
func (g *Gallery) Size() int {
	return len(g.Snapshot())
}
