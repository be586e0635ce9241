// internal/catalog/catalog.go
package catalog

import (
	"sync/atomic"
	"time"

	"yojana-engine/internal/common/metrics"
	"yojana-engine/internal/models"
)

// Snapshot is an immutable, versioned view of all known scheme definitions.
// It is never mutated after Build returns it; readers share it freely.
type Snapshot struct {
	Version   string
	BuiltAt   time.Time
	schemes   []*models.Scheme
	schemeIdx map[string]*models.Scheme
}

// Schemes returns the snapshot's schemes in their stable catalog order.
// Callers must not mutate the returned schemes.
func (s *Snapshot) Schemes() []*models.Scheme {
	return s.schemes
}

// Get looks up a scheme by identifier.
func (s *Snapshot) Get(id string) (*models.Scheme, bool) {
	sc, ok := s.schemeIdx[id]
	return sc, ok
}

// Len returns the number of schemes in the snapshot.
func (s *Snapshot) Len() int {
	return len(s.schemes)
}

// Store holds the current snapshot behind an atomically swapped pointer.
// Writers build a new snapshot off to the side and publish it in one step;
// readers always observe a complete, consistent snapshot.
type Store struct {
	current atomic.Pointer[Snapshot]
}

func NewStore() *Store {
	return &Store{}
}

// Current returns the published snapshot, or nil when ingestion has not
// published one yet.
func (s *Store) Current() *Snapshot {
	return s.current.Load()
}

// Publish atomically swaps in the new snapshot.
func (s *Store) Publish(snap *Snapshot) {
	s.current.Store(snap)
	metrics.CatalogSchemes.Set(float64(snap.Len()))
}
