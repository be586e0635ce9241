// internal/catalog/ingestor.go
package catalog

import (
	"context"

	"yojana-engine/internal/common/logger"
)

// Ingestor pulls scheme definitions from a source, builds a snapshot off to
// the side and publishes it atomically. Readers keep the old snapshot until
// the publish completes.
type Ingestor struct {
	source  Source
	builder *Builder
	store   *Store
	logger  logger.Logger
}

func NewIngestor(source Source, builder *Builder, store *Store, log logger.Logger) *Ingestor {
	return &Ingestor{
		source:  source,
		builder: builder,
		store:   store,
		logger:  log.WithFields(map[string]interface{}{"component": "catalog-ingestor"}),
	}
}

// Refresh fetches, validates, builds and publishes a new snapshot. On any
// failure the previously published snapshot stays in place.
func (i *Ingestor) Refresh(ctx context.Context) (*Snapshot, error) {
	schemes, err := i.source.FetchSchemes(ctx)
	if err != nil {
		i.logger.Error("catalog fetch failed", map[string]interface{}{
			"source": i.source.Name(),
			"error":  err,
		})
		return nil, err
	}

	snap, err := i.builder.Build(schemes)
	if err != nil {
		i.logger.Error("catalog build failed", map[string]interface{}{
			"source": i.source.Name(),
			"error":  err,
		})
		return nil, err
	}

	i.store.Publish(snap)
	i.logger.Info("catalog snapshot published", map[string]interface{}{
		"source":  i.source.Name(),
		"version": snap.Version,
		"schemes": snap.Len(),
	})

	return snap, nil
}
