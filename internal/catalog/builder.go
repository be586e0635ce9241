// internal/catalog/builder.go
package catalog

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"yojana-engine/internal/common/errors"
	"yojana-engine/internal/common/logger"
	"yojana-engine/internal/models"
)

// Builder validates raw scheme definitions and assembles immutable
// snapshots. Cycle checks on document alternatives happen here so the
// checklist builder can assume a DAG.
type Builder struct {
	schema *gojsonschema.Schema
	logger logger.Logger
}

func NewBuilder(log logger.Logger) (*Builder, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemeSchema))
	if err != nil {
		return nil, fmt.Errorf("compile scheme schema: %w", err)
	}
	return &Builder{
		schema: schema,
		logger: log.WithFields(map[string]interface{}{"component": "catalog-builder"}),
	}, nil
}

// Build validates every scheme and returns a published-ready snapshot.
// A scheme that fails validation rejects the whole batch: ingestion is
// all-or-nothing so readers never see a partially valid catalog.
func (b *Builder) Build(schemes []*models.Scheme) (*Snapshot, error) {
	idx := make(map[string]*models.Scheme, len(schemes))
	for _, sc := range schemes {
		if err := b.validateScheme(sc); err != nil {
			return nil, err
		}
		if _, dup := idx[sc.ID]; dup {
			return nil, errors.NewCatalogValidationFailedError(sc.ID, "duplicate scheme id")
		}
		idx[sc.ID] = sc
	}

	// Stable catalog order regardless of source iteration order.
	ordered := make([]*models.Scheme, len(schemes))
	copy(ordered, schemes)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	snap := &Snapshot{
		Version:   fmt.Sprintf("%d-%d", time.Now().UTC().Unix(), len(ordered)),
		BuiltAt:   time.Now().UTC(),
		schemes:   ordered,
		schemeIdx: idx,
	}

	b.logger.Info("catalog snapshot built", map[string]interface{}{
		"version": snap.Version,
		"schemes": snap.Len(),
	})

	return snap, nil
}

func (b *Builder) validateScheme(sc *models.Scheme) error {
	raw, err := json.Marshal(sc)
	if err != nil {
		return errors.NewCatalogValidationFailedError(sc.ID, err.Error())
	}

	result, err := b.schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return errors.NewCatalogValidationFailedError(sc.ID, err.Error())
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return errors.NewCatalogValidationFailedError(sc.ID, strings.Join(msgs, "; "))
	}

	if err := sc.Criteria.Validate(); err != nil {
		return errors.NewCatalogValidationFailedError(sc.ID, err.Error())
	}

	return b.checkDocumentCycles(sc)
}

// checkDocumentCycles rejects alternative chains that reference a document
// already on the path from the root requirement.
func (b *Builder) checkDocumentCycles(sc *models.Scheme) error {
	var walk func(doc *models.Document, path map[string]bool) error
	walk = func(doc *models.Document, path map[string]bool) error {
		if path[doc.ID] {
			return errors.NewDocumentCycleError(sc.ID, doc.ID)
		}
		path[doc.ID] = true
		defer delete(path, doc.ID)
		for i := range doc.Alternatives {
			if err := walk(&doc.Alternatives[i], path); err != nil {
				return err
			}
		}
		return nil
	}

	for i := range sc.Documents {
		if err := walk(&sc.Documents[i], map[string]bool{}); err != nil {
			return err
		}
	}
	return nil
}
