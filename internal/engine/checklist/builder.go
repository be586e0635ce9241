// internal/engine/checklist/builder.go
package checklist

import (
	"sort"

	"yojana-engine/internal/catalog"
	stderrors "yojana-engine/internal/common/errors"
	"yojana-engine/internal/common/logger"
	"yojana-engine/internal/common/metrics"
	"yojana-engine/internal/models"
)

// substitutionTable maps a document type the citizen likely lacks to the
// document types commonly accepted in its place. Guidance comes only from
// this table or the scheme's own declared alternatives, never invented.
var substitutionTable = map[string][]string{
	models.DocTypeNationalID:  {models.DocTypeVoterID, models.DocTypeRationCard},
	models.DocTypeIncomeProof: {models.DocTypeRationCard},
	models.DocTypeVoterID:     {models.DocTypeNationalID},
	models.DocTypeRationCard:  {models.DocTypeNationalID},
}

// Builder compiles a scheme's required documents into a prioritized,
// alternative-aware checklist. It only reads the catalog snapshot; safe for
// concurrent use.
type Builder struct {
	store  *catalog.Store
	logger logger.Logger
}

func New(store *catalog.Store, log logger.Logger) *Builder {
	return &Builder{
		store:  store,
		logger: log.WithFields(map[string]interface{}{"component": "checklist-builder"}),
	}
}

// Build returns the checklist for (schemeID, profile). Unknown scheme ids
// propagate as SchemeNotFoundError, never a silently empty checklist.
func (b *Builder) Build(schemeID string, profile *models.UserProfile) (*models.Checklist, error) {
	snap := b.store.Current()
	if snap == nil {
		return nil, stderrors.NewCatalogUnavailableError()
	}

	scheme, ok := snap.Get(schemeID)
	if !ok {
		return nil, stderrors.NewSchemeNotFoundError(schemeID)
	}

	return b.BuildForScheme(scheme, profile), nil
}

// BuildForScheme partitions the scheme's documents, emits alternative
// groups, sorts by priority and flags documents the profile likely lacks.
func (b *Builder) BuildForScheme(scheme *models.Scheme, profile *models.UserProfile) *models.Checklist {
	cl := &models.Checklist{SchemeID: scheme.ID}

	// Documents carrying alternatives leave the flat partitions and are
	// emitted once as a group; each document appears in exactly one place.
	var mandatory, optional []models.Document
	for _, doc := range scheme.Documents {
		if len(doc.Alternatives) > 0 {
			cl.Alternative = append(cl.Alternative, b.buildGroup(doc, profile))
			continue
		}
		if doc.Mandatory {
			mandatory = append(mandatory, doc)
		} else {
			optional = append(optional, doc)
		}
	}

	// Ascending by priority; declaration order breaks ties (stable).
	sort.SliceStable(mandatory, func(i, j int) bool { return mandatory[i].Priority < mandatory[j].Priority })
	sort.SliceStable(optional, func(i, j int) bool { return optional[i].Priority < optional[j].Priority })

	for _, doc := range mandatory {
		cl.Mandatory = append(cl.Mandatory, b.buildEntry(doc, profile, true))
	}
	for _, doc := range optional {
		cl.Optional = append(cl.Optional, b.buildEntry(doc, profile, false))
	}

	metrics.ChecklistsBuilt.Inc()
	return cl
}

// buildEntry flags a standalone document as likely missing when the
// profile's credential flags say so. Substitute guidance applies only to
// mandatory documents with no declared alternative, and only from the
// static table.
func (b *Builder) buildEntry(doc models.Document, profile *models.UserProfile, mandatory bool) models.ChecklistEntry {
	entry := models.ChecklistEntry{Document: doc}
	if profile == nil {
		return entry
	}

	held, known := profile.HasCredential(doc.TypeTag)
	if !known || held {
		return entry
	}

	entry.LikelyMissing = true
	if mandatory {
		// Every table entry is listed, marked with whether the citizen
		// already holds it, so guidance survives an empty wallet.
		for _, sub := range substitutionTable[doc.TypeTag] {
			subHeld, subKnown := profile.HasCredential(sub)
			entry.Substitutes = append(entry.Substitutes, models.Substitute{
				TypeTag: sub,
				Held:    subKnown && subHeld,
			})
		}
	}
	return entry
}

// buildGroup emits one alternative group: the root document plus its
// declared alternatives, any one of which satisfies the requirement.
func (b *Builder) buildGroup(doc models.Document, profile *models.UserProfile) models.AlternativeGroup {
	members := make([]models.Document, 0, 1+len(doc.Alternatives))
	root := doc
	root.Alternatives = nil
	members = append(members, root)
	members = append(members, flatten(doc.Alternatives)...)

	group := models.AlternativeGroup{LikelyMissing: profile != nil}
	for _, m := range members {
		entry := models.ChecklistEntry{Document: m}
		if profile == nil {
			group.Members = append(group.Members, entry)
			continue
		}
		held, known := profile.HasCredential(m.TypeTag)
		if !known {
			// Unknown credential types cannot be flagged either way.
			group.LikelyMissing = false
		} else if held {
			group.LikelyMissing = false
		} else {
			entry.LikelyMissing = true
		}
		group.Members = append(group.Members, entry)
	}
	return group
}

// flatten expands nested alternatives depth-first. Cycles were rejected at
// catalog build time, so termination is guaranteed.
func flatten(docs []models.Document) []models.Document {
	var out []models.Document
	for _, d := range docs {
		nested := d.Alternatives
		d.Alternatives = nil
		out = append(out, d)
		out = append(out, flatten(nested)...)
	}
	return out
}
