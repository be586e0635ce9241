// internal/engine/engine_test.go
package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yojana-engine/internal/catalog"
	"yojana-engine/internal/common/config"
	stderrors "yojana-engine/internal/common/errors"
	"yojana-engine/internal/common/logger"
	"yojana-engine/internal/engine/evaluator"
	"yojana-engine/internal/engine/ranker"
	"yojana-engine/internal/models"
	"yojana-engine/internal/reasoning"
)

// ==========================
// Test Helper Functions
// ==========================

func testEngineConfig() config.EngineConfig {
	return config.EngineConfig{
		BorderlineTolerance: 0.05,
		BorderlinePenalty:   0.15,
		UndeterminedPenalty: 0.25,
		MaxWorkers:          4,
		EvalTimeout:         2000,
		FallbackCount:       3,
	}
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func pensionScheme() *models.Scheme {
	return &models.Scheme{
		ID:       "pension-1",
		Name:     models.LocalizedText{"en": "Old Age Pension"},
		Category: "pension",
		Criteria: models.EligibilityCriteria{MinAge: intPtr(60)},
		Benefit:  models.Benefit{Amount: 24000},
		Documents: []models.Document{
			{ID: "d1", Name: models.LocalizedText{"en": "Identity Proof"}, TypeTag: models.DocTypeNationalID, Mandatory: true},
		},
	}
}

func farmerScheme() *models.Scheme {
	return &models.Scheme{
		ID:       "farmer-1",
		Name:     models.LocalizedText{"en": "Farmer Support"},
		Category: "agriculture",
		Criteria: models.EligibilityCriteria{
			Occupations: []string{"farmer"},
			MaxIncome:   floatPtr(200000),
		},
		Benefit: models.Benefit{Amount: 6000},
		Documents: []models.Document{
			{ID: "d2", Name: models.LocalizedText{"en": "Land Records"}, TypeTag: models.DocTypeLandRecords, Mandatory: true},
		},
	}
}

func narrativeScheme(rule string) *models.Scheme {
	sc := farmerScheme()
	sc.ID = "narrative-1"
	sc.Criteria.NarrativeRules = []string{rule}
	return sc
}

func newTestEngine(t *testing.T, cfg config.EngineConfig, reasoner reasoning.Client, schemes ...*models.Scheme) *Engine {
	log := logger.NewTestLogger(t)

	builder, err := catalog.NewBuilder(log)
	require.NoError(t, err)
	snap, err := builder.Build(schemes)
	require.NoError(t, err)

	store := catalog.NewStore()
	store.Publish(snap)

	ev := evaluator.New(cfg, reasoner, log)
	rk := ranker.New(cfg, log)
	return New(cfg, store, ev, rk, log)
}

type slowReasoner struct {
	delay time.Duration
}

func (s *slowReasoner) EvaluateNarrativeRule(ctx context.Context, profileSummary, ruleText string) (*reasoning.Verdict, error) {
	select {
	case <-time.After(s.delay):
		return &reasoning.Verdict{Outcome: reasoning.OutcomeSupported}, nil
	case <-ctx.Done():
		return nil, stderrors.NewReasoningTimeoutError()
	}
}

type failingReasoner struct{}

func (f *failingReasoner) EvaluateNarrativeRule(ctx context.Context, profileSummary, ruleText string) (*reasoning.Verdict, error) {
	return nil, stderrors.NewReasoningUnavailableError(context.Canceled)
}

func elderlyFarmer() *models.UserProfile {
	return &models.UserProfile{
		Age:        65,
		Occupation: "farmer",
		Income:     50000,
		State:      "Karnataka",
	}
}

// ==========================
// Match Tests
// ==========================

func TestMatch_ReturnsEligibleSchemesOnly(t *testing.T) {
	eng := newTestEngine(t, testEngineConfig(), nil, pensionScheme(), farmerScheme())

	profile := elderlyFarmer()
	profile.Age = 30 // too young for the pension

	resp, err := eng.Match(context.Background(), profile)
	require.NoError(t, err)

	assert.False(t, resp.Fallback)
	require.Len(t, resp.Matches, 1)
	assert.Equal(t, "farmer-1", resp.Matches[0].Scheme.ID)
	assert.True(t, resp.Matches[0].Result.IsEligible)
	assert.NotEmpty(t, resp.Matches[0].Explanation)
	assert.NotEmpty(t, resp.CatalogVersion)
}

func TestMatch_NoFalsePositives(t *testing.T) {
	eng := newTestEngine(t, testEngineConfig(), nil, pensionScheme(), farmerScheme())

	resp, err := eng.Match(context.Background(), elderlyFarmer())
	require.NoError(t, err)

	for _, m := range resp.Matches {
		assert.True(t, m.Result.IsEligible)
		assert.Empty(t, m.Result.UnmatchedCriteria)
	}
}

func TestMatch_Idempotent(t *testing.T) {
	eng := newTestEngine(t, testEngineConfig(), nil, pensionScheme(), farmerScheme())

	first, err := eng.Match(context.Background(), elderlyFarmer())
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := eng.Match(context.Background(), elderlyFarmer())
		require.NoError(t, err)
		assert.Equal(t, first.Matches, again.Matches)
		assert.Equal(t, first.Fallback, again.Fallback)
	}
}

func TestMatch_ZeroMatchesYieldsFallback(t *testing.T) {
	eng := newTestEngine(t, testEngineConfig(), nil, pensionScheme())

	profile := &models.UserProfile{Age: 30, Income: 50000}

	resp, err := eng.Match(context.Background(), profile)
	require.NoError(t, err)

	assert.True(t, resp.Fallback)
	require.NotEmpty(t, resp.Matches)
	assert.NotEmpty(t, resp.Matches[0].Deficit)
	assert.Contains(t, resp.Matches[0].Explanation, "could become eligible")
}

func TestMatch_SlowEvaluationMarksPartial(t *testing.T) {
	cfg := testEngineConfig()
	cfg.EvalTimeout = 50

	reasoner := &slowReasoner{delay: 500 * time.Millisecond}
	eng := newTestEngine(t, cfg, reasoner,
		pensionScheme(), narrativeScheme("must be landless"))

	resp, err := eng.Match(context.Background(), elderlyFarmer())
	require.NoError(t, err)

	assert.True(t, resp.Partial)
	assert.Equal(t, []string{"narrative-1"}, resp.PartialSchemes)
	for _, m := range resp.Matches {
		assert.NotEqual(t, "narrative-1", m.Scheme.ID)
	}
}

func TestMatch_UndeterminedResultReportedAsPartial(t *testing.T) {
	reasoner := &failingReasoner{}
	eng := newTestEngine(t, testEngineConfig(), reasoner,
		pensionScheme(), narrativeScheme("must be landless"))

	resp, err := eng.Match(context.Background(), elderlyFarmer())
	require.NoError(t, err)

	assert.True(t, resp.Partial)
	assert.Equal(t, []string{"narrative-1"}, resp.PartialSchemes)

	// The scheme stays ranked; its result carries the undetermined flag.
	var found bool
	for _, m := range resp.Matches {
		if m.Scheme.ID == "narrative-1" {
			found = true
			assert.True(t, m.Result.Undetermined)
		}
	}
	assert.True(t, found)
}

func TestMatch_NilProfile(t *testing.T) {
	eng := newTestEngine(t, testEngineConfig(), nil, pensionScheme())

	_, err := eng.Match(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, stderrors.IsCode(err, stderrors.ErrCodeValidation))
}

func TestMatch_ProfileMissingRequiredField(t *testing.T) {
	eng := newTestEngine(t, testEngineConfig(), nil, farmerScheme())

	// farmer-1 requires an occupation on the profile.
	profile := &models.UserProfile{Age: 40, Income: 50000}

	_, err := eng.Match(context.Background(), profile)
	require.Error(t, err)
	assert.True(t, stderrors.IsCode(err, stderrors.ErrCodeValidation))
}

func TestMatch_NoCatalogPublished(t *testing.T) {
	log := logger.NewTestLogger(t)
	cfg := testEngineConfig()
	eng := New(cfg, catalog.NewStore(), evaluator.New(cfg, nil, log), ranker.New(cfg, log), log)

	_, err := eng.Match(context.Background(), elderlyFarmer())
	require.Error(t, err)
	assert.True(t, stderrors.IsCode(err, stderrors.ErrCodeCatalogUnavailable))
}

// ==========================
// Checklist Tests
// ==========================

func TestChecklist_KnownScheme(t *testing.T) {
	eng := newTestEngine(t, testEngineConfig(), nil, pensionScheme())

	profile := elderlyFarmer()
	cl, err := eng.Checklist(context.Background(), "pension-1", profile)
	require.NoError(t, err)

	assert.Equal(t, "pension-1", cl.SchemeID)
	require.Len(t, cl.Mandatory, 1)
	assert.True(t, cl.Mandatory[0].LikelyMissing)
}

func TestChecklist_UnknownScheme(t *testing.T) {
	eng := newTestEngine(t, testEngineConfig(), nil, pensionScheme())

	_, err := eng.Checklist(context.Background(), "nope", nil)
	require.Error(t, err)
	assert.True(t, stderrors.IsCode(err, stderrors.ErrCodeSchemeNotFound))
}

// ==========================
// Schemes Listing Tests
// ==========================

func TestSchemes_ListsCatalog(t *testing.T) {
	eng := newTestEngine(t, testEngineConfig(), nil, pensionScheme(), farmerScheme())

	schemes, version, err := eng.Schemes()
	require.NoError(t, err)
	assert.Len(t, schemes, 2)
	assert.NotEmpty(t, version)
}
