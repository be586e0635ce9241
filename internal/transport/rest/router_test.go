// internal/transport/rest/router_test.go
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yojana-engine/internal/catalog"
	"yojana-engine/internal/common/config"
	"yojana-engine/internal/common/logger"
	"yojana-engine/internal/engine"
	"yojana-engine/internal/engine/evaluator"
	"yojana-engine/internal/engine/ranker"
	"yojana-engine/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

type stubSource struct {
	schemes []*models.Scheme
	err     error
}

func (s *stubSource) Name() string { return "stub" }

func (s *stubSource) FetchSchemes(ctx context.Context) ([]*models.Scheme, error) {
	return s.schemes, s.err
}

func intPtr(v int) *int { return &v }

func testSchemes() []*models.Scheme {
	return []*models.Scheme{
		{
			ID:       "pension-1",
			Name:     models.LocalizedText{"en": "Old Age Pension"},
			Category: "pension",
			Criteria: models.EligibilityCriteria{MinAge: intPtr(60)},
			Documents: []models.Document{
				{ID: "d1", Name: models.LocalizedText{"en": "Identity Proof"}, TypeTag: models.DocTypeNationalID, Mandatory: true},
			},
		},
	}
}

func testServer(t *testing.T) *httptest.Server {
	log := logger.NewTestLogger(t)
	cfg := config.EngineConfig{
		BorderlineTolerance: 0.05,
		BorderlinePenalty:   0.15,
		UndeterminedPenalty: 0.25,
		EvalTimeout:         2000,
		FallbackCount:       3,
	}

	builder, err := catalog.NewBuilder(log)
	require.NoError(t, err)

	store := catalog.NewStore()
	ingestor := catalog.NewIngestor(&stubSource{schemes: testSchemes()}, builder, store, log)
	_, err = ingestor.Refresh(context.Background())
	require.NoError(t, err)

	eng := engine.New(cfg, store,
		evaluator.New(cfg, nil, log),
		ranker.New(cfg, log),
		log)

	srv := httptest.NewServer(NewRouter(&Container{
		Engine:   eng,
		Ingestor: ingestor,
		Logger:   log,
	}))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	return resp
}

// ==========================
// Endpoint Tests
// ==========================

func TestMatchEndpoint(t *testing.T) {
	srv := testServer(t)

	resp := postJSON(t, srv.URL+"/api/v1/match", models.UserProfile{Age: 70, Income: 30000})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out models.MatchResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out.Matches, 1)
	assert.Equal(t, "pension-1", out.Matches[0].Scheme.ID)
	assert.False(t, out.Fallback)
	assert.NotEmpty(t, out.CatalogVersion)
}

func TestMatchEndpoint_InvalidBody(t *testing.T) {
	srv := testServer(t)

	resp, err := http.Post(srv.URL+"/api/v1/match", "application/json", bytes.NewReader([]byte("{not json")))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "VALIDATION_ERROR", body["code"])
	assert.Equal(t, false, body["retryable"])
}

func TestMatchEndpoint_NegativeAge(t *testing.T) {
	srv := testServer(t)

	resp := postJSON(t, srv.URL+"/api/v1/match", models.UserProfile{Age: -5})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestChecklistEndpoint(t *testing.T) {
	srv := testServer(t)

	profile, _ := json.Marshal(models.UserProfile{Age: 70, HasNationalID: true})
	u := srv.URL + "/api/v1/schemes/pension-1/checklist?profile=" + url.QueryEscape(string(profile))

	resp, err := http.Get(u)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var cl models.Checklist
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&cl))
	assert.Equal(t, "pension-1", cl.SchemeID)
	require.Len(t, cl.Mandatory, 1)
	assert.False(t, cl.Mandatory[0].LikelyMissing)
}

func TestChecklistEndpoint_UnknownScheme(t *testing.T) {
	srv := testServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/schemes/no-such/checklist")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "SCHEME_NOT_FOUND", body["code"])
}

func TestSchemesEndpoint(t *testing.T) {
	srv := testServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/schemes")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Schemes        []models.Scheme `json:"schemes"`
		CatalogVersion string          `json:"catalogVersion"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body.Schemes, 1)
	assert.NotEmpty(t, body.CatalogVersion)
}

func TestCatalogRefreshEndpoint(t *testing.T) {
	srv := testServer(t)

	resp, err := http.Post(srv.URL+"/internal/catalog/refresh", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotEmpty(t, body["catalogVersion"])
}

func TestHealthEndpoint(t *testing.T) {
	srv := testServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequestIDEchoed(t *testing.T) {
	srv := testServer(t)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/healthz", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "req-123")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "req-123", resp.Header.Get("X-Request-ID"))
}

func TestRequestIDAssignedWhenAbsent(t *testing.T) {
	srv := testServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}
