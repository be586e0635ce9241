// internal/transport/rest/handler/match.go
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	stderrors "yojana-engine/internal/common/errors"
	"yojana-engine/internal/engine"
	"yojana-engine/internal/models"
)

// MatchHandler exposes the matching engine over REST.
type MatchHandler struct {
	engine *engine.Engine
}

func NewMatchHandler(eng *engine.Engine) *MatchHandler {
	return &MatchHandler{engine: eng}
}

// Match handles POST /api/v1/match.
func (h *MatchHandler) Match(w http.ResponseWriter, r *http.Request) {
	var profile models.UserProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		writeError(w, stderrors.NewValidationError("invalid request body: "+err.Error()))
		return
	}

	resp, err := h.engine.Match(r.Context(), &profile)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Checklist handles GET /api/v1/schemes/{schemeId}/checklist. The optional
// profile query parameter carries a url-encoded profile JSON document; when
// absent the checklist is returned without likely-missing flags.
func (h *MatchHandler) Checklist(w http.ResponseWriter, r *http.Request) {
	schemeID := mux.Vars(r)["schemeId"]

	var profile *models.UserProfile
	if raw := r.URL.Query().Get("profile"); raw != "" {
		profile = &models.UserProfile{}
		if err := json.Unmarshal([]byte(raw), profile); err != nil {
			writeError(w, stderrors.NewValidationError("invalid profile parameter: "+err.Error()))
			return
		}
	}

	cl, err := h.engine.Checklist(r.Context(), schemeID, profile)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cl)
}

// Schemes handles GET /api/v1/schemes.
func (h *MatchHandler) Schemes(w http.ResponseWriter, r *http.Request) {
	schemes, version, err := h.engine.Schemes()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"schemes":        schemes,
		"catalogVersion": version,
	})
}
