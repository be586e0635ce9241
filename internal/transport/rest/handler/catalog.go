// internal/transport/rest/handler/catalog.go
package handler

import (
	"net/http"

	"yojana-engine/internal/catalog"
)

// CatalogHandler exposes operational catalog endpoints.
type CatalogHandler struct {
	ingestor *catalog.Ingestor
}

func NewCatalogHandler(ingestor *catalog.Ingestor) *CatalogHandler {
	return &CatalogHandler{ingestor: ingestor}
}

// Refresh handles POST /internal/catalog/refresh: forces a re-ingestion and
// atomic snapshot swap. In-flight requests keep the old snapshot.
func (h *CatalogHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	snap, err := h.ingestor.Refresh(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"catalogVersion": snap.Version,
		"schemes":        snap.Len(),
	})
}
