// internal/transport/rest/router.go
package rest

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"yojana-engine/internal/catalog"
	"yojana-engine/internal/common/logger"
	"yojana-engine/internal/common/observability"
	"yojana-engine/internal/engine"
	"yojana-engine/internal/transport/rest/handler"
	"yojana-engine/internal/transport/rest/middleware"
)

// Container holds the router's dependencies. Obs may be nil.
type Container struct {
	Engine   *engine.Engine
	Ingestor *catalog.Ingestor
	Logger   logger.Logger
	Obs      *observability.Observability
}

// NewRouter wires all endpoints.
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	matchHandler := handler.NewMatchHandler(c.Engine)
	catalogHandler := handler.NewCatalogHandler(c.Ingestor)

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(c.Logger))
	if c.Obs != nil {
		r.Use(middleware.Observe(c.Obs))
	}

	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/match", matchHandler.Match).Methods("POST")
	v1.HandleFunc("/schemes", matchHandler.Schemes).Methods("GET")
	v1.HandleFunc("/schemes/{schemeId}/checklist", matchHandler.Checklist).Methods("GET")

	r.HandleFunc("/internal/catalog/refresh", catalogHandler.Refresh).Methods("POST")

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	return r
}
