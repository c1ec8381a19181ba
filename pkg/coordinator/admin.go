package coordinator

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// AdminRouter builds the coordinator's admin-only HTTP surface: health,
// Prometheus metrics, and a read-only catalog/registry/lock-table debug
// dump. Grounded on the teacher's internal HTTP admin surface pattern
// (go-chi router, middleware.Logger/Recoverer, one handler per route).
func (s *Server) AdminRouter(registry http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Get("/healthz", s.handleHealthz)
	r.Handle("/metricz", registry)
	r.Get("/debug/catalog", s.handleDebugCatalog)

	return r
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":      "ok",
		"nodes_alive": s.registry.AliveCount(),
		"locks_held":  s.locks.Count(),
	})
}

// handleDebugCatalog dumps a JSON snapshot of the storage-node registry
// for operators — it deliberately does not dump catalog file contents
// (those may be large and are already in the relational store an
// operator can query directly), only the in-memory state unique to this
// process.
func (s *Server) handleDebugCatalog(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"nodes":      s.registry.List(),
		"locks_held": s.locks.Count(),
	})
}
