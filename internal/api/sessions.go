package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MikeSquared-Agency/loom/internal/history"
)

// ReconcileRequest is the payload for POST /api/v1/sessions/{id}/reconcile.
// An empty step list means "pull the batch from the history store".
type ReconcileRequest struct {
	Steps []history.HistoryStep `json:"steps,omitempty"`
}

func (s *Server) reconcileSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req ReconcileRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, fmt.Sprintf(`{"error":"invalid JSON: %v"}`, err), http.StatusBadRequest)
			return
		}
	}

	steps := req.Steps
	if len(steps) == 0 {
		if s.source == nil {
			http.Error(w, `{"error":"no inline steps and no history store configured"}`, http.StatusUnprocessableEntity)
			return
		}
		var err error
		steps, err = s.source.SessionHistory(r.Context(), sessionID)
		if err != nil {
			http.Error(w, fmt.Sprintf(`{"error":"load history: %v"}`, err), http.StatusBadGateway)
			return
		}
	}

	result, err := s.manager.Reconcile(r.Context(), sessionID, steps)
	if err != nil {
		http.Error(w, fmt.Sprintf(`{"error":"reconcile: %v"}`, err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(result)
}

func (s *Server) sessionTimeline(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	snapshot, ok := s.manager.Timeline(sessionID)
	if !ok {
		http.Error(w, `{"error":"no timeline for session"}`, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]any{
		"session_id": sessionID,
		"length":     len(snapshot),
		"messages":   snapshot,
	})
}

func (s *Server) sessionCitation(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	citation, ok := s.manager.Citation(sessionID)
	if !ok {
		http.Error(w, `{"error":"no citation for session"}`, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(citation)
}
