package adapthttp

import (
	"net/http"

	"healthvault/internal/domain"
)

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := userFrom(r)

	switch r.Method {
	case http.MethodGet:
		profile, err := s.profiles.Get(ctx, userID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"profile": profile})

	case http.MethodPost, http.MethodPut:
		var body domain.Profile
		if err := parseJSON(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		profile, err := s.profiles.Update(ctx, userID, body)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		s.metrics.MutationsTotal.WithLabelValues("profile", "update").Inc()
		writeJSON(w, http.StatusOK, map[string]any{"profile": profile})

	case http.MethodDelete:
		if err := s.profiles.Delete(ctx, userID); err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		s.metrics.MutationsTotal.WithLabelValues("profile", "delete").Inc()
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleNotes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := userFrom(r)

	switch r.Method {
	case http.MethodGet:
		notes, err := s.profiles.Notes(ctx, userID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"notes": notes})

	case http.MethodPost:
		var body struct {
			Notes string `json:"notes"`
		}
		if err := parseJSON(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		notes, err := s.profiles.SetNotes(ctx, userID, body.Notes)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		s.metrics.MutationsTotal.WithLabelValues("notes", "update").Inc()
		writeJSON(w, http.StatusOK, map[string]string{"notes": notes})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
