package adapthttp

import (
	"net/http"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	userID := userFrom(r)

	dash, err := s.dashboard.Build(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	snap := s.syncerFor(userID).Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"dashboard":   dash,
		"refreshedAt": snap.RefreshedAt,
	})
}
