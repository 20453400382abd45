package adapthttp

import (
	"net/http"

	"healthvault/internal/app"
)

func (s *Server) handleVaccines(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	records, err := s.vaccines.List(r.Context(), userFrom(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"vaccines": records})
}

func (s *Server) handleVaccinesEligible(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	eligibility, err := s.vaccines.Eligible(r.Context(), userFrom(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, eligibility)
}

func (s *Server) handleVaccineCustom(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	userID := userFrom(r)

	var body struct {
		Name         string `json:"name"`
		Company      string `json:"company"`
		OffsetMonths int    `json:"offsetMonths"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	records, err := s.vaccines.AddCustom(r.Context(), userID, body.Name, body.Company, body.OffsetMonths)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.metrics.MutationsTotal.WithLabelValues("vaccines", "add").Inc()
	writeJSON(w, http.StatusOK, map[string]any{"vaccines": records})
}

func (s *Server) handleVaccineUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	userID := userFrom(r)

	var body struct {
		ID           string `json:"id"`
		Name         string `json:"name"`
		Company      string `json:"company"`
		OffsetMonths int    `json:"offsetMonths"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	records, err := s.vaccines.Update(r.Context(), userID, body.ID, body.Name, body.Company, body.OffsetMonths)
	if err != nil {
		writeVaccineError(w, err)
		return
	}
	s.metrics.MutationsTotal.WithLabelValues("vaccines", "update").Inc()
	writeJSON(w, http.StatusOK, map[string]any{"vaccines": records})
}

func (s *Server) handleVaccineDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	userID := userFrom(r)

	var body struct {
		ID string `json:"id"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	records, err := s.vaccines.Delete(r.Context(), userID, body.ID)
	if err != nil {
		writeVaccineError(w, err)
		return
	}
	s.metrics.MutationsTotal.WithLabelValues("vaccines", "delete").Inc()
	writeJSON(w, http.StatusOK, map[string]any{"vaccines": records})
}

// handleVaccineAdministered toggles the received flag through the user's
// syncer so the cached snapshot sees the change immediately.
func (s *Server) handleVaccineAdministered(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	userID := userFrom(r)

	var body struct {
		ID           string `json:"id"`
		Administered bool   `json:"administered"`
		DateISO      string `json:"dateISO"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	snap, err := s.syncerFor(userID).ToggleAdministered(r.Context(), body.ID, body.Administered, body.DateISO)
	if err != nil {
		writeVaccineError(w, err)
		return
	}
	s.metrics.MutationsTotal.WithLabelValues("vaccines", "administered").Inc()
	writeJSON(w, http.StatusOK, map[string]any{"vaccines": snap.Vaccines, "refreshedAt": snap.RefreshedAt})
}

func writeVaccineError(w http.ResponseWriter, err error) {
	switch err {
	case app.ErrVaccineNotFound:
		writeError(w, http.StatusNotFound, err)
	case app.ErrBuiltInVaccine:
		writeError(w, http.StatusForbidden, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}
