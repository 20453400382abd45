package adapthttp

import (
	"net/http"

	"healthvault/internal/app"
	"healthvault/internal/domain"
)

func (s *Server) handleBmi(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := userFrom(r)

	switch r.Method {
	case http.MethodGet:
		entries, err := s.bmi.List(ctx, userID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"entries": entries})

	case http.MethodPost:
		var body struct {
			Date     string  `json:"date"`
			HeightCm float64 `json:"heightCm"`
			WeightKg float64 `json:"weightKg"`
			Notes    string  `json:"notes"`
		}
		if err := parseJSON(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		entries, err := s.bmi.Record(ctx, userID, domain.BmiEntry{
			Date:     body.Date,
			HeightCm: body.HeightCm,
			WeightKg: body.WeightKg,
			Notes:    body.Notes,
		})
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		s.metrics.MutationsTotal.WithLabelValues("bmi", "add").Inc()
		writeJSON(w, http.StatusOK, map[string]any{"entries": entries})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleBmiUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	userID := userFrom(r)

	var body struct {
		ID           int64   `json:"id"`
		OriginalDate string  `json:"originalDate"`
		Date         string  `json:"date"`
		HeightCm     float64 `json:"heightCm"`
		WeightKg     float64 `json:"weightKg"`
		Notes        string  `json:"notes"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	entries, err := s.bmi.Update(r.Context(), userID, body.ID, body.OriginalDate, domain.BmiEntry{
		Date:     body.Date,
		HeightCm: body.HeightCm,
		WeightKg: body.WeightKg,
		Notes:    body.Notes,
	})
	if err == app.ErrEntryNotFound {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.metrics.MutationsTotal.WithLabelValues("bmi", "update").Inc()
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (s *Server) handleBmiDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	userID := userFrom(r)

	var body struct {
		ID   int64  `json:"id"`
		Date string `json:"date"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	entries, err := s.bmi.Delete(r.Context(), userID, body.ID, body.Date)
	if err == app.ErrEntryNotFound {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.metrics.MutationsTotal.WithLabelValues("bmi", "delete").Inc()
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (s *Server) handleBmiChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	graph, err := s.charts.Graph(r.Context(), userFrom(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, graph)
}

func (s *Server) handleBmiStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	entry, bmi, class, err := s.bmi.Status(r.Context(), userFrom(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"entry": entry,
		"bmi":   bmi,
		"class": class,
	})
}
