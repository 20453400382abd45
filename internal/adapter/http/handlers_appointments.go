package adapthttp

import (
	"net/http"

	"healthvault/internal/app"
	"healthvault/internal/domain"
)

func (s *Server) handleAppointments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := userFrom(r)

	switch r.Method {
	case http.MethodGet:
		appts, err := s.appts.List(ctx, userID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"appointments": appts})

	case http.MethodPost:
		var body struct {
			Date    string `json:"date"`
			Time    string `json:"time"`
			Place   string `json:"place"`
			Disease string `json:"disease"`
		}
		if err := parseJSON(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		appts, err := s.appts.Add(ctx, userID, domain.Appointment{
			Date:    body.Date,
			Time:    body.Time,
			Place:   body.Place,
			Disease: body.Disease,
		})
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		s.metrics.MutationsTotal.WithLabelValues("appointments", "add").Inc()
		writeJSON(w, http.StatusOK, map[string]any{"appointments": appts})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleAppointmentUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	userID := userFrom(r)

	var body struct {
		ID      string `json:"id"`
		Date    string `json:"date"`
		Time    string `json:"time"`
		Place   string `json:"place"`
		Disease string `json:"disease"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	appts, err := s.appts.Update(r.Context(), userID, domain.Appointment{
		ID:      body.ID,
		Date:    body.Date,
		Time:    body.Time,
		Place:   body.Place,
		Disease: body.Disease,
	})
	if err == app.ErrAppointmentNotFound {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.metrics.MutationsTotal.WithLabelValues("appointments", "update").Inc()
	writeJSON(w, http.StatusOK, map[string]any{"appointments": appts})
}

func (s *Server) handleAppointmentDelete(w http.ResponseWriter, r *http.Request) {
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

	appts, err := s.appts.Delete(r.Context(), userID, body.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.metrics.MutationsTotal.WithLabelValues("appointments", "delete").Inc()
	writeJSON(w, http.StatusOK, map[string]any{"appointments": appts})
}

func (s *Server) handleAppointmentCompleted(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	userID := userFrom(r)

	var body struct {
		ID        string `json:"id"`
		Completed bool   `json:"completed"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	appts, err := s.appts.SetCompleted(r.Context(), userID, body.ID, body.Completed)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.metrics.MutationsTotal.WithLabelValues("appointments", "completed").Inc()
	writeJSON(w, http.StatusOK, map[string]any{"appointments": appts})
}
