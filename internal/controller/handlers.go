package controller

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sureshk/appointment_api/internal/model"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type publishAvailabilityRequest struct {
	Slots []string `json:"slots"`
}

type bookAppointmentRequest struct {
	ProfessorID string `json:"professor_id"`
	Time        string `json:"time"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	token, err := s.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Token: token})
}

func (s *Server) handlePublishAvailability(w http.ResponseWriter, r *http.Request) {
	var req publishAvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	// Преподаватель публикует только свою доступность: id берём из токена
	actor := actorFromContext(r.Context())
	availability, err := s.reservationService.PublishAvailability(r.Context(), actor, req.Slots)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, availability)
}

func (s *Server) handleListAvailability(w http.ResponseWriter, r *http.Request) {
	professorID := chi.URLParam(r, "professorId")

	actor := actorFromContext(r.Context())
	slots, err := s.reservationService.ListAvailability(r.Context(), actor, professorID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, slots)
}

func (s *Server) handleBookAppointment(w http.ResponseWriter, r *http.Request) {
	var req bookAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	if req.ProfessorID == "" || req.Time == "" {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	actor := actorFromContext(r.Context())
	appointment, err := s.reservationService.BookAppointment(r.Context(), actor, req.ProfessorID, req.Time)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, appointment)
}

func (s *Server) handleCancelAppointment(w http.ResponseWriter, r *http.Request) {
	appointmentID := chi.URLParam(r, "appointmentId")

	actor := actorFromContext(r.Context())
	if err := s.reservationService.CancelAppointment(r.Context(), actor, appointmentID); err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "canceled"})
}

func (s *Server) handleListAppointments(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	appointments, err := s.reservationService.ListStudentAppointments(r.Context(), actor)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	if appointments == nil {
		appointments = []*model.Appointment{}
	}

	writeJSON(w, http.StatusOK, appointments)
}
