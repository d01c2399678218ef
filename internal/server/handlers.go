package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/rcliao/corelab/internal/api"
	"github.com/rcliao/corelab/internal/store"
)

const maxBodyBytes = 1 << 20

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listEvents(w http.ResponseWriter, r *http.Request) {
	if s.bus == nil {
		writeJSON(w, http.StatusOK, []struct{}{})
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, r, http.StatusBadRequest, fmt.Errorf("invalid limit %q", v))
			return
		}
		limit = n
	}
	writeJSON(w, http.StatusOK, s.bus.Recent(limit))
}

func (s *Server) listPersons(w http.ResponseWriter, r *http.Request) {
	persons, err := s.backend.GetPersons(r.Context())
	if err != nil {
		s.backendError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, persons)
}

func (s *Server) createPerson(w http.ResponseWriter, r *http.Request) {
	var req api.CreatePersonRequest
	if !s.decode(w, r, &req) {
		return
	}
	id, err := s.backend.CreatePerson(r.Context(), req.Name, req.Notes)
	if err != nil {
		s.backendError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, api.IDResponse{ID: id})
}

func (s *Server) updatePerson(w http.ResponseWriter, r *http.Request) {
	id, ok := s.personID(w, r)
	if !ok {
		return
	}
	var req api.UpdatePersonRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.backend.UpdatePerson(r.Context(), id, req.Name, req.Notes, req.IsActive); err != nil {
		s.backendError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listConversations(w http.ResponseWriter, r *http.Request) {
	id, ok := s.personID(w, r)
	if !ok {
		return
	}
	convs, err := s.backend.GetConversations(r.Context(), id)
	if err != nil {
		s.backendError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, convs)
}

func (s *Server) createConversation(w http.ResponseWriter, r *http.Request) {
	id, ok := s.personID(w, r)
	if !ok {
		return
	}
	var req api.CreateConversationRequest
	if !s.decode(w, r, &req) {
		return
	}
	convID, err := s.backend.CreateConversation(r.Context(), id, req.Content, req.Context)
	if err != nil {
		s.backendError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, api.IDResponse{ID: convID})
}

func (s *Server) listMemories(w http.ResponseWriter, r *http.Request) {
	id, ok := s.personID(w, r)
	if !ok {
		return
	}
	mems, err := s.backend.GetMemories(r.Context(), id)
	if err != nil {
		s.backendError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mems)
}

func (s *Server) createMemory(w http.ResponseWriter, r *http.Request) {
	id, ok := s.personID(w, r)
	if !ok {
		return
	}
	var req api.CreateMemoryRequest
	if !s.decode(w, r, &req) {
		return
	}
	memID, err := s.backend.CreateMemory(r.Context(), id, req.Key, req.Value, req.Importance)
	if err != nil {
		s.backendError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, api.IDResponse{ID: memID})
}

func (s *Server) personID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "personID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		s.writeError(w, r, http.StatusBadRequest, fmt.Errorf("invalid person id %q", raw))
		return 0, false
	}
	return id, true
}

// decode reads and validates a JSON body. It writes a 400 and returns false
// on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		s.writeError(w, r, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		s.writeError(w, r, http.StatusBadRequest, validationError(err))
		return false
	}
	return true
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s is required", fe.Field())
	case "min", "max":
		return fmt.Errorf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param())
	}
	return fmt.Errorf("%s is invalid", fe.Field())
}

func (s *Server) backendError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, store.ErrNotFound) {
		status = http.StatusNotFound
	}
	s.writeError(w, r, status, err)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	msg := err.Error()
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		msg = apiErr.Message
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err))
	} else {
		s.logger.Debug("request rejected",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Int("status", status),
			zap.String("error", msg))
	}
	writeJSON(w, status, api.ErrorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
