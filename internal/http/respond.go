package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"piggybank/internal/core"
	"piggybank/internal/log"
)

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", log.FieldError, err)
	}
}

// respondError translates domain errors into status codes and {error, fields} bodies.
func (s *Server) respondError(w http.ResponseWriter, err error) {
	var vErr core.ValidationError
	switch {
	case errors.As(err, &vErr):
		s.respondJSON(w, http.StatusBadRequest, errorResponse{Error: "validation_failed", Fields: vErr})
	case errors.Is(err, core.ErrDuplicateEmail):
		s.respondJSON(w, http.StatusConflict, errorResponse{Error: "email_already_registered"})
	case errors.Is(err, core.ErrInvalidCredentials):
		s.respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid_credentials"})
	case errors.Is(err, core.ErrNoSession):
		s.respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "not_signed_in"})
	case errors.Is(err, core.ErrInvalidCategory):
		s.respondJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown_category"})
	case errors.Is(err, core.ErrInvalidAmount):
		s.respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_amount"})
	case errors.Is(err, core.ErrInvalidTxType):
		s.respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_transaction_type"})
	default:
		s.logger.Error("request failed", log.FieldError, err)
		s.respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal_error"})
	}
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func (s *Server) badRequest(w http.ResponseWriter, msg string) {
	s.respondJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}
