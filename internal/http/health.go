package http

import (
	"net/http"
	"time"

	"piggybank/internal/log"
	"piggybank/internal/storage"
)

type healthResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, healthResponse{
		Status: "ok",
		Uptime: time.Since(s.startedAt).Round(time.Second).String(),
	})
}

// handleReady probes the backing store before reporting ready.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, _, err := s.kv.Get(r.Context(), storage.UsersKey); err != nil {
		s.logger.ErrorContext(r.Context(), "readiness probe failed",
			log.FieldError, err,
		)
		s.respondJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
		return
	}
	s.respondJSON(w, http.StatusOK, healthResponse{
		Status: "ready",
		Uptime: time.Since(s.startedAt).Round(time.Second).String(),
	})
}
