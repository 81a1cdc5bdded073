package http

import (
	"net/http"

	"piggybank/internal/core"
	"piggybank/internal/log"
)

type signUpRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// userResponse never carries the stored password.
type userResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

func toUserResponse(u *core.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, Username: u.Username}
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := decodeJSON(r, &req); err != nil {
		s.badRequest(w, "malformed_json")
		return
	}

	user, err := s.accounts.SignUp(r.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.logger.InfoContext(r.Context(), "user signed up",
		log.FieldOperation, log.OpSignUp,
		log.FieldUserID, user.ID,
	)
	s.respondJSON(w, http.StatusCreated, toUserResponse(user))
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := decodeJSON(r, &req); err != nil {
		s.badRequest(w, "malformed_json")
		return
	}

	user, err := s.accounts.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.logger.InfoContext(r.Context(), "user signed in",
		log.FieldOperation, log.OpSignIn,
		log.FieldUserID, user.ID,
	)
	s.respondJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if err := s.accounts.SignOut(r.Context()); err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	user, err := s.accounts.CurrentSession(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, toUserResponse(user))
}
