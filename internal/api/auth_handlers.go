package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/ficai/signal-server/internal/auth"
	"github.com/ficai/signal-server/internal/http/response"
	"github.com/ficai/signal-server/internal/service"
)

// AccountResponse is the account representation returned to clients.
type AccountResponse struct {
	AccountID int64  `json:"accountId"`
	Email     string `json:"email"`
}

// handleCreateAccount registers a new account and establishes its first
// session.
// POST /v1/accounts
func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid request body", s.logger)
		return
	}

	account, sessionID, err := s.authService.Register(r.Context(), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	http.SetCookie(w, auth.SessionCookie(sessionID, s.cookieDomain))
	response.Created(w, AccountResponse{AccountID: account.ID, Email: account.Email}, s.logger)
}

// handleCreateSession logs an account in.
// POST /v1/sessions
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid request body", s.logger)
		return
	}

	_, sessionID, err := s.authService.Login(r.Context(), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	http.SetCookie(w, auth.SessionCookie(sessionID, s.cookieDomain))
	response.NoContent(w)
}

// handleGetSession returns the account behind the current session.
// GET /v1/sessions
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	account := accountFrom(r.Context())
	response.Success(w, AccountResponse{AccountID: account.ID, Email: account.Email}, s.logger)
}

// handleDeleteSession logs the current session out and clears its
// cookie.
// DELETE /v1/sessions
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.authService.Logout(r.Context(), sessionIDFrom(r.Context())); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	http.SetCookie(w, auth.ExpiredSessionCookie(s.cookieDomain))
	response.NoContent(w)
}
