package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/ficai/signal-server/internal/domain"
	"github.com/ficai/signal-server/internal/http/response"
	"github.com/ficai/signal-server/internal/service"
)

// SignalsResponse carries the aggregated votes for one story.
type SignalsResponse struct {
	Signals []domain.TagSignal `json:"signals"`
}

// handleGetSignals returns the aggregated tag votes for the story named
// by the url query parameter. Anonymous callers get the aggregate
// without a personal vote column.
// GET /v1/signals?url=...
func (s *Server) handleGetSignals(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")

	var accountID *int64
	if account := accountFrom(r.Context()); account != nil {
		accountID = &account.ID
	}

	signals, err := s.signalService.Get(r.Context(), url, accountID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, SignalsResponse{Signals: signals}, s.logger)
}

// handlePatchSignals applies a batch of vote changes for the calling
// account.
// PATCH /v1/signals
func (s *Server) handlePatchSignals(w http.ResponseWriter, r *http.Request) {
	var req service.PatchRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid request body", s.logger)
		return
	}

	account := accountFrom(r.Context())
	if err := s.signalService.Patch(r.Context(), account.ID, req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}
