package api

import (
	"net/http"

	"github.com/ficai/signal-server/internal/http/response"
)

// handleGetMeta proxies a story metadata lookup to FicHub.
// GET /v1/meta?url=...
func (s *Server) handleGetMeta(w http.ResponseWriter, r *http.Request) {
	meta, err := s.metaService.Lookup(r.Context(), r.URL.Query().Get("url"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, meta, s.logger)
}
