package api

import (
	"net/http"
	"strconv"

	"github.com/ficai/signal-server/internal/http/response"
	"github.com/ficai/signal-server/internal/service"
)

// TagSearchResponse carries ranked tag search results.
type TagSearchResponse struct {
	Tags []service.TagMatch `json:"tags"`
}

// handleSearchTags returns known tags ranked by closeness to the query.
// GET /v1/tags?q=...&limit=...
func (s *Server) handleSearchTags(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			response.BadRequest(w, "limit must be a positive integer", s.logger)
			return
		}
		limit = parsed
	}

	matches, err := s.searchService.Search(r.Context(), query, limit)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, TagSearchResponse{Tags: matches}, s.logger)
}
