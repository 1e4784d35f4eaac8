package service

import (
	"context"
	"log/slog"

	domainerrors "github.com/ficai/signal-server/internal/errors"
	"github.com/ficai/signal-server/internal/metadata/fichub"
)

// MetaService resolves story URLs to upstream metadata.
type MetaService struct {
	fichub *fichub.Client
	logger *slog.Logger
}

// NewMetaService creates a new metadata service.
func NewMetaService(client *fichub.Client, logger *slog.Logger) *MetaService {
	return &MetaService{fichub: client, logger: logger}
}

// Lookup fetches metadata for the story at url.
func (s *MetaService) Lookup(ctx context.Context, url string) (*fichub.Meta, error) {
	if url == "" {
		return nil, domainerrors.Validation("url is required")
	}

	meta, err := s.fichub.GetMeta(ctx, url)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "metadata lookup failed")
	}
	if meta == nil {
		return nil, domainerrors.NotFound("story not known upstream")
	}
	return meta, nil
}
