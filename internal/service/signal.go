package service

import (
	"context"
	"log/slog"

	"github.com/ficai/signal-server/internal/domain"
	domainerrors "github.com/ficai/signal-server/internal/errors"
	"github.com/ficai/signal-server/internal/store"
	"github.com/ficai/signal-server/internal/validation"
)

// SignalService handles reading and writing tag votes.
type SignalService struct {
	store     store.SignalStore
	validator *validation.Validator
	logger    *slog.Logger
}

// NewSignalService creates a new signal service.
func NewSignalService(st store.SignalStore, validator *validation.Validator, logger *slog.Logger) *SignalService {
	return &SignalService{
		store:     st,
		validator: validator,
		logger:    logger,
	}
}

// PatchRequest batches tag vote changes for one story.
type PatchRequest struct {
	URL   string   `json:"url" validate:"required,url"`
	Add   []string `json:"add"`
	Rm    []string `json:"rm"`
	Erase []string `json:"erase"`
}

// Get returns the aggregated votes for every tag on the story. When
// accountID is non-nil each entry also carries that account's own vote.
func (s *SignalService) Get(ctx context.Context, url string, accountID *int64) ([]domain.TagSignal, error) {
	if url == "" {
		return nil, domainerrors.Validation("url is required")
	}

	signals, err := s.store.GetSignals(ctx, url, accountID)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to load signals")
	}
	return signals, nil
}

// Patch applies the request's changes in declaration order: adds as
// in-favor votes, removals as against votes, then erasures. The first
// failing change aborts the rest; earlier changes stay applied.
func (s *SignalService) Patch(ctx context.Context, accountID int64, req PatchRequest) error {
	if err := s.validator.Validate(req); err != nil {
		return err
	}

	for _, tag := range req.Add {
		if err := s.setSignal(ctx, accountID, req.URL, tag, true); err != nil {
			return err
		}
	}
	for _, tag := range req.Rm {
		if err := s.setSignal(ctx, accountID, req.URL, tag, false); err != nil {
			return err
		}
	}
	for _, tag := range req.Erase {
		if tag == "" {
			return domainerrors.Validation("tag cannot be empty")
		}
		if err := s.store.EraseSignal(ctx, accountID, req.URL, tag); err != nil {
			return domainerrors.Wrapf(err, domainerrors.CodeInternal, "failed to erase signal for tag %q", tag)
		}
	}

	if s.logger != nil {
		s.logger.Info("Signals patched",
			"account_id", accountID,
			"added", len(req.Add),
			"removed", len(req.Rm),
			"erased", len(req.Erase),
		)
	}
	return nil
}

func (s *SignalService) setSignal(ctx context.Context, accountID int64, url, tag string, value bool) error {
	if tag == "" {
		return domainerrors.Validation("tag cannot be empty")
	}
	if err := s.store.SetSignal(ctx, accountID, url, tag, value); err != nil {
		return domainerrors.Wrapf(err, domainerrors.CodeInternal, "failed to set signal for tag %q", tag)
	}
	return nil
}
