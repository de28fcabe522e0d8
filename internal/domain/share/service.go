package share

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var ErrForeignSelection = errors.New("selection contains records that do not belong to the owner")

type Service struct {
	repo    Repository
	windows *WindowController
	baseURL string
	log     zerolog.Logger
	now     func() time.Time
}

func NewService(repo Repository, windows *WindowController, baseURL string, log zerolog.Logger) *Service {
	return &Service{
		repo:    repo,
		windows: windows,
		baseURL: baseURL,
		log:     log,
		now:     time.Now,
	}
}

// CreateShare encodes the owner's selection into a share link and arms the
// owner's access window. The selection must be non-empty and fully owned.
// Regenerating replaces any live window.
func (s *Service) CreateShare(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) (*Share, error) {
	token, err := EncodeToken(ids)
	if err != nil {
		return nil, err
	}

	owned, err := s.repo.CountOwnedByIDs(ctx, ownerID, ids)
	if err != nil {
		return nil, fmt.Errorf("validating selection: %w", err)
	}
	if owned != len(ids) {
		return nil, ErrForeignSelection
	}

	now := s.now()
	share := Share{
		Token:     token,
		URL:       s.baseURL + "/shared/" + token,
		CreatedAt: now,
		ExpiresAt: now.Add(s.windows.Window()),
	}
	s.windows.Start(ownerID, share, func() {
		s.log.Debug().Str("owner_id", ownerID.String()).Msg("share window expired")
	})
	return &share, nil
}

// ActiveShare returns the owner's live share, if the window has not lapsed.
func (s *Service) ActiveShare(ownerID uuid.UUID) (*Share, bool) {
	share, ok := s.windows.Active(ownerID)
	if !ok {
		return nil, false
	}
	return &share, true
}

// CancelShare drops the owner's pending window with no side effect.
func (s *Service) CancelShare(ownerID uuid.UUID) {
	s.windows.Cancel(ownerID)
}

// Resolve decodes a received token and fetches the public-safe projection
// for the surviving ids. Requested-but-missing ids are silently omitted;
// zero resolved records is a valid empty view, not a store error. The
// access window is deliberately not consulted here.
func (s *Service) Resolve(ctx context.Context, token string) (*ResolvedView, error) {
	ids, err := DecodeToken(token)
	if err != nil {
		return nil, err
	}
	records, err := s.repo.ListPublicByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetching shared records: %w", err)
	}
	return &ResolvedView{
		Requested: len(ids),
		Resolved:  len(records),
		Records:   records,
	}, nil
}
