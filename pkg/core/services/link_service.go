package services

import (
	"context"
	"errors"

	"github.com/teerapatch/linklytics/pkg/core/domain"
	"github.com/teerapatch/linklytics/pkg/ports"
	"github.com/teerapatch/linklytics/pkg/shortcode"
)

// maxCollisionRetries bounds the generate-and-insert loop. The alphabet has
// far too much entropy for sustained collisions; the retries only absorb the
// rare simultaneous-duplicate race, so no backoff.
const maxCollisionRetries = 3

type LinkService struct {
	repo ports.LinkRepository

	// generate is swappable in tests to force collisions
	generate func() (string, error)
}

func NewLinkService(repo ports.LinkRepository) *LinkService {
	return &LinkService{repo: repo, generate: shortcode.Generate}
}

// Create registers a new short link for ownerID. With a custom alias the
// alias is validated and inserted exactly once: a uniqueness conflict means
// the caller's chosen code is taken (domain.ErrAliasTaken). Without one,
// random candidates are generated and inserted until one sticks, up to
// maxCollisionRetries attempts, then domain.ErrGenerationFailed.
func (s *LinkService) Create(ctx context.Context, originalURL, ownerID, customAlias string) (*domain.Link, error) {
	if customAlias != "" {
		if err := shortcode.ValidateAlias(customAlias); err != nil {
			return nil, err
		}
		return s.insert(ctx, originalURL, ownerID, customAlias, true)
	}

	for attempt := 0; attempt < maxCollisionRetries; attempt++ {
		code, err := s.generate()
		if err != nil {
			return nil, err
		}
		link, err := s.insert(ctx, originalURL, ownerID, code, false)
		if errors.Is(err, domain.ErrConflict) {
			// Another creator raced us to this code; try a fresh one.
			continue
		}
		if err != nil {
			return nil, err
		}
		return link, nil
	}
	return nil, domain.ErrGenerationFailed
}

func (s *LinkService) insert(ctx context.Context, originalURL, ownerID, code string, custom bool) (*domain.Link, error) {
	link := &domain.Link{
		ShortCode:     code,
		OriginalURL:   originalURL,
		OwnerID:       ownerID,
		IsCustomAlias: custom,
	}
	if err := s.repo.Create(ctx, link); err != nil {
		if custom && errors.Is(err, domain.ErrConflict) {
			return nil, domain.ErrAliasTaken
		}
		return nil, err
	}
	return link, nil
}

// GetByCode is the redirect hot path: one indexed lookup, no side effects.
func (s *LinkService) GetByCode(ctx context.Context, code string) (*domain.Link, error) {
	link, err := s.repo.GetByShortCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, domain.ErrNotFound
	}
	return link, nil
}

func (s *LinkService) ListByOwner(ctx context.Context, ownerID string) ([]domain.Link, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// Delete removes the caller's link and, through the store's cascade, all of
// its clicks. An unknown code is (false, nil), not an error; someone else's
// link is domain.ErrForbidden.
func (s *LinkService) Delete(ctx context.Context, code, callerID string) (bool, error) {
	existing, err := s.repo.GetByShortCode(ctx, code)
	if err != nil {
		return false, err
	}
	if existing == nil {
		return false, nil
	}
	if existing.OwnerID != callerID {
		return false, domain.ErrForbidden
	}
	if err := s.repo.Delete(ctx, existing.ID); err != nil {
		return false, err
	}
	return true, nil
}

var _ ports.LinkService = (*LinkService)(nil)
