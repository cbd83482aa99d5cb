package services

import (
	"context"

	"github.com/teerapatch/linklytics/pkg/core/domain"
	"github.com/teerapatch/linklytics/pkg/ports"
)

type AnalyticsService struct {
	repo ports.LinkRepository
}

func NewAnalyticsService(repo ports.LinkRepository) *AnalyticsService {
	return &AnalyticsService{repo: repo}
}

// GetLinkAnalytics returns the rollup summary for one of the caller's links.
// An unknown code and a link owned by someone else both come back as
// (nil, nil): callers can't probe which short codes exist.
func (s *AnalyticsService) GetLinkAnalytics(ctx context.Context, code, callerID string) (*domain.LinkAnalytics, error) {
	link, err := s.repo.GetByShortCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if link == nil || link.OwnerID != callerID {
		return nil, nil
	}

	stats, err := s.repo.GetLinkStats(ctx, link.ID)
	if err != nil {
		return nil, err
	}

	stats.LinkID = link.ID
	stats.ShortCode = link.ShortCode
	stats.OriginalURL = link.OriginalURL
	return stats, nil
}

var _ ports.AnalyticsService = (*AnalyticsService)(nil)
