package ports

import (
	"context"

	"github.com/teerapatch/linklytics/pkg/core/domain"
)

// LinkRepository defines storage operations for links and their clicks
type LinkRepository interface {
	// Create inserts the link and fills in its ID and CreatedAt.
	// Returns domain.ErrConflict when the short code is already taken;
	// the insert and the uniqueness check are one atomic operation
	// enforced by the store's unique constraint.
	Create(ctx context.Context, link *domain.Link) error
	GetByShortCode(ctx context.Context, code string) (*domain.Link, error) // (nil, nil) when absent
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Link, error)
	Delete(ctx context.Context, id int64) error      // Hard delete, cascades to clicks
	Dump(ctx context.Context) ([]domain.Link, error) // For migration

	// Stats
	RecordClick(ctx context.Context, click *domain.Click) error // insert + counter increment in one tx
	GetLinkStats(ctx context.Context, linkID int64) (*domain.LinkAnalytics, error)
} // LinkRepository ends here

// LinkService defines the business logic for the URL registry
type LinkService interface {
	Create(ctx context.Context, originalURL, ownerID, customAlias string) (*domain.Link, error)
	GetByCode(ctx context.Context, code string) (*domain.Link, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Link, error)
	Delete(ctx context.Context, code, callerID string) (bool, error)
}

// ClickService records visits against a link
type ClickService interface {
	Record(ctx context.Context, linkID int64, userAgent, referer string) error
	// RecordDetached is the fire-and-forget form used on the redirect path:
	// it runs with its own context and surfaces failures only through logging.
	RecordDetached(linkID int64, userAgent, referer string)
}

// AnalyticsService aggregates recorded visits
type AnalyticsService interface {
	// GetLinkAnalytics returns (nil, nil) when the code is unknown or the
	// caller is not the owner; the two cases are indistinguishable on purpose.
	GetLinkAnalytics(ctx context.Context, code, callerID string) (*domain.LinkAnalytics, error)
}
