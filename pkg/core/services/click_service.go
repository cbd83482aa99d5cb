package services

import (
	"context"
	"time"

	"github.com/mileusna/useragent"
	"github.com/rs/zerolog"

	"github.com/teerapatch/linklytics/pkg/core/domain"
	"github.com/teerapatch/linklytics/pkg/ports"
)

// recordTimeout bounds a detached recording so an unhealthy store can't pin
// goroutines forever.
const recordTimeout = 5 * time.Second

type ClickService struct {
	repo ports.LinkRepository
	log  zerolog.Logger
}

func NewClickService(repo ports.LinkRepository, log zerolog.Logger) *ClickService {
	return &ClickService{repo: repo, log: log}
}

type parsedUserAgent struct {
	deviceType string
	browser    string
}

func parseUserAgent(raw string) parsedUserAgent {
	if raw == "" {
		return parsedUserAgent{deviceType: "unknown"}
	}

	ua := useragent.Parse(raw)

	switch {
	case ua.Mobile:
		return parsedUserAgent{deviceType: "mobile", browser: ua.Name}
	case ua.Tablet:
		return parsedUserAgent{deviceType: "tablet", browser: ua.Name}
	case ua.Bot:
		return parsedUserAgent{deviceType: "bot", browser: ua.Name}
	case ua.Desktop:
		// Desktop browsers rarely advertise a device class; a recognized
		// browser with no mobile/tablet marker counts as desktop.
		return parsedUserAgent{deviceType: "desktop", browser: ua.Name}
	}

	// Nothing classified: the parser echoes unrecognized input back as the
	// name, which must not leak into the browser rollup.
	return parsedUserAgent{deviceType: "unknown"}
}

// Record parses the user agent, inserts the click event and increments the
// owning link's counter, all inside one storage transaction.
func (s *ClickService) Record(ctx context.Context, linkID int64, userAgent, referer string) error {
	parsed := parseUserAgent(userAgent)

	click := &domain.Click{
		LinkID:     linkID,
		DeviceType: parsed.deviceType,
		Browser:    parsed.browser,
		Referer:    referer,
		ClickedAt:  time.Now().UTC(),
	}
	return s.repo.RecordClick(ctx, click)
}

// RecordDetached runs Record on its own goroutine with a fresh context, so
// the redirect that triggered it is never delayed or failed by analytics
// bookkeeping. Failures are logged with the link id and otherwise dropped.
func (s *ClickService) RecordDetached(linkID int64, userAgent, referer string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()
		if err := s.Record(ctx, linkID, userAgent, referer); err != nil {
			s.log.Error().Err(err).Int64("link_id", linkID).Msg("failed to record click")
		}
	}()
}

var _ ports.ClickService = (*ClickService)(nil)
