package domain

import "time"

// Click represents one recorded visit to a short link.
// Browser and Referer use "" for absent values; the repository stores those
// as NULL so the rollup queries can COALESCE them.
type Click struct {
	ID         int64     `json:"id"`
	LinkID     int64     `json:"link_id"`
	DeviceType string    `json:"device_type"` // "desktop", "mobile", "tablet", "bot" or "unknown"
	Browser    string    `json:"browser,omitempty"`
	Referer    string    `json:"referer,omitempty"`
	ClickedAt  time.Time `json:"clicked_at"`
}

// LinkAnalytics is the aggregated summary for a single link
type LinkAnalytics struct {
	LinkID      int64           `json:"link_id"`
	ShortCode   string          `json:"short_code"`
	OriginalURL string          `json:"original_url"`
	TotalClicks int64           `json:"total_clicks"`
	Timeline    []TimelinePoint `json:"timeline"`
	Devices     []StatCount     `json:"devices"`
	Browsers    []StatCount     `json:"browsers"`
	Referrers   []StatCount     `json:"referrers"`
}

// TimelinePoint is the click count for one calendar date (UTC)
type TimelinePoint struct {
	Date   string `json:"date"` // YYYY-MM-DD
	Clicks int64  `json:"clicks"`
}

// StatCount is a single bucket of a categorical rollup
type StatCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}
