package domain

import "time"

// Link represents a shortened URL owned by a single user
type Link struct {
	ID            int64     `json:"id"`
	ShortCode     string    `json:"short_code"`
	OriginalURL   string    `json:"original_url"`
	OwnerID       string    `json:"owner_id"`
	ClickCount    int64     `json:"click_count"`
	IsCustomAlias bool      `json:"is_custom_alias"`
	CreatedAt     time.Time `json:"created_at"`
}
