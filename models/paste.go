package models

import (
	"time"
)

// Paste is the metadata record for a stored paste. Content lives in the
// blob store, keyed by ID; the record only carries its byte length.
type Paste struct {
	ID            string     `json:"id"`
	Title         string     `json:"title,omitempty"`
	Language      string     `json:"language,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	BurnAfterRead bool       `json:"burn_after_read"`
	Size          int64      `json:"size"`
}

// IsExpired reports whether the paste has expired. A nil ExpiresAt means
// the paste never expires.
func (p *Paste) IsExpired() bool {
	return p.IsExpiredAt(time.Now())
}

// IsExpiredAt reports whether the paste is expired relative to the given time.
func (p *Paste) IsExpiredAt(now time.Time) bool {
	if p.ExpiresAt == nil {
		return false
	}
	return now.After(*p.ExpiresAt)
}
