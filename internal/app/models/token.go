package models

import "time"

// RefreshToken is an opaque, single-use credential exchanged for a new token pair
type RefreshToken struct {
	Token      string    `db:"token"`
	UserID     int64     `db:"user_id"`
	ExpiryDate time.Time `db:"expiry_date"`
	IsRevoked  bool      `db:"is_revoked"`
	CreatedAt  time.Time `db:"created_at"`
}

// ExpiredAt reports whether the token is past its expiry at now
func (t *RefreshToken) ExpiredAt(now time.Time) bool {
	return !now.Before(t.ExpiryDate)
}
