package models

import "time"

// ClientToken is a user's Ayrshare posting credential.
type ClientToken struct {
	UserID         string    `db:"user_id" json:"user_id"`
	AyrshareAPIKey string    `db:"ayrshare_api_key" json:"-"`
	AyrshareUserID string    `db:"ayrshare_user_id" json:"ayrshare_user_id"`
	IsActive       bool      `db:"is_active" json:"is_active"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}
