package models

import "time"

// ApiKey lets scripts call the booking API without a session cookie. Only the
// SHA-256 of the key is stored; Prefix is kept so users can tell keys apart.
type ApiKey struct {
	ID        int64     `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Prefix    string    `db:"prefix" json:"prefix"`
	KeyHash   string    `db:"key_hash" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
