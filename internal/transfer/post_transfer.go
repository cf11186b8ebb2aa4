package transfer

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type PostCreation struct {
	Caption      string
	Platforms    string
	ScheduleTime string
	CampaignID   string
	BoostEnabled bool
}

type CredentialUpdate struct {
	APIKey        string `json:"api_key"`
	ProfileUserID string `json:"profile_user_id"`
}

type CustomClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// IssuedApiKey is returned once, when a key is created.
type IssuedApiKey struct {
	ID        int64     `json:"id"`
	Key       string    `json:"key"`
	Prefix    string    `json:"prefix"`
	CreatedAt time.Time `json:"created_at"`
}
