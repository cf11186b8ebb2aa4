package models

import (
	"encoding/json"
	"time"
)

type PostStatusLog struct {
	ID              int64           `db:"id" json:"id"`
	ScheduledPostID string          `db:"scheduled_post_id" json:"scheduled_post_id"`
	Status          string          `db:"status" json:"status"`
	Message         string          `db:"message" json:"message"`
	ResponseData    json.RawMessage `db:"response_data" json:"response_data,omitempty"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}
