package models

import "time"

type ScheduledPost struct {
	ID               string    `db:"id" json:"id"`
	UserID           string    `db:"user_id" json:"user_id"`
	CampaignID       *string   `db:"campaign_id" json:"campaign_id,omitempty"`
	Platforms        []string  `db:"platforms" json:"platforms"`
	Caption          string    `db:"caption" json:"caption"`
	MediaURLs        []string  `db:"media_urls" json:"media_urls"`
	ScheduleTime     time.Time `db:"schedule_time" json:"schedule_time"`
	Status           string    `db:"status" json:"status"`                       // scheduled, posted, failed, cancelled
	ProcessingStatus string    `db:"processing_status" json:"processing_status"` // pending, processing, completed, failed
	AyrsharePostID   *string   `db:"ayrshare_post_id" json:"ayrshare_post_id,omitempty"`
	ErrorMessage     *string   `db:"error_message" json:"error_message,omitempty"`
	RetryCount       int       `db:"retry_count" json:"retry_count"`
	MaxRetries       int       `db:"max_retries" json:"max_retries"`
	BoostEnabled     bool      `db:"boost_enabled" json:"boost_enabled"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

const (
	PostStatusScheduled = "scheduled"
	PostStatusPosted    = "posted"
	PostStatusFailed    = "failed"
	PostStatusCancelled = "cancelled"
)

const (
	ProcessingPending    = "pending"
	ProcessingInProgress = "processing"
	ProcessingCompleted  = "completed"
	ProcessingFailed     = "failed"
)

const DefaultMaxRetries = 3

// IsDue reports whether the delivery worker may pick the post up at now.
func (p *ScheduledPost) IsDue(now time.Time) bool {
	return p.Status == PostStatusScheduled &&
		p.ProcessingStatus == ProcessingPending &&
		!p.ScheduleTime.After(now) &&
		p.RetryCount < p.MaxRetries
}

// CanRequeue reports whether a failed post still has attempts left.
func (p *ScheduledPost) CanRequeue() bool {
	return p.Status == PostStatusFailed && p.RetryCount < p.MaxRetries
}
