package transfer

import "encoding/json"

type AyrsharePostRequest struct {
	Post      string   `json:"post"`
	Platforms []string `json:"platforms"`
	MediaURLs []string `json:"media_urls,omitempty"`
}

type AyrsharePostResponse struct {
	Status  string `json:"status"`
	ID      string `json:"id"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// PublishResult is a post accepted by Ayrshare.
type PublishResult struct {
	ProviderID string
	Raw        json.RawMessage
}
