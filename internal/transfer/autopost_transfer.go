package transfer

type PostResult struct {
	PostID     string `json:"post_id"`
	Status     string `json:"status"`
	AyrshareID string `json:"ayrshare_id,omitempty"`
	Error      string `json:"error,omitempty"`
}

type BatchSummary struct {
	Success   bool         `json:"success"`
	Processed int          `json:"processed"`
	Results   []PostResult `json:"results"`
}
