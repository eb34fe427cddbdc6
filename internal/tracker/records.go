package tracker

import "time"

// Artifacts references the external resources produced for a processed asset.
type Artifacts struct {
	HostingURL string `json:"hosting_url,omitempty"`
	PostURL    string `json:"post_url,omitempty"`
}

// ProcessedRecord is the durable success record for one asset. At most one
// exists per identity; its presence makes the asset ineligible for
// reprocessing unless a force override is set.
type ProcessedRecord struct {
	Identity    string    `json:"identity"`
	ProcessedAt time.Time `json:"processed_at"`
	HostingURL  string    `json:"hosting_url,omitempty"`
	PostURL     string    `json:"post_url,omitempty"`
}

// FailedRecord is the durable failure record for one asset. It is diagnostic,
// not a block list: a failed asset stays eligible for future runs. Repeated
// failures update the record in place and increment the attempt counter.
type FailedRecord struct {
	Identity      string            `json:"identity"`
	FirstFailedAt time.Time         `json:"first_failed_at"`
	LastAttemptAt time.Time         `json:"last_attempt_at"`
	Reason        string            `json:"reason"`
	Detail        map[string]string `json:"detail,omitempty"`
	AttemptCount  int               `json:"attempt_count"`
}

// Stats aggregates the cumulative record counts.
type Stats struct {
	ProcessedCount int
	FailedCount    int
	TotalAttempts  int
}
