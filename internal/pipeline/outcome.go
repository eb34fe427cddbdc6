package pipeline

// Status is the terminal disposition of one asset run.
type Status string

const (
	// StatusSkipped means the asset was already processed and no work ran.
	// Skips never touch the record sets.
	StatusSkipped Status = "skipped"
	// StatusSucceeded means every fatal stage completed and a success record
	// was written.
	StatusSucceeded Status = "succeeded"
	// StatusFailed means a fatal stage exhausted its retries and a failure
	// record was written or updated.
	StatusFailed Status = "failed"
)

// Failure reasons recorded with failed outcomes.
const (
	ReasonInsufficientData = "insufficient data"
	ReasonContentFailed    = "content generation failed"
	ReasonImageFailed      = "image acquisition failed"
	ReasonUploadFailed     = "upload failed"
	ReasonPublishFailed    = "publish failed"
)

// Outcome reports what happened to one asset.
type Outcome struct {
	Status Status
	// Reason is set for failed outcomes only.
	Reason string
	// HostingURL and PostURL are set for succeeded outcomes. HostingURL is
	// also present in the failure detail when publishing fails after a
	// successful upload.
	HostingURL string
	PostURL    string
}

// Succeeded reports whether the outcome is a success.
func (o Outcome) Succeeded() bool { return o.Status == StatusSucceeded }
