package failures

import "time"

// Failure is a persisted diagnostic entry for an analysis that did not
// produce a result. It is never shown to the submitting caller.
type Failure struct {
	ID         int64     `json:"id"`
	TenantID   string    `json:"tenant_id"`
	AnalysisID string    `json:"analysis_id"`
	Stage      string    `json:"stage"`              // validation | first-stage | synthesis
	Producer   string    `json:"producer,omitempty"` // prompt name
	Kind       string    `json:"kind,omitempty"`     // generation | schema
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"created_at"`
}
