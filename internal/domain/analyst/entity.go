package analyst

import (
	"time"

	"github.com/bryanwahyu/deepscan/internal/domain/analysis"
)

// AnalysisID identifier type
type AnalysisID string

// Analysis is a completed AnalysisResult archived for auditing and retrieval
type Analysis struct {
	ID         AnalysisID              `json:"id"`
	TenantID   string                  `json:"tenant_id"`
	Language   string                  `json:"language"`
	CodeHash   string                  `json:"code_sha256"`
	Counts     analysis.SeverityCounts `json:"counts"`
	Result     analysis.AnalysisResult `json:"result"`
	ReportURL  string                  `json:"report_url,omitempty"`
	Provider   string                  `json:"provider"`
	DurationMS int64                   `json:"duration_ms"`
	CreatedAt  time.Time               `json:"created_at"`
}

// Summary aggregates archived analyses over a time window
type Summary struct {
	Days          int `json:"days"`
	TotalAnalyses int `json:"total_analyses"`
	High          int `json:"high"`
	Medium        int `json:"medium"`
	Low           int `json:"low"`
	Vulnerable    int `json:"with_vulnerabilities"`
}
