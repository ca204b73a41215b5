package mysql

import (
	"encoding/json"
	"strings"

	"github.com/bryanwahyu/deepscan/internal/domain/analysis"
	domain "github.com/bryanwahyu/deepscan/internal/domain/analyst"
)

// stringOrDash returns "-" when the input is empty/whitespace
func stringOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

type rowScanner interface {
	Scan(dest ...any) error
}

const analysisColumns = `id, tenant_id, language, code_sha256,
       high, medium, low, other, findings_total, vulnerabilities_total,
       result_json, report_url, provider, duration_ms, created_at`

func scanAnalysis(row rowScanner) (*domain.Analysis, error) {
	var a domain.Analysis
	var vulnTotal int
	var result []byte
	if err := row.Scan(
		&a.ID, &a.TenantID, &a.Language, &a.CodeHash,
		&a.Counts.High, &a.Counts.Medium, &a.Counts.Low, &a.Counts.Other, &a.Counts.Total, &vulnTotal,
		&result, &a.ReportURL, &a.Provider, &a.DurationMS, &a.CreatedAt,
	); err != nil {
		return nil, err
	}
	if len(result) > 0 {
		if err := json.Unmarshal(result, &a.Result); err != nil {
			return nil, err
		}
	}
	a.Result.Normalize()
	return &a, nil
}

func encodeResult(r analysis.AnalysisResult) (string, error) {
	r.Normalize()
	b, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func pageBounds(page, pageSize int) (limit, offset int) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return pageSize, (page - 1) * pageSize
}
