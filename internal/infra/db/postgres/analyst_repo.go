package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	domain "github.com/bryanwahyu/deepscan/internal/domain/analyst"
)

type AnalystRepository struct {
	db *sql.DB
}

func NewAnalystRepository(db *sql.DB) *AnalystRepository {
	return &AnalystRepository{db: db}
}

// Save inserts or updates an analysis record
func (r *AnalystRepository) Save(ctx context.Context, a *domain.Analysis) error {
	const q = `
INSERT INTO code_analyses
  (id, tenant_id, language, code_sha256,
   high, medium, low, other, findings_total, vulnerabilities_total,
   result_json, report_url, provider, duration_ms, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
ON CONFLICT (id) DO UPDATE SET
  result_json=EXCLUDED.result_json,
  report_url=EXCLUDED.report_url,
  high=EXCLUDED.high,
  medium=EXCLUDED.medium,
  low=EXCLUDED.low,
  other=EXCLUDED.other,
  findings_total=EXCLUDED.findings_total,
  vulnerabilities_total=EXCLUDED.vulnerabilities_total;
`
	result, err := encodeResult(a.Result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err = r.db.ExecContext(ctx, q,
		a.ID, stringOrDash(a.TenantID), a.Language, a.CodeHash,
		a.Counts.High, a.Counts.Medium, a.Counts.Low, a.Counts.Other, a.Counts.Total,
		len(a.Result.Vulnerabilities.Vulnerabilities),
		result, a.ReportURL, a.Provider, a.DurationMS, createdAt,
	)
	return err
}

func (r *AnalystRepository) Get(ctx context.Context, tenant string, id domain.AnalysisID) (*domain.Analysis, error) {
	q := `SELECT ` + analysisColumns + `
FROM code_analyses
WHERE tenant_id=$1 AND id=$2
LIMIT 1;`
	a, err := scanAnalysis(r.db.QueryRowContext(ctx, q, tenant, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return a, err
}

// Paginate returns a page of analysis records ordered by created_at desc
func (r *AnalystRepository) Paginate(ctx context.Context, tenant string, page, pageSize int) ([]*domain.Analysis, error) {
	limit, offset := pageBounds(page, pageSize)
	q := `SELECT ` + analysisColumns + `
FROM code_analyses
WHERE tenant_id=$1
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3;`
	rows, err := r.db.QueryContext(ctx, q, tenant, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*domain.Analysis{}
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *AnalystRepository) Summary(ctx context.Context, tenant string, sinceDays int) (domain.Summary, error) {
	if sinceDays <= 0 {
		sinceDays = 7
	}
	cut := time.Now().UTC().AddDate(0, 0, -sinceDays)

	const q = `
SELECT COUNT(*),
       COALESCE(SUM(high),0),
       COALESCE(SUM(medium),0),
       COALESCE(SUM(low),0),
       COUNT(*) FILTER (WHERE vulnerabilities_total > 0)
FROM code_analyses
WHERE tenant_id=$1 AND created_at >= $2;`
	s := domain.Summary{Days: sinceDays}
	err := r.db.QueryRowContext(ctx, q, tenant, cut).Scan(&s.TotalAnalyses, &s.High, &s.Medium, &s.Low, &s.Vulnerable)
	return s, err
}
