package failures

import "context"

// Repository defines persistence for analysis failures
type Repository interface {
	Save(ctx context.Context, f *Failure) error
	ListByAnalysis(ctx context.Context, tenant string, analysisID string, limit int) ([]*Failure, error)
}
