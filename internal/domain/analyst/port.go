package analyst

import "context"

// Repository port for persisting and querying analyses
type Repository interface {
	Save(ctx context.Context, a *Analysis) error
	Get(ctx context.Context, tenant string, id AnalysisID) (*Analysis, error)
	Paginate(ctx context.Context, tenant string, page, pageSize int) ([]*Analysis, error)
	Summary(ctx context.Context, tenant string, sinceDays int) (Summary, error)
}

// ArtifactStore port for the archived JSON report
type ArtifactStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}
