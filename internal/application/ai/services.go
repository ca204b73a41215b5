package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bryanwahyu/deepscan/internal/application"
	"github.com/bryanwahyu/deepscan/internal/domain/analysis"
	"github.com/bryanwahyu/deepscan/internal/domain/analyst"
	"github.com/bryanwahyu/deepscan/internal/domain/failures"
	"github.com/bryanwahyu/deepscan/internal/logging"
)

// ErrArchiveDisabled is returned by the read use-cases when no repository is
// configured.
var ErrArchiveDisabled = errors.New("analysis archive is not configured")

// FailedError carries the id a failed analysis was recorded under. Its
// message is for logs; callers present a generic failure.
type FailedError struct {
	ID  string
	Err error
}

func (e *FailedError) Error() string { return fmt.Sprintf("analysis %s: %v", e.ID, e.Err) }

func (e *FailedError) Unwrap() error { return e.Err }

// Analyzer runs one analysis. *analysis.Orchestrator implements it.
type Analyzer interface {
	Analyze(ctx context.Context, code, language string) analysis.Outcome
	Backend() string
}

// Recorder receives analysis counters, see middleware.AnalysisRecorder.
type Recorder interface {
	AnalysisStarted()
	AnalysisFinished(ok bool, d time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) AnalysisStarted()                     {}
func (nopRecorder) AnalysisFinished(bool, time.Duration) {}

// Service implements the analysis use-cases. The archive parts (Repo,
// Artifacts, Failures) are optional; a nil field disables that part.
// Service is safe for concurrent use.
type Service struct {
	Analyzer  Analyzer
	Repo      analyst.Repository
	Artifacts analyst.ArtifactStore
	Failures  failures.Repository
	Clock     application.Clock
	Metrics   Recorder
	Logger    *zap.Logger
}

func NewService(analyzer Analyzer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		Analyzer: analyzer,
		Clock:    application.SystemClock{},
		Metrics:  nopRecorder{},
		Logger:   logger,
	}
}

// Analyze runs the pipeline and archives a successful result. Archive errors
// are logged; they never void a complete result. On failure the returned
// error is a *FailedError matching analysis.ErrAnalysisFailed (and
// analysis.ErrEmptyCode for an empty submission).
func (s *Service) Analyze(ctx context.Context, tenant, code, language string) (*analyst.Analysis, error) {
	id := uuid.NewString()
	log := s.Logger.With(zap.String("analysis_id", id), zap.String("tenant", tenant))
	ctx = logging.WithContext(ctx, log)

	start := s.Clock.Now()
	s.recorder().AnalysisStarted()
	out := s.Analyzer.Analyze(ctx, code, language)
	elapsed := s.Clock.Now().Sub(start)
	s.recorder().AnalysisFinished(out.OK(), elapsed)

	res, ok := out.Result()
	if !ok {
		s.recordFailure(context.WithoutCancel(ctx), log, tenant, id, out.Err())
		return nil, &FailedError{ID: id, Err: out.Err()}
	}

	a := &analyst.Analysis{
		ID:         analyst.AnalysisID(id),
		TenantID:   tenant,
		Language:   analysis.NormalizeLanguage(language),
		CodeHash:   hashCode(code),
		Counts:     analysis.CountSeverities(res.Bugs.Bugs),
		Result:     res,
		Provider:   s.Analyzer.Backend(),
		DurationMS: elapsed.Milliseconds(),
		CreatedAt:  start,
	}
	s.archive(context.WithoutCancel(ctx), log, a)
	return a, nil
}

func (s *Service) archive(ctx context.Context, log *zap.Logger, a *analyst.Analysis) {
	if s.Artifacts != nil {
		body, err := json.MarshalIndent(a.Result, "", "  ")
		if err == nil {
			key := fmt.Sprintf("%s/analyses/%s.json", a.TenantID, a.ID)
			a.ReportURL, err = s.Artifacts.Put(ctx, key, body, "application/json")
		}
		if err != nil {
			log.Warn("report upload failed", zap.Error(err))
		}
	}
	if s.Repo != nil {
		if err := s.Repo.Save(ctx, a); err != nil {
			log.Warn("analysis not archived", zap.Error(err))
		}
	}
}

func (s *Service) recordFailure(ctx context.Context, log *zap.Logger, tenant, id string, cause error) {
	if s.Failures == nil || cause == nil {
		return
	}
	f := &failures.Failure{
		TenantID:   tenant,
		AnalysisID: id,
		Message:    cause.Error(),
		CreatedAt:  s.Clock.Now(),
	}
	var aerr *analysis.AnalysisError
	if errors.As(cause, &aerr) {
		f.Stage = aerr.Stage
		f.Producer = aerr.Producer
	}
	var gerr *analysis.GenerationError
	if errors.As(cause, &gerr) {
		f.Kind = gerr.Kind
	}
	if err := s.Failures.Save(ctx, f); err != nil {
		log.Warn("failure not recorded", zap.Error(err))
	}
}

func (s *Service) List(ctx context.Context, tenant string, page, pageSize int) ([]*analyst.Analysis, error) {
	if s.Repo == nil {
		return nil, ErrArchiveDisabled
	}
	return s.Repo.Paginate(ctx, tenant, page, pageSize)
}

func (s *Service) Get(ctx context.Context, tenant string, id analyst.AnalysisID) (*analyst.Analysis, error) {
	if s.Repo == nil {
		return nil, ErrArchiveDisabled
	}
	return s.Repo.Get(ctx, tenant, id)
}

// ListFailures returns the diagnostic rows recorded for one analysis id.
func (s *Service) ListFailures(ctx context.Context, tenant, analysisID string, limit int) ([]*failures.Failure, error) {
	if s.Failures == nil {
		return nil, ErrArchiveDisabled
	}
	return s.Failures.ListByAnalysis(ctx, tenant, analysisID, limit)
}

func (s *Service) Summary(ctx context.Context, tenant string, days int) (analyst.Summary, error) {
	if s.Repo == nil {
		return analyst.Summary{}, ErrArchiveDisabled
	}
	return s.Repo.Summary(ctx, tenant, days)
}

func (s *Service) recorder() Recorder {
	if s.Metrics == nil {
		return nopRecorder{}
	}
	return s.Metrics
}

func hashCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}
