package analysis

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCode is a caller contract violation: nothing to analyze.
	ErrEmptyCode = errors.New("code is empty")

	// ErrGeneration covers transport and backend failures of a generation call.
	ErrGeneration = errors.New("generation failed")

	// ErrSchemaValidation means the backend answered with data that does not
	// conform to the requested output shape.
	ErrSchemaValidation = errors.New("generated output does not match schema")

	// ErrAnalysisFailed is the single failure kind the caller ever sees.
	ErrAnalysisFailed = errors.New("analysis failed")
)

// Failure kinds of a single generation call.
const (
	KindGeneration = "generation"
	KindSchema     = "schema"
)

// GenerationError is the failure of one structured generation call.
type GenerationError struct {
	Prompt string
	Kind   string
	Err    error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s: %s failure: %v", e.Prompt, e.Kind, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

func (e *GenerationError) Is(target error) bool {
	switch target {
	case ErrGeneration:
		return e.Kind == KindGeneration
	case ErrSchemaValidation:
		return e.Kind == KindSchema
	}
	return false
}

// Pipeline stages an analysis can fail in.
const (
	StageValidation = "validation"
	StageFirst      = "first-stage"
	StageSynthesis  = "synthesis"
)

// AnalysisError collapses any producer failure into ErrAnalysisFailed while
// keeping the stage and producer for diagnostics.
type AnalysisError struct {
	Stage    string
	Producer string
	Err      error
}

func (e *AnalysisError) Error() string {
	if e.Producer == "" {
		return fmt.Sprintf("analysis failed at %s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("analysis failed at %s (%s): %v", e.Stage, e.Producer, e.Err)
}

func (e *AnalysisError) Unwrap() error { return e.Err }

func (e *AnalysisError) Is(target error) bool { return target == ErrAnalysisFailed }
