package analysis

// Outcome is Success(AnalysisResult) or Failure(reason). The reason is for
// logs only; callers present a single generic failure state.
type Outcome struct {
	result *AnalysisResult
	err    error
}

func Success(r AnalysisResult) Outcome {
	r.Normalize()
	return Outcome{result: &r}
}

func Failure(err error) Outcome {
	if err == nil {
		err = ErrAnalysisFailed
	}
	return Outcome{err: err}
}

// OK reports whether the outcome carries a complete result.
func (o Outcome) OK() bool { return o.result != nil }

// Result returns the aggregate and true on success.
func (o Outcome) Result() (AnalysisResult, bool) {
	if o.result == nil {
		return AnalysisResult{}, false
	}
	return *o.result, true
}

// Err returns the failure reason, nil on success.
func (o Outcome) Err() error { return o.err }
