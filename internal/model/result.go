package model

// MetricValue pairs a computed value with catalog metadata so callers can
// render output without reaching into internal state.
type MetricValue struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Unit     string   `json:"unit"`
	Value    *float64 `json:"value"`
}

// ErrorDescriptor is the caller-facing failure surface: a stable kind and a
// human-readable message, never a raw collaborator error.
type ErrorDescriptor struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// AnalysisResult is the terminal output of one workflow run: either a
// completed snapshot, or an error descriptor plus whatever partial data was
// computed before the failure.
type AnalysisResult struct {
	RunID string `json:"run_id,omitempty"`

	Summary           string        `json:"summary,omitempty"`
	Statistics        []MetricValue `json:"statistics,omitempty"`
	Coordinates       *Coordinates  `json:"coordinates,omitempty"`
	Address           string        `json:"address,omitempty"`
	SelectedMetricIDs []string      `json:"selected_metric_ids,omitempty"`
	UserIntent        *UserIntent   `json:"user_intent,omitempty"`

	Warnings []string     `json:"warnings,omitempty"`
	Steps    []StepRecord `json:"steps,omitempty"`

	Error *ErrorDescriptor `json:"error,omitempty"`
}

// OK reports whether the run completed without a terminal error.
func (r *AnalysisResult) OK() bool { return r.Error == nil }
