package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// RawInput is the immutable request payload: a location (free text or a
// "lat, lon" pair) and a user profile (a known profile name or free text).
// AllMetrics bypasses intent-based selection and computes the full catalog.
type RawInput struct {
	Location   string `json:"location"`
	Profile    string `json:"profile"`
	AllMetrics bool   `json:"all_metrics,omitempty"`
}

// Coordinates is a WGS84 latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether the pair is inside the legal coordinate ranges.
func (c Coordinates) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

func (c Coordinates) String() string {
	return fmt.Sprintf("(%.4f, %.4f)", c.Lat, c.Lon)
}

// ParseCoordinates attempts to parse s as a "lat, lon" pair. ok is false
// when s is not in coordinate form; err is non-nil only when s looks like
// coordinates but the values are out of range.
func ParseCoordinates(s string) (Coordinates, bool, error) {
	parts := strings.Split(strings.ReplaceAll(s, " ", ""), ",")
	if len(parts) != 2 {
		return Coordinates{}, false, nil
	}
	lat, err1 := strconv.ParseFloat(parts[0], 64)
	lon, err2 := strconv.ParseFloat(parts[1], 64)
	if err1 != nil || err2 != nil {
		return Coordinates{}, false, nil
	}
	c := Coordinates{Lat: lat, Lon: lon}
	if !c.Valid() {
		return Coordinates{}, true, fmt.Errorf("coordinates out of range: %s", s)
	}
	return c, true, nil
}

// UserIntent is the structured intent extracted from the profile text.
type UserIntent struct {
	ProfileType string   `json:"profile_type"`
	Priorities  []string `json:"priorities"`
	Concerns    []string `json:"concerns"`
	Lifestyle   string   `json:"lifestyle"`
	Reasoning   string   `json:"reasoning,omitempty"`
}

// Statistics maps metric id to a computed value. A nil value records an
// absent feature or an isolated computation failure.
type Statistics map[string]*float64

// Value is a convenience accessor returning (0, false) for nil entries.
func (s Statistics) Value(id string) (float64, bool) {
	v, ok := s[id]
	if !ok || v == nil {
		return 0, false
	}
	return *v, true
}

// StepOutcome records how a workflow stage finished.
type StepOutcome string

const (
	StepSuccess StepOutcome = "success"
	StepFailed  StepOutcome = "failed"
	StepSkipped StepOutcome = "skipped"
	StepDegrade StepOutcome = "degraded"
)

// StepRecord is one entry in the per-request audit trail.
type StepRecord struct {
	Stage    string        `json:"stage"`
	Outcome  StepOutcome   `json:"outcome"`
	Detail   string        `json:"detail,omitempty"`
	Duration time.Duration `json:"duration_ns"`
}

// AnalysisState is the mutable record threaded through one workflow run.
// It is owned exclusively by the workflow engine for the duration of the run
// and is never shared across concurrent requests.
type AnalysisState struct {
	Input       RawInput
	Coordinates *Coordinates
	Address     string

	UserIntent        *UserIntent
	SelectedMetricIDs []string

	RawPOIRecords   []POIRecord
	CleanPOIRecords []POIRecord

	Statistics Statistics
	Summary    string

	Warnings []string
	Steps    []StepRecord

	// Err is the terminal failure, if any. Once set, no further stage
	// mutates the state except the error-handling exit.
	Err *StageError
}

// AddWarning appends a non-fatal diagnostic.
func (s *AnalysisState) AddWarning(format string, args ...any) {
	s.Warnings = append(s.Warnings, fmt.Sprintf(format, args...))
}

// Record appends an audit-trail entry.
func (s *AnalysisState) Record(stage string, outcome StepOutcome, d time.Duration, detail string) {
	s.Steps = append(s.Steps, StepRecord{Stage: stage, Outcome: outcome, Detail: detail, Duration: d})
}

// Failed reports whether a terminal error has been recorded.
func (s *AnalysisState) Failed() bool { return s.Err != nil }

// Fail records the terminal error if none is set yet and returns it.
func (s *AnalysisState) Fail(err *StageError) *StageError {
	if s.Err == nil {
		s.Err = err
	}
	return s.Err
}
