package dto

import (
	"fmt"
	"time"

	"golang-filing-scryper/internal/entity"
)

// Stage names the pipeline step that rejected an event.
type Stage string

const (
	StageLock    Stage = "lock"
	StageLoad    Stage = "load"
	StageFeed    Stage = "feed"
	StageResolve Stage = "resolve"
	StageFetch   Stage = "fetch"
	StageExtract Stage = "extract"
	StageAnalyze Stage = "analyze"
	StagePersist Stage = "persist"
	// StageInternal marks an entity whose processing panicked.
	StageInternal Stage = "internal"
)

// StageFailure records one skipped item with enough context to debug it.
type StageFailure struct {
	Stage  Stage  `json:"stage"`
	Ticker string `json:"ticker"`
	Date   string `json:"date,omitempty"`
	URL    string `json:"url,omitempty"`
	Error  string `json:"error"`
}

// StageError is the error form of a StageFailure.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// EntityReport summarises one ticker's part of a run.
type EntityReport struct {
	Ticker     string         `json:"ticker"`
	Code       string         `json:"code"`
	Events     int            `json:"events"`
	Duplicates int            `json:"duplicates"`
	Appended   int            `json:"appended"`
	Failures   []StageFailure `json:"failures,omitempty"`

	Records []entity.FilingRecord `json:"-"`
}

// RunReport summarises a whole ingestion run.
type RunReport struct {
	RunID       string         `json:"run_id"`
	Window      Window         `json:"-"`
	StartedAt   time.Time      `json:"started_at"`
	CompletedAt time.Time      `json:"completed_at"`
	NewRecords  int            `json:"new_records"`
	Entities    []EntityReport `json:"entities"`
	Cancelled   bool           `json:"cancelled"`
}

// Failures flattens the per-entity failures.
func (r *RunReport) Failures() []StageFailure {
	var out []StageFailure
	for _, e := range r.Entities {
		out = append(out, e.Failures...)
	}
	return out
}

// StatusMessage is the terminal status line of a run.
func (r *RunReport) StatusMessage() string {
	return fmt.Sprintf("Done: %d new filings.", r.NewRecords)
}
