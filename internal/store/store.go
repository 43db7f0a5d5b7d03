// Package store persists analysis runs.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/equity-cli/internal/model"
)

// ErrRunNotFound is returned when no run exists for the requested id.
var ErrRunNotFound = eris.New("store: run not found")

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Ticker string          `json:"ticker,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for analysis runs.
type Store interface {
	CreateRun(ctx context.Context, profile model.CompanyProfile) (*model.Run, error)
	CompleteRun(ctx context.Context, runID string, result *model.AnalysisResult, rec model.Recommendation) error
	FailRun(ctx context.Context, runID string, reason string) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	Migrate(ctx context.Context) error
	Close() error
}
