package desertmirage

import (
	"context"

	"github.com/himanishpuri/DesertMirage/internal/model"
)

type Service interface {
	Analyze(ctx context.Context, files []string) (*RunReport, error)
	AnalyzeFile(ctx context.Context, path string) ([]UnitResult, error)
	SeedItems() []model.SeedItem
	ListRuns() ([]Run, error)
	GetRun(runID string) (*Run, error)
	Results(runID string) ([]model.DynamicResponseRecord, error)
	SeedTestItems(runID string) ([]model.SeedTestItem, error)
	StandardValues(runID string) ([]model.StandardValue, error)
	Close() error
}

// Storage persists completed runs. SaveRun returns the number of daily result
// rows that were new to the store.
type Storage interface {
	SaveRun(report *RunReport) (int, error)
	ListRuns() ([]Run, error)
	GetRun(runID string) (*Run, error)
	DailyResults(runID string) ([]model.DynamicResponseRecord, error)
	SeedTestItems(runID string) ([]model.SeedTestItem, error)
	StandardValues(runID string) ([]model.StandardValue, error)
	Close() error
}

type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Debugf(format string, args ...any)
	Infow(msg string, kv ...any)
	Warnw(msg string, kv ...any)
}
