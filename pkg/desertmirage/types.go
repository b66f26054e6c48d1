package desertmirage

import (
	"time"

	"github.com/himanishpuri/DesertMirage/internal/ivs"
	"github.com/himanishpuri/DesertMirage/internal/model"
)

// Run describes one Analyze call.
type Run struct {
	ID         string    // UUID
	CreatedAt  time.Time // UTC
	TestID     string
	SurveyType string
	Channel    string
	Files      int // input files
	Units      int // (file, sensor) units analysed
	Records    int // accepted dynamic response records
	Inserted   int // records new to the store
}

// UnitResult is the outcome of one (file, sensor) unit. A unit with a non-nil
// Err was skipped and carries no records.
type UnitResult struct {
	File     string
	SensorID string
	Kind     model.SensorKind
	Lines    []string // selected lines, in file order
	Tracks   []ivs.TrackResult
	Records  []model.DynamicResponseRecord
	Warnings []error
	Err      error
}

func (u UnitResult) Skipped() bool {
	return u.Err != nil
}

// ActiveSeeds returns the distinct seeds active on any track of the unit.
func (u UnitResult) ActiveSeeds() []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range u.Tracks {
		for _, id := range t.ActiveSeeds {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out
}

// RunReport is everything produced by a run, in input order.
type RunReport struct {
	Run            Run
	Units          []UnitResult
	Records        []model.DynamicResponseRecord
	SeedTestItems  []model.SeedTestItem
	StandardValues []model.StandardValue
	Dropped        int // invalid CSV rows across all files
}

// Outcomes counts reconciliation outcomes across the run.
func (r *RunReport) Outcomes() map[model.Outcome]int {
	counts := make(map[model.Outcome]int)
	for _, u := range r.Units {
		for _, t := range u.Tracks {
			for _, o := range t.Outcomes {
				counts[o.Outcome]++
			}
		}
	}
	return counts
}

// Skipped returns the units that were skipped.
func (r *RunReport) Skipped() []UnitResult {
	var out []UnitResult
	for _, u := range r.Units {
		if u.Skipped() {
			out = append(out, u)
		}
	}
	return out
}
