package desertmirage

import (
	"github.com/himanishpuri/DesertMirage/internal/model"
	"github.com/himanishpuri/DesertMirage/pkg/desertmirage/storage"
)

// ErrRunNotFound is returned by Storage lookups for an unknown run ID.
var ErrRunNotFound = storage.ErrRunNotFound

// storageAdapter adapts the storage.DBClient to implement the Storage interface.
type storageAdapter struct {
	db *storage.DBClient
}

// NewSQLiteStorage opens (or creates) the sqlite result store at dbPath.
func NewSQLiteStorage(dbPath string) (Storage, error) {
	db, err := storage.NewDBClientWithPath(dbPath)
	if err != nil {
		return nil, err
	}
	return &storageAdapter{db: db}, nil
}

func (s *storageAdapter) SaveRun(report *RunReport) (int, error) {
	r := report.Run
	run := &storage.Run{
		ID:         r.ID,
		TestID:     r.TestID,
		SurveyType: r.SurveyType,
		Channel:    r.Channel,
		Files:      r.Files,
		Units:      r.Units,
		Records:    r.Records,
		CreatedAt:  r.CreatedAt,
	}

	daily := make([]storage.DailyResult, len(report.Records))
	for i, rec := range report.Records {
		daily[i] = storage.DailyResult{
			Filename:   rec.Filename,
			Date:       rec.Date,
			AMPM:       rec.AMPM,
			TestItemID: rec.TestItemID,
			SensorID:   rec.SensorID,
			Pass:       rec.Pass.Suffix(),
			TestID:     rec.TestID,
			Response:   rec.Response,
			X:          rec.X,
			Y:          rec.Y,
			Offset:     rec.Offset,
			Channel:    rec.Channel,
		}
	}

	items := make([]storage.SeedTestItem, len(report.SeedTestItems))
	for i, it := range report.SeedTestItems {
		items[i] = storage.SeedTestItem{
			TestItemID:  it.TestItemID,
			SensorID:    it.SensorID,
			Date:        it.Date,
			Offset:      it.Offset,
			TrueX:       it.TrueX,
			TrueY:       it.TrueY,
			Placement:   it.Placement.String(),
			Orientation: it.Orientation,
			Inclination: it.Inclination,
		}
	}

	standard := make([]storage.StandardValue, len(report.StandardValues))
	for i, sv := range report.StandardValues {
		standard[i] = storage.StandardValue{
			SensorID:     sv.SensorID,
			TestItemID:   sv.TestItemID,
			MeanResponse: sv.MeanResponse,
			MeanOffset:   sv.MeanOffset,
			Count:        sv.Count,
		}
	}

	return s.db.SaveRun(run, daily, items, standard)
}

func (s *storageAdapter) ListRuns() ([]Run, error) {
	rows, err := s.db.ListRuns()
	if err != nil {
		return nil, err
	}
	runs := make([]Run, len(rows))
	for i, r := range rows {
		runs[i] = toRun(r)
	}
	return runs, nil
}

func (s *storageAdapter) GetRun(runID string) (*Run, error) {
	r, err := s.db.GetRun(runID)
	if err != nil {
		return nil, err
	}
	run := toRun(*r)
	return &run, nil
}

func (s *storageAdapter) DailyResults(runID string) ([]model.DynamicResponseRecord, error) {
	rows, err := s.db.DailyResults(runID)
	if err != nil {
		return nil, err
	}
	out := make([]model.DynamicResponseRecord, len(rows))
	for i, r := range rows {
		pass := model.PassForward
		if r.Pass == model.PassBackward.Suffix() {
			pass = model.PassBackward
		}
		out[i] = model.DynamicResponseRecord{
			Filename:   r.Filename,
			Pass:       pass,
			Date:       r.Date,
			AMPM:       r.AMPM,
			SensorID:   r.SensorID,
			TestItemID: r.TestItemID,
			TestID:     r.TestID,
			Response:   r.Response,
			X:          r.X,
			Y:          r.Y,
			Offset:     r.Offset,
			Channel:    r.Channel,
		}
	}
	return out, nil
}

func (s *storageAdapter) SeedTestItems(runID string) ([]model.SeedTestItem, error) {
	rows, err := s.db.SeedTestItems(runID)
	if err != nil {
		return nil, err
	}
	out := make([]model.SeedTestItem, len(rows))
	for i, r := range rows {
		out[i] = model.SeedTestItem{
			TestItemID:  r.TestItemID,
			SensorID:    r.SensorID,
			Date:        r.Date,
			Offset:      r.Offset,
			TrueX:       r.TrueX,
			TrueY:       r.TrueY,
			Placement:   model.ParsePlacement(r.Placement),
			Orientation: r.Orientation,
			Inclination: r.Inclination,
		}
	}
	return out, nil
}

func (s *storageAdapter) StandardValues(runID string) ([]model.StandardValue, error) {
	rows, err := s.db.StandardValues(runID)
	if err != nil {
		return nil, err
	}
	out := make([]model.StandardValue, len(rows))
	for i, r := range rows {
		out[i] = model.StandardValue{
			SensorID:     r.SensorID,
			TestItemID:   r.TestItemID,
			MeanResponse: r.MeanResponse,
			MeanOffset:   r.MeanOffset,
			Count:        r.Count,
		}
	}
	return out, nil
}

func (s *storageAdapter) Close() error {
	return s.db.Close()
}

func toRun(r storage.Run) Run {
	return Run{
		ID:         r.ID,
		CreatedAt:  r.CreatedAt,
		TestID:     r.TestID,
		SurveyType: r.SurveyType,
		Channel:    r.Channel,
		Files:      r.Files,
		Units:      r.Units,
		Records:    r.Records,
		Inserted:   r.Inserted,
	}
}
