package desertmirage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/himanishpuri/DesertMirage/internal/ingest"
	"github.com/himanishpuri/DesertMirage/internal/ivs"
	"github.com/himanishpuri/DesertMirage/internal/linename"
	"github.com/himanishpuri/DesertMirage/internal/model"
	"github.com/himanishpuri/DesertMirage/pkg/logger"
)

// desertService is the default implementation of the Service interface.
type desertService struct {
	storage Storage
	log     Logger
	config  *Config
	seeds   []model.SeedItem
	params  ivs.Params
}

// NewService validates the configuration, loads the seed table and opens the
// result store. Configuration problems are returned as *model.ConfigError.
func NewService(opts ...Option) (Service, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Logger == nil {
		cfg.Logger = logger.GetLogger()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	items := cfg.SeedItems
	if items == nil {
		if cfg.SeedFile == "" {
			return nil, model.NewConfigError("seed_file", "required when no seed items are supplied")
		}
		var err error
		items, err = ingest.ReadSeedsFile(cfg.SeedFile)
		if err != nil {
			return nil, err
		}
	}
	if len(items) == 0 {
		cfg.Logger.Warnf("Seed table is empty")
	}

	var stor Storage
	var err error
	if cfg.Storage != nil {
		stor = cfg.Storage
	} else {
		stor, err = NewSQLiteStorage(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage: %w", err)
		}
	}

	return &desertService{
		storage: stor,
		log:     cfg.Logger,
		config:  cfg,
		seeds:   items,
		params:  cfg.Params(),
	}, nil
}

type fileSlot struct {
	units   []UnitResult
	dropped int
}

// Analyze processes every file as independent (file, sensor) units, stores the
// run and returns its report. Files are read in parallel; the report keeps
// input order. A cancelled context aborts the run and nothing is stored.
func (s *desertService) Analyze(ctx context.Context, files []string) (*RunReport, error) {
	if len(files) == 0 {
		return nil, model.NewConfigError("files", "no input files")
	}

	run := Run{
		ID:         uuid.NewString(),
		CreatedAt:  time.Now().UTC(),
		TestID:     s.config.TestID,
		SurveyType: s.config.Survey().String(),
		Channel:    s.params.Channel,
		Files:      len(files),
	}
	s.log.Infof("Starting run %s over %d files", run.ID, len(files))

	slots := make([]fileSlot, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Workers)
	for i, path := range files {
		g.Go(func() error {
			units, dropped, err := s.analyzeFile(gctx, path)
			if err != nil {
				return err
			}
			slots[i] = fileSlot{units: units, dropped: dropped}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("run %s: %w", run.ID, err)
	}

	report := &RunReport{Run: run}
	for _, slot := range slots {
		report.Units = append(report.Units, slot.units...)
		report.Dropped += slot.dropped
	}
	for _, u := range report.Units {
		report.Records = append(report.Records, u.Records...)
	}
	report.StandardValues = ivs.Summarize(report.Records)
	report.SeedTestItems = ivs.SeedTable(report.Records, s.seeds, s.params.Axis)
	report.Run.Units = len(report.Units)
	report.Run.Records = len(report.Records)

	s.logReport(report)

	inserted, err := s.storage.SaveRun(report)
	if err != nil {
		return nil, fmt.Errorf("failed to store run %s: %w", run.ID, err)
	}
	report.Run.Inserted = inserted
	s.log.Infof("Stored run %s: %d new daily results", run.ID, inserted)

	return report, nil
}

// AnalyzeFile processes one file without storing anything.
func (s *desertService) AnalyzeFile(ctx context.Context, path string) ([]UnitResult, error) {
	units, _, err := s.analyzeFile(ctx, path)
	return units, err
}

func (s *desertService) analyzeFile(ctx context.Context, path string) ([]UnitResult, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	ts, err := ingest.ReadTracksFile(path, s.params.Channel)
	if err != nil {
		if model.IsDataQuality(err) {
			s.log.Warnw("skipping file", "file", path, "error", err)
			return []UnitResult{{File: path, Err: err}}, 0, nil
		}
		return nil, 0, err
	}
	if ts.Dropped > 0 {
		s.log.Warnw("dropped invalid rows", "file", path, "rows", ts.Dropped)
	}

	var units []UnitResult
	for _, sensor := range s.config.SensorIDs() {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		u, err := s.analyzeSensor(ts, sensor)
		if err != nil {
			return nil, 0, err
		}
		units = append(units, u)
	}
	return units, ts.Dropped, nil
}

// analyzeSensor runs one (file, sensor) unit. A line whose name cannot be
// decoded skips the whole unit.
func (s *desertService) analyzeSensor(ts ingest.TrackSet, sensor string) (UnitResult, error) {
	u := UnitResult{File: ts.Name, SensorID: sensor, Kind: s.config.SensorKind(sensor)}
	unit := ts.Name + "/" + sensor

	lines, err := linename.SelectLines(ts.Lines(), sensor, s.config.TestID, s.config.TowedIDs())
	if err != nil {
		return u, err
	}
	if len(lines) == 0 {
		u.Err = model.NewDataQualityError(unit, model.ErrNoSensorLines)
		s.log.Debugf("No %s lines for sensor %s in %s", s.config.TestID, sensor, ts.Name)
		return u, nil
	}
	u.Lines = lines

	survey := s.config.Survey()
	threshold := s.config.LaneThreshold()
	for _, line := range lines {
		meta, err := linename.Decode(line, sensor, survey, s.config.TestID)
		if err != nil {
			s.log.Warnw("skipping unit", "file", ts.Name, "sensor", sensor, "error", err)
			return UnitResult{File: u.File, SensorID: sensor, Kind: u.Kind, Lines: lines, Err: model.NewDataQualityError(unit, err)}, nil
		}

		track, _ := ts.Track(line)
		res, err := ivs.ProcessTrack(withMeta(track, meta), s.seeds, threshold, u.Kind, s.params)
		if err != nil {
			return u, fmt.Errorf("%s: %w", unit, err)
		}

		for _, o := range res.Outcomes {
			if o.Outcome == model.OutcomeReject {
				s.log.Debugf("%s: seed %s rejected on line %s", unit, o.TestItemID, line)
			}
		}
		u.Tracks = append(u.Tracks, res)
		u.Records = append(u.Records, res.Records...)
		u.Warnings = append(u.Warnings, res.Warnings...)
	}

	for _, w := range u.Warnings {
		s.log.Warnw("pass skipped", "file", ts.Name, "sensor", sensor, "error", w)
	}
	return u, nil
}

func (s *desertService) logReport(r *RunReport) {
	active := 0
	for _, u := range r.Units {
		active += len(u.ActiveSeeds())
	}
	if active == 0 {
		s.log.Warnf("No seed items found in data provided.")
	}

	outcomes := r.Outcomes()
	s.log.Infow("run complete",
		"run", r.Run.ID,
		"units", len(r.Units),
		"skipped", len(r.Skipped()),
		"records", len(r.Records),
		"accept_both", outcomes[model.OutcomeAcceptBoth],
		"accept_forward", outcomes[model.OutcomeAcceptForward],
		"accept_backward", outcomes[model.OutcomeAcceptBackward],
		"rejected", outcomes[model.OutcomeReject],
		"dropped_rows", r.Dropped,
	)
}

func (s *desertService) SeedItems() []model.SeedItem {
	return s.seeds
}

func (s *desertService) ListRuns() ([]Run, error) {
	return s.storage.ListRuns()
}

func (s *desertService) GetRun(runID string) (*Run, error) {
	return s.storage.GetRun(runID)
}

func (s *desertService) Results(runID string) ([]model.DynamicResponseRecord, error) {
	return s.storage.DailyResults(runID)
}

func (s *desertService) SeedTestItems(runID string) ([]model.SeedTestItem, error) {
	return s.storage.SeedTestItems(runID)
}

func (s *desertService) StandardValues(runID string) ([]model.StandardValue, error) {
	return s.storage.StandardValues(runID)
}

func (s *desertService) Close() error {
	return s.storage.Close()
}

func withMeta(t model.Track, meta model.LineMeta) model.Track {
	samples := make([]model.Sample, len(t.Samples))
	for i, smp := range t.Samples {
		smp.Meta = meta
		samples[i] = smp
	}
	return model.Track{Line: t.Line, Samples: samples}
}
