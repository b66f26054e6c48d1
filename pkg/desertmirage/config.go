package desertmirage

import (
	"strings"

	"github.com/himanishpuri/DesertMirage/internal/ivs"
	"github.com/himanishpuri/DesertMirage/internal/model"
)

const DefaultDBFile = "desertmirage.sqlite3"

// Config holds the run settings. Field tags are the keys of the run file.
type Config struct {
	DBPath          string  `koanf:"db_path"`
	SeedFile        string  `koanf:"seed_file"`
	TestID          string  `koanf:"test_id"`
	SurveyType      string  `koanf:"survey_type"`
	SingleCoilIDs   string  `koanf:"single_coil_ids"`
	TowedArrayIDs   string  `koanf:"towed_array_ids"`
	MajorAxis       string  `koanf:"major_axis"`
	ResponseChannel string  `koanf:"response_channel"`
	Units           string  `koanf:"units"`
	LaneWidth       float64 `koanf:"lane_width"`
	SeedRadius      float64 `koanf:"seed_radius"`
	MinResponse     float64 `koanf:"min_response"`
	MaxRelativeDiff float64 `koanf:"max_relative_diff"`
	Workers         int     `koanf:"workers"`

	SeedItems []model.SeedItem `koanf:"-"`
	Logger    Logger           `koanf:"-"`
	Storage   Storage          `koanf:"-"`
}

type Option func(*Config)

// WithConfig replaces the run settings with a copy of c. Apply it before
// other options.
func WithConfig(c *Config) Option {
	return func(dst *Config) {
		*dst = *c
	}
}

func WithDBPath(path string) Option {
	return func(c *Config) {
		c.DBPath = path
	}
}

func WithWorkers(n int) Option {
	return func(c *Config) {
		c.Workers = n
	}
}

// WithSeedItems supplies the seed table directly instead of reading SeedFile.
func WithSeedItems(items []model.SeedItem) Option {
	return func(c *Config) {
		c.SeedItems = items
	}
}

func WithLogger(log Logger) Option {
	return func(c *Config) {
		c.Logger = log
	}
}

func WithStorage(storage Storage) Option {
	return func(c *Config) {
		c.Storage = storage
	}
}

func defaultConfig() *Config {
	return &Config{
		DBPath:          DefaultDBFile,
		SurveyType:      model.SurveyTowedArray.String(),
		TowedArrayIDs:   "01,02,03",
		MajorAxis:       model.AxisX.String(),
		Units:           model.UnitsMeters.String(),
		LaneWidth:       2.0,
		SeedRadius:      0.5,
		MinResponse:     20,
		MaxRelativeDiff: 0.5,
		Workers:         4,
	}
}

// DefaultConfig returns the settings used when a run file leaves a key out.
func DefaultConfig() Config {
	return *defaultConfig()
}

// Validate checks the run settings. Every failure is a *model.ConfigError.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.TestID) == "" {
		return model.NewConfigError("test_id", "must not be empty")
	}
	survey, err := model.ParseSurveyType(c.SurveyType)
	if err != nil {
		return model.NewConfigError("survey_type", "%v", err)
	}
	if survey != model.SurveyTowedArray && len(splitIDs(c.SingleCoilIDs)) == 0 {
		return model.NewConfigError("single_coil_ids", "required for a %s survey", survey)
	}
	if survey != model.SurveySingleCoil && len(splitIDs(c.TowedArrayIDs)) == 0 {
		return model.NewConfigError("towed_array_ids", "required for a %s survey", survey)
	}
	if _, err := model.ParseAxis(c.MajorAxis); err != nil {
		return model.NewConfigError("major_axis", "%v", err)
	}
	if _, err := model.ParseUnits(c.Units); err != nil {
		return model.NewConfigError("units", "%v", err)
	}
	if strings.TrimSpace(c.ResponseChannel) == "" {
		return model.NewConfigError("response_channel", "must not be empty")
	}
	if c.LaneWidth <= 0 {
		return model.NewConfigError("lane_width", "must be positive, got %v", c.LaneWidth)
	}
	if c.SeedRadius <= 0 {
		return model.NewConfigError("seed_radius", "must be positive, got %v", c.SeedRadius)
	}
	if c.MinResponse < 0 {
		return model.NewConfigError("min_response", "must not be negative, got %v", c.MinResponse)
	}
	if c.MaxRelativeDiff <= 0 || c.MaxRelativeDiff > 1 {
		return model.NewConfigError("max_relative_diff", "must be in (0, 1], got %v", c.MaxRelativeDiff)
	}
	if c.Workers < 1 {
		return model.NewConfigError("workers", "must be at least 1, got %d", c.Workers)
	}
	return nil
}

// Survey returns the parsed survey type. Call Validate first.
func (c *Config) Survey() model.SurveyType {
	s, _ := model.ParseSurveyType(c.SurveyType)
	return s
}

func (c *Config) axis() model.Axis {
	a, _ := model.ParseAxis(c.MajorAxis)
	return a
}

func (c *Config) unitScale() float64 {
	if u, _ := model.ParseUnits(c.Units); u == model.UnitsFeet {
		return model.FeetPerMeter
	}
	return 1
}

// Params resolves the analysis parameters, converting the seed radius to the
// positioning units of the survey data.
func (c *Config) Params() ivs.Params {
	return ivs.Params{
		Axis:                  c.axis(),
		MaskRadius:            c.SeedRadius * c.unitScale(),
		Channel:               strings.TrimSpace(c.ResponseChannel),
		MinResponse:           c.MinResponse,
		MaxRelativeDifference: c.MaxRelativeDiff,
	}
}

// LaneThreshold is half the lane width in positioning units.
func (c *Config) LaneThreshold() float64 {
	return c.LaneWidth / 2 * c.unitScale()
}

// TowedIDs returns the configured towed-array sensor IDs.
func (c *Config) TowedIDs() []string {
	return splitIDs(c.TowedArrayIDs)
}

// SensorIDs lists the sensors to analyse: the single-coil IDs, followed by the
// towed-array IDs unless the survey is single-coil only. Duplicates are
// dropped.
func (c *Config) SensorIDs() []string {
	ids := splitIDs(c.SingleCoilIDs)
	if c.Survey() != model.SurveySingleCoil {
		ids = append(ids, c.TowedIDs()...)
	}

	seen := make(map[string]bool, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// SensorKind classifies id. A sensor is a towed-array sensor when the survey
// deploys towed arrays and id is one of the towed-array IDs.
func (c *Config) SensorKind(id string) model.SensorKind {
	if c.Survey() == model.SurveySingleCoil {
		return model.SensorSingleCoil
	}
	for _, t := range c.TowedIDs() {
		if t == id {
			return model.SensorTowedArray
		}
	}
	return model.SensorSingleCoil
}

func splitIDs(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
