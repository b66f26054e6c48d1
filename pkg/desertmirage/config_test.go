package desertmirage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/himanishpuri/DesertMirage/internal/model"
)

func validConfig() *Config {
	c := defaultConfig()
	c.TestID = "IVS"
	c.ResponseChannel = "Ch1"
	return c
}

func TestDefaultConfigNeedsRunKeys(t *testing.T) {
	c := DefaultConfig()
	assert.Equal(t, DefaultDBFile, c.DBPath)
	assert.Equal(t, 4, c.Workers)
	assert.Equal(t, 20.0, c.MinResponse)
	assert.Equal(t, 0.5, c.MaxRelativeDiff)

	err := c.Validate()
	require.Error(t, err)
	assert.True(t, model.IsConfig(err))

	assert.NoError(t, validConfig().Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"empty test id", func(c *Config) { c.TestID = " " }, "test_id"},
		{"unknown survey", func(c *Config) { c.SurveyType = "drone" }, "survey_type"},
		{"single coil without ids", func(c *Config) { c.SurveyType = "Single Coil" }, "single_coil_ids"},
		{"mixed without ids", func(c *Config) { c.SurveyType = "Mixed" }, "single_coil_ids"},
		{"towed without ids", func(c *Config) { c.TowedArrayIDs = " , " }, "towed_array_ids"},
		{"bad axis", func(c *Config) { c.MajorAxis = "Z" }, "major_axis"},
		{"bad units", func(c *Config) { c.Units = "furlongs" }, "units"},
		{"empty channel", func(c *Config) { c.ResponseChannel = "" }, "response_channel"},
		{"zero lane width", func(c *Config) { c.LaneWidth = 0 }, "lane_width"},
		{"negative radius", func(c *Config) { c.SeedRadius = -1 }, "seed_radius"},
		{"negative floor", func(c *Config) { c.MinResponse = -0.1 }, "min_response"},
		{"zero relative diff", func(c *Config) { c.MaxRelativeDiff = 0 }, "max_relative_diff"},
		{"relative diff above one", func(c *Config) { c.MaxRelativeDiff = 1.5 }, "max_relative_diff"},
		{"no workers", func(c *Config) { c.Workers = 0 }, "workers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)

			err := c.Validate()
			require.Error(t, err)
			var ce *model.ConfigError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.field, ce.Field)
		})
	}
}

func TestValidateAcceptsBoundaries(t *testing.T) {
	c := validConfig()
	c.MinResponse = 0
	c.MaxRelativeDiff = 1
	c.SurveyType = "single coil"
	c.SingleCoilIDs = "1,2"
	assert.NoError(t, c.Validate())
}

func TestParamsUnitConversion(t *testing.T) {
	c := validConfig()
	c.SeedRadius = 0.5
	c.LaneWidth = 2
	c.MajorAxis = "y"

	p := c.Params()
	assert.Equal(t, model.AxisY, p.Axis)
	assert.Equal(t, 0.5, p.MaskRadius)
	assert.Equal(t, "Ch1", p.Channel)
	assert.Equal(t, 20.0, p.MinResponse)
	assert.Equal(t, 1.0, c.LaneThreshold())

	c.Units = "Feet"
	p = c.Params()
	assert.InDelta(t, 1.64, p.MaskRadius, 1e-12)
	assert.InDelta(t, 3.28, c.LaneThreshold(), 1e-12)
}

func TestSensorIDs(t *testing.T) {
	tests := []struct {
		survey string
		single string
		towed  string
		want   []string
	}{
		{"Towed Array", "", "01,02,03", []string{"01", "02", "03"}},
		{"Single Coil", "1, 2", "01,02,03", []string{"1", "2"}},
		{"Mixed", "1,2", "01,02", []string{"1", "2", "01", "02"}},
		{"Mixed", "1,01", "01", []string{"1", "01"}},
	}

	for _, tt := range tests {
		c := validConfig()
		c.SurveyType = tt.survey
		c.SingleCoilIDs = tt.single
		c.TowedArrayIDs = tt.towed
		assert.Equal(t, tt.want, c.SensorIDs(), "%s %q %q", tt.survey, tt.single, tt.towed)
	}
}

func TestSensorKind(t *testing.T) {
	c := validConfig()
	c.SurveyType = "Mixed"
	c.SingleCoilIDs = "1"

	assert.Equal(t, model.SensorTowedArray, c.SensorKind("02"))
	assert.Equal(t, model.SensorSingleCoil, c.SensorKind("1"))

	c.SurveyType = "Single Coil"
	assert.Equal(t, model.SensorSingleCoil, c.SensorKind("02"))
}

func TestLoadConfigBytes(t *testing.T) {
	yml := []byte(`
test_id: IVS
response_channel: Ch2
survey_type: Mixed
single_coil_ids: "1,2"
lane_width: 3
min_response: 15
`)
	c, err := LoadConfigBytes(yml)
	require.NoError(t, err)

	assert.Equal(t, "IVS", c.TestID)
	assert.Equal(t, "Ch2", c.ResponseChannel)
	assert.Equal(t, model.SurveyMixed, c.Survey())
	assert.Equal(t, 3.0, c.LaneWidth)
	assert.Equal(t, 15.0, c.MinResponse)
	// Untouched keys keep their defaults.
	assert.Equal(t, 0.5, c.SeedRadius)
	assert.Equal(t, "01,02,03", c.TowedArrayIDs)
	assert.NoError(t, c.Validate())
}

func TestLoadConfigBytesJSON(t *testing.T) {
	c, err := LoadConfigBytes([]byte(`{"test_id": "IVS", "response_channel": "Ch1", "workers": 2}`))
	require.NoError(t, err)
	assert.Equal(t, 2, c.Workers)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("DESERTMIRAGE_RESPONSE_CHANNEL", "Ch9")
	t.Setenv("DESERTMIRAGE_SEED_RADIUS", "1.25")

	c, err := LoadConfigBytes([]byte("test_id: IVS\nresponse_channel: Ch1\n"))
	require.NoError(t, err)
	assert.Equal(t, "Ch9", c.ResponseChannel)
	assert.Equal(t, 1.25, c.SeedRadius)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte("test_id: IVS\nresponse_channel: Ch1\nseed_file: seeds.csv\n"), 0o600))

	c, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "seeds.csv"), c.SeedFile)

	_, err = LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadConfigRejectsMalformed(t *testing.T) {
	_, err := LoadConfigBytes([]byte("test_id: [unclosed"))
	assert.Error(t, err)
}
