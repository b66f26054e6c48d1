package ivs

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/himanishpuri/DesertMirage/internal/model"
)

const testLine = "L1IVS0315a_01"

var testMeta = model.LineMeta{
	SensorID: "01",
	Filename: testLine,
	TestID:   "IVS",
	AMPM:     "AM",
	Date:     "03/15",
}

// track builds a decoded track from (x, y, response) triples.
func track(points ...[3]float64) model.Track {
	samples := make([]model.Sample, len(points))
	for i, p := range points {
		samples[i] = model.Sample{Line: testLine, X: p[0], Y: p[1], Response: p[2], Meta: testMeta}
	}
	return model.Track{Line: testLine, Samples: samples}
}

func testParams() Params {
	p := DefaultParams()
	p.Axis = model.AxisX
	p.MaskRadius = 5.0
	p.Channel = "Ch1"
	return p
}

var seed100 = model.SeedItem{TestItemID: "T-100", TrueX: 100, TrueY: 0, Placement: model.PlacementVertical}

// consistentTrack passes seed100 twice with a strong, reproducible response.
func consistentTrack() model.Track {
	return track(
		[3]float64{90, 0, 5},
		[3]float64{95, 0, 10},
		[3]float64{99.0, 0.1, 45},
		[3]float64{103, 0, 12},
		[3]float64{106, 0, 3},
		[3]float64{101.0, -0.1, 40},
		[3]float64{97, 0, 15},
		[3]float64{92, 0, 2},
	)
}

func record(label model.PassLabel, response float64) model.DynamicResponseRecord {
	return model.DynamicResponseRecord{
		Filename:   testLine + "_" + label.Suffix(),
		Pass:       label,
		TestItemID: "T-100",
		SensorID:   "01",
		Response:   response,
	}
}

func TestSplitPasses(t *testing.T) {
	tests := []struct {
		n        int
		fwd, bck int
	}{
		{0, 0, 0},
		{1, 0, 1},
		{2, 1, 1},
		{5, 2, 3},
		{8, 4, 4},
	}

	for _, tt := range tests {
		points := make([][3]float64, tt.n)
		for i := range points {
			points[i] = [3]float64{float64(i), 0, float64(i)}
		}
		fwd, bck := SplitPasses(track(points...))

		assert.Equal(t, model.PassForward, fwd.Label)
		assert.Equal(t, model.PassBackward, bck.Label)
		assert.Len(t, fwd.Samples, tt.fwd, "forward length for n=%d", tt.n)
		assert.Len(t, bck.Samples, tt.bck, "backward length for n=%d", tt.n)
	}
}

func TestSplitPassesDoesNotShareCapacity(t *testing.T) {
	tr := consistentTrack()
	fwd, _ := SplitPasses(tr)
	assert.Equal(t, len(fwd.Samples), cap(fwd.Samples))
}

func TestExtractPeakConsistencyScenario(t *testing.T) {
	fwdPass, bckPass := SplitPasses(consistentTrack())
	p := testParams()

	fwd, err := ExtractPeak(fwdPass, seed100, p)
	require.NoError(t, err)
	assert.Equal(t, 45.0, fwd.Response)
	assert.Equal(t, 99.0, fwd.X)
	assert.Equal(t, 0.1, fwd.Y)
	assert.InDelta(t, 1.00, fwd.Offset, 1e-9)
	assert.Equal(t, testLine+"_fwd", fwd.Filename)
	assert.Equal(t, "03/15", fwd.Date)
	assert.Equal(t, "AM", fwd.AMPM)
	assert.Equal(t, "01", fwd.SensorID)
	assert.Equal(t, "T-100", fwd.TestItemID)
	assert.Equal(t, "Ch1", fwd.Channel)

	bck, err := ExtractPeak(bckPass, seed100, p)
	require.NoError(t, err)
	assert.Equal(t, 40.0, bck.Response)
	assert.Equal(t, 101.0, bck.X)
	assert.InDelta(t, 1.00, bck.Offset, 1e-9)
	assert.Equal(t, testLine+"_bck", bck.Filename)

	d, err := Reconcile(fwd, bck, model.SensorTowedArray, p)
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeAcceptBoth, d.Outcome)
	require.Len(t, d.Records, 2)
	assert.Equal(t, model.PassForward, d.Records[0].Pass)
	assert.Equal(t, model.PassBackward, d.Records[1].Pass)
}

func TestExtractPeakIdempotent(t *testing.T) {
	fwdPass, _ := SplitPasses(consistentTrack())
	p := testParams()

	a, err := ExtractPeak(fwdPass, seed100, p)
	require.NoError(t, err)
	b, err := ExtractPeak(fwdPass, seed100, p)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestExtractPeakTieBreaksOnFirstOccurrence(t *testing.T) {
	pass := model.Pass{Label: model.PassForward, Samples: track(
		[3]float64{98, 0, 30},
		[3]float64{99, 0, 50},
		[3]float64{101, 0, 50},
	).Samples}

	rec, err := ExtractPeak(pass, seed100, testParams())
	require.NoError(t, err)
	assert.Equal(t, 99.0, rec.X)
}

func TestExtractPeakMaskBoundsInclusive(t *testing.T) {
	pass := model.Pass{Label: model.PassForward, Samples: track(
		[3]float64{94.9, 0, 99},
		[3]float64{95, 0, 10},
		[3]float64{105, 0, 11},
		[3]float64{105.1, 0, 99},
	).Samples}

	rec, err := ExtractPeak(pass, seed100, testParams())
	require.NoError(t, err)
	assert.Equal(t, 105.0, rec.X)
	// Offset 5.00 equals the mask radius, so the response is suppressed.
	assert.Equal(t, 0.0, rec.Response)
}

func TestExtractPeakUsesMajorAxisY(t *testing.T) {
	seed := model.SeedItem{TestItemID: "T-Y", TrueX: 0, TrueY: 50}
	pass := model.Pass{Label: model.PassBackward, Samples: track(
		[3]float64{0, 10, 90},
		[3]float64{0.2, 49.5, 30},
		[3]float64{0, 52, 25},
	).Samples}

	p := testParams()
	p.Axis = model.AxisY
	p.MaskRadius = 3

	rec, err := ExtractPeak(pass, seed, p)
	require.NoError(t, err)
	assert.Equal(t, 30.0, rec.Response)
	assert.InDelta(t, 0.53, rec.Offset, 1e-9)
}

func TestExtractPeakSkipsNaN(t *testing.T) {
	pass := model.Pass{Label: model.PassForward, Samples: track(
		[3]float64{99, 0, math.NaN()},
		[3]float64{100, 0, 21},
	).Samples}

	rec, err := ExtractPeak(pass, seed100, testParams())
	require.NoError(t, err)
	assert.Equal(t, 21.0, rec.Response)
}

func TestExtractPeakSuppressesDistantPeak(t *testing.T) {
	// Inside the mask along X but 3 units off the line in Y.
	pass := model.Pass{Label: model.PassForward, Samples: track(
		[3]float64{100.5, 3, 50},
		[3]float64{100.2, 0.1, 10},
	).Samples}

	p := testParams()
	p.MaskRadius = 1

	rec, err := ExtractPeak(pass, seed100, p)
	require.NoError(t, err)
	assert.Equal(t, 100.5, rec.X)
	assert.InDelta(t, 3.04, rec.Offset, 1e-9)
	assert.Equal(t, 0.0, rec.Response)
}

func TestExtractPeakSuppressionInvariant(t *testing.T) {
	p := testParams()
	p.MaskRadius = 2
	for y := -4.0; y <= 4.0; y += 0.25 {
		for x := 97.0; x <= 103.0; x += 0.5 {
			pass := model.Pass{Label: model.PassForward, Samples: track([3]float64{x, y, 77}).Samples}
			rec, err := ExtractPeak(pass, seed100, p)
			if err != nil {
				require.ErrorIs(t, err, model.ErrEmptyMask)
				continue
			}
			require.GreaterOrEqual(t, rec.Offset, 0.0)
			if rec.Offset >= p.MaskRadius {
				require.Equal(t, 0.0, rec.Response, "peak at (%v, %v)", x, y)
			} else {
				require.Equal(t, 77.0, rec.Response, "peak at (%v, %v)", x, y)
			}
		}
	}
}

func TestExtractPeakEmptyMask(t *testing.T) {
	fwdPass, _ := SplitPasses(consistentTrack())
	far := model.SeedItem{TestItemID: "T-FAR", TrueX: 1000, TrueY: 0}

	_, err := ExtractPeak(fwdPass, far, testParams())
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrEmptyMask)
	assert.True(t, model.IsDataQuality(err))

	_, err = ExtractPeak(model.Pass{Label: model.PassBackward}, seed100, testParams())
	assert.ErrorIs(t, err, model.ErrEmptyMask)
}

func TestReconcileScenarios(t *testing.T) {
	p := testParams()

	tests := []struct {
		name     string
		fwd, bck float64
		kind     model.SensorKind
		outcome  model.Outcome
		passes   []model.PassLabel
	}{
		{"consistent pair", 45, 40, model.SensorTowedArray, model.OutcomeAcceptBoth, []model.PassLabel{model.PassForward, model.PassBackward}},
		{"consistent pair single coil", 45, 40, model.SensorSingleCoil, model.OutcomeAcceptBoth, []model.PassLabel{model.PassForward, model.PassBackward}},
		{"geometry flip backward", 8, 35, model.SensorTowedArray, model.OutcomeAcceptBackward, []model.PassLabel{model.PassBackward}},
		{"geometry flip forward", 45, 5, model.SensorTowedArray, model.OutcomeAcceptForward, []model.PassLabel{model.PassForward}},
		{"single coil inconsistent", 45, 5, model.SensorSingleCoil, model.OutcomeReject, nil},
		{"both strong but inconsistent towed", 100, 30, model.SensorTowedArray, model.OutcomeAcceptForward, []model.PassLabel{model.PassForward}},
		{"both weak", 15, 12, model.SensorTowedArray, model.OutcomeReject, nil},
		{"equal weak", 20, 20, model.SensorTowedArray, model.OutcomeReject, nil},
		{"both zero", 0, 0, model.SensorTowedArray, model.OutcomeReject, nil},
		{"floor is exclusive", 20, 10, model.SensorTowedArray, model.OutcomeReject, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Reconcile(record(model.PassForward, tt.fwd), record(model.PassBackward, tt.bck), tt.kind, p)
			require.NoError(t, err)
			assert.Equal(t, tt.outcome, d.Outcome)

			var got []model.PassLabel
			for _, r := range d.Records {
				got = append(got, r.Pass)
			}
			assert.Equal(t, tt.passes, got)
		})
	}
}

func TestReconcileExhaustive(t *testing.T) {
	p := testParams()
	responses := []float64{0, 1, 5, 8, 19.99, 20, 20.01, 25, 35, 40, 45, 80, 100}
	kinds := []model.SensorKind{model.SensorSingleCoil, model.SensorTowedArray}

	for _, kind := range kinds {
		for _, f := range responses {
			for _, b := range responses {
				d, err := Reconcile(record(model.PassForward, f), record(model.PassBackward, b), kind, p)
				require.NoError(t, err)

				switch d.Outcome {
				case model.OutcomeAcceptBoth:
					require.Len(t, d.Records, 2)
					require.Greater(t, f, p.MinResponse)
					require.Greater(t, b, p.MinResponse)
				case model.OutcomeAcceptForward:
					require.Equal(t, model.SensorTowedArray, kind)
					require.Len(t, d.Records, 1)
					require.Equal(t, model.PassForward, d.Records[0].Pass)
					require.Greater(t, f, b)
				case model.OutcomeAcceptBackward:
					require.Equal(t, model.SensorTowedArray, kind)
					require.Len(t, d.Records, 1)
					require.Equal(t, model.PassBackward, d.Records[0].Pass)
					require.Greater(t, b, f)
				case model.OutcomeReject:
					require.Empty(t, d.Records)
				default:
					t.Fatalf("unexpected outcome %v", d.Outcome)
				}
			}
		}
	}
}

func TestReconcileCustomThresholds(t *testing.T) {
	p := testParams()
	p.MinResponse = 5
	p.MaxRelativeDifference = 0.9

	d, err := Reconcile(record(model.PassForward, 45), record(model.PassBackward, 6), model.SensorSingleCoil, p)
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeAcceptBoth, d.Outcome)
}

func TestReconcileNegativeFloorPropagatesZeroDivision(t *testing.T) {
	p := testParams()
	p.MinResponse = -1

	_, err := Reconcile(record(model.PassForward, 0), record(model.PassBackward, 0), model.SensorTowedArray, p)
	assert.Error(t, err)
}

func TestProcessTrack(t *testing.T) {
	items := []model.SeedItem{
		seed100,
		{TestItemID: "T-FAR", TrueX: 500, TrueY: 0},
	}

	res, err := ProcessTrack(consistentTrack(), items, 2.0, model.SensorTowedArray, testParams())
	require.NoError(t, err)

	assert.Equal(t, testLine, res.Line)
	assert.Equal(t, []string{"T-100"}, res.ActiveSeeds)
	assert.Equal(t, []SeedOutcome{{TestItemID: "T-100", Outcome: model.OutcomeAcceptBoth}}, res.Outcomes)
	require.Len(t, res.Records, 2)
	assert.Empty(t, res.Warnings)
}

func TestProcessTrackNoActiveSeeds(t *testing.T) {
	items := []model.SeedItem{{TestItemID: "T-FAR", TrueX: 500, TrueY: 0}}

	res, err := ProcessTrack(consistentTrack(), items, 2.0, model.SensorTowedArray, testParams())
	require.NoError(t, err)
	assert.Empty(t, res.ActiveSeeds)
	assert.Empty(t, res.Records)

	res, err = ProcessTrack(model.Track{Line: testLine}, items, 2.0, model.SensorTowedArray, testParams())
	require.NoError(t, err)
	assert.Empty(t, res.ActiveSeeds)
}

func TestProcessTrackMissingPass(t *testing.T) {
	// The forward half never reaches the seed along X; the backward half does.
	tr := track(
		[3]float64{80, 0, 1},
		[3]float64{82, 0, 2},
		[3]float64{100, 0.2, 60},
		[3]float64{98, 0, 10},
	)
	p := testParams()
	p.MaskRadius = 3

	res, err := ProcessTrack(tr, []model.SeedItem{seed100}, 2.0, model.SensorTowedArray, p)
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.ErrorIs(t, res.Warnings[0], model.ErrEmptyMask)
	assert.Equal(t, model.OutcomeAcceptBackward, res.Outcomes[0].Outcome)
	require.Len(t, res.Records, 1)
	assert.Equal(t, 60.0, res.Records[0].Response)

	res, err = ProcessTrack(tr, []model.SeedItem{seed100}, 2.0, model.SensorSingleCoil, p)
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeReject, res.Outcomes[0].Outcome)
	assert.Empty(t, res.Records)
}

func TestSummarize(t *testing.T) {
	records := []model.DynamicResponseRecord{
		{SensorID: "01", TestItemID: "T-1", Response: 40, Offset: 0.2},
		{SensorID: "02", TestItemID: "T-1", Response: 10, Offset: 0.1},
		{SensorID: "01", TestItemID: "T-1", Response: 50, Offset: 0.4},
		{SensorID: "01", TestItemID: "T-2", Response: 30, Offset: 0.0},
	}

	got := Summarize(records)
	require.Len(t, got, 3)

	assert.Equal(t, "01", got[0].SensorID)
	assert.Equal(t, "T-1", got[0].TestItemID)
	assert.InDelta(t, 45.0, got[0].MeanResponse, 1e-12)
	assert.InDelta(t, 0.3, got[0].MeanOffset, 1e-12)
	assert.Equal(t, 2, got[0].Count)

	assert.Equal(t, "02", got[1].SensorID)
	assert.Equal(t, "T-2", got[2].TestItemID)

	assert.Empty(t, Summarize(nil))
}

func TestSeedTable(t *testing.T) {
	items := []model.SeedItem{
		{TestItemID: "T-1", TrueX: 10, TrueY: 20, Placement: model.PlacementInline},
	}
	records := []model.DynamicResponseRecord{
		{SensorID: "01", TestItemID: "T-1", Date: "03/15", Offset: 0.12},
		{SensorID: "01", TestItemID: "T-GONE"},
	}

	rows := SeedTable(records, items, model.AxisY)
	require.Len(t, rows, 1)
	assert.Equal(t, model.SeedTestItem{
		TestItemID:  "T-1",
		SensorID:    "01",
		Date:        "03/15",
		Offset:      0.12,
		TrueX:       10,
		TrueY:       20,
		Placement:   model.PlacementInline,
		Orientation: 180,
		Inclination: 0,
	}, rows[0])
}
