// Package ivs implements the dynamic-response analysis of instrument
// verification strip lines: pass splitting, peak extraction around seed
// items, and forward/backward pass reconciliation.
package ivs

import (
	"fmt"
	"math"

	"github.com/himanishpuri/DesertMirage/internal/geometry"
	"github.com/himanishpuri/DesertMirage/internal/model"
)

// Offset precision used when scoring a peak against its seed.
const (
	OffsetCalcPrecision = 4
	OffsetOutPrecision  = 2
)

// Params are the resolved analysis parameters. MaskRadius must already be in
// the positioning units of the survey data.
type Params struct {
	Axis                  model.Axis
	MaskRadius            float64
	Channel               string
	MinResponse           float64
	MaxRelativeDifference float64
}

// DefaultParams returns the thresholds used by the field procedure: 20 channel
// units minimum response and 50% relative difference.
func DefaultParams() Params {
	return Params{
		Axis:                  model.AxisX,
		MaskRadius:            0.5,
		MinResponse:           20,
		MaxRelativeDifference: 0.5,
	}
}

// SplitPasses splits a track at floor(len/2) into its forward and backward
// passes. Both passes alias the track's samples.
func SplitPasses(track model.Track) (fwd, bck model.Pass) {
	mid := len(track.Samples) / 2
	fwd = model.Pass{Label: model.PassForward, Samples: track.Samples[:mid:mid]}
	bck = model.Pass{Label: model.PassBackward, Samples: track.Samples[mid:]}
	return fwd, bck
}

// ExtractPeak finds the peak response of pass near seed.
//
// Samples are masked to [seedLoc-r, seedLoc+r] along the major axis, where
// seedLoc is the seed's true coordinate on that axis. The first sample holding
// the maximum response inside the mask is the peak. Its offset from the seed
// is scored with EuclideanDistance; when the offset is not less than the mask
// radius the response is reported as 0.
//
// An empty mask returns a DataQualityError wrapping model.ErrEmptyMask.
func ExtractPeak(pass model.Pass, seed model.SeedItem, p Params) (model.DynamicResponseRecord, error) {
	seedLoc := seed.TrueY
	if p.Axis == model.AxisX {
		seedLoc = seed.TrueX
	}
	lo, hi := seedLoc-p.MaskRadius, seedLoc+p.MaskRadius

	peak := -1
	for i, s := range pass.Samples {
		loc := s.Y
		if p.Axis == model.AxisX {
			loc = s.X
		}
		if loc < lo || loc > hi || math.IsNaN(s.Response) {
			continue
		}
		if peak < 0 || s.Response > pass.Samples[peak].Response {
			peak = i
		}
	}
	if peak < 0 {
		unit := fmt.Sprintf("%s/%s", seed.TestItemID, pass.Label)
		return model.DynamicResponseRecord{}, model.NewDataQualityError(unit, model.ErrEmptyMask)
	}

	s := pass.Samples[peak]
	offset := geometry.EuclideanDistance(s.X, s.Y, seed.TrueX, seed.TrueY, OffsetCalcPrecision, OffsetOutPrecision)
	response := s.Response
	if offset >= p.MaskRadius {
		response = 0
	}

	return model.DynamicResponseRecord{
		Filename:   s.Line + "_" + pass.Label.Suffix(),
		Pass:       pass.Label,
		Date:       s.Meta.Date,
		AMPM:       s.Meta.AMPM,
		SensorID:   s.Meta.SensorID,
		TestItemID: seed.TestItemID,
		TestID:     s.Meta.TestID,
		Response:   response,
		X:          s.X,
		Y:          s.Y,
		Offset:     offset,
		Channel:    p.Channel,
	}, nil
}
