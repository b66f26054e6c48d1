package ivs

import (
	"fmt"

	"github.com/himanishpuri/DesertMirage/internal/geometry"
	"github.com/himanishpuri/DesertMirage/internal/model"
)

// Decision is the outcome of reconciling the forward and backward peaks of
// one (track, seed) pair, with the records it accepts.
type Decision struct {
	Outcome model.Outcome
	Records []model.DynamicResponseRecord
}

// Reconcile decides which passes of a (track, seed) pair are kept.
//
// Rules, first match wins:
//  1. both responses exceed MinResponse and their relative difference is below
//     MaxRelativeDifference: accept both;
//  2. single-coil sensor: reject;
//  3. towed array, the stronger pass exceeds MinResponse: accept that pass;
//  4. reject.
//
// The threshold comparisons run before the relative difference, so two zero
// responses never reach the division while MinResponse >= 0.
func Reconcile(fwd, bck model.DynamicResponseRecord, kind model.SensorKind, p Params) (Decision, error) {
	f, b := fwd.Response, bck.Response

	if f > p.MinResponse && b > p.MinResponse {
		rd, err := geometry.RelativeDifference(f, b)
		if err != nil {
			return Decision{}, fmt.Errorf("reconcile %s: %w", fwd.TestItemID, err)
		}
		if rd < p.MaxRelativeDifference {
			return Decision{
				Outcome: model.OutcomeAcceptBoth,
				Records: []model.DynamicResponseRecord{fwd, bck},
			}, nil
		}
	}

	if kind == model.SensorSingleCoil {
		return Decision{Outcome: model.OutcomeReject}, nil
	}

	// Towed-array geometry can flip between passes.
	switch {
	case f > b && f > p.MinResponse:
		return Decision{Outcome: model.OutcomeAcceptForward, Records: []model.DynamicResponseRecord{fwd}}, nil
	case b > f && b > p.MinResponse:
		return Decision{Outcome: model.OutcomeAcceptBackward, Records: []model.DynamicResponseRecord{bck}}, nil
	}
	return Decision{Outcome: model.OutcomeReject}, nil
}
