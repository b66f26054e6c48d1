package ivs

import (
	"fmt"

	"github.com/himanishpuri/DesertMirage/internal/model"
	"github.com/himanishpuri/DesertMirage/internal/seeds"
)

// SeedOutcome records how one active seed of a track was reconciled.
type SeedOutcome struct {
	TestItemID string
	Outcome    model.Outcome
}

// TrackResult is everything derived from one decoded track.
type TrackResult struct {
	Line        string
	ActiveSeeds []string
	Outcomes    []SeedOutcome
	Records     []model.DynamicResponseRecord
	Warnings    []error
}

// ProcessTrack runs the dynamic-response analysis of one decoded track against
// every seed within laneThreshold of it.
//
// A pass whose mask is empty produces a data-quality warning and takes part
// in reconciliation as a zero-response stand-in, so it is never accepted. When
// both passes are empty the seed is rejected without reconciling. p.MinResponse
// must not be negative.
//
// The only error returned is an arithmetic failure from Reconcile.
func ProcessTrack(track model.Track, items []model.SeedItem, laneThreshold float64, kind model.SensorKind, p Params) (TrackResult, error) {
	res := TrackResult{
		Line:        track.Line,
		ActiveSeeds: seeds.Active(track.Samples, items, laneThreshold),
	}
	if len(res.ActiveSeeds) == 0 {
		return res, nil
	}

	index := seeds.Index(items)
	fwdPass, bckPass := SplitPasses(track)

	for _, id := range res.ActiveSeeds {
		seed := index[id]

		fwd, fwdErr := ExtractPeak(fwdPass, seed, p)
		bck, bckErr := ExtractPeak(bckPass, seed, p)
		for _, err := range []error{fwdErr, bckErr} {
			if err != nil {
				res.Warnings = append(res.Warnings, fmt.Errorf("%s: %w", track.Line, err))
			}
		}
		if fwdErr != nil && bckErr != nil {
			res.Outcomes = append(res.Outcomes, SeedOutcome{TestItemID: id, Outcome: model.OutcomeReject})
			continue
		}
		if fwdErr != nil {
			fwd = standIn(bck, model.PassForward)
		}
		if bckErr != nil {
			bck = standIn(fwd, model.PassBackward)
		}

		d, err := Reconcile(fwd, bck, kind, p)
		if err != nil {
			return res, err
		}
		res.Outcomes = append(res.Outcomes, SeedOutcome{TestItemID: id, Outcome: d.Outcome})
		res.Records = append(res.Records, d.Records...)
	}
	return res, nil
}

// standIn is a zero-response record for a pass that produced no peak.
func standIn(other model.DynamicResponseRecord, label model.PassLabel) model.DynamicResponseRecord {
	return model.DynamicResponseRecord{
		Pass:       label,
		TestItemID: other.TestItemID,
		SensorID:   other.SensorID,
		Channel:    other.Channel,
	}
}
