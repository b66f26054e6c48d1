package model

import (
	"fmt"
	"strings"
)

// SurveyType is the deployment configuration of a survey.
type SurveyType int

const (
	SurveyTowedArray SurveyType = iota
	SurveySingleCoil
	SurveyMixed
)

func (s SurveyType) String() string {
	switch s {
	case SurveyTowedArray:
		return "Towed Array"
	case SurveySingleCoil:
		return "Single Coil"
	case SurveyMixed:
		return "Mixed"
	default:
		return "Unknown"
	}
}

// ParseSurveyType accepts the labels written by the survey form ("Single Coil",
// "Towed Array", "Mixed") case-insensitively, with or without the space.
func ParseSurveyType(s string) (SurveyType, error) {
	switch normalize(s) {
	case "towedarray", "towed":
		return SurveyTowedArray, nil
	case "singlecoil", "single":
		return SurveySingleCoil, nil
	case "mixed", "both":
		return SurveyMixed, nil
	}
	return 0, fmt.Errorf("unknown survey type %q", s)
}

// SensorKind is the deployment of a single sensor within a survey.
type SensorKind int

const (
	SensorSingleCoil SensorKind = iota
	SensorTowedArray
)

func (k SensorKind) String() string {
	if k == SensorTowedArray {
		return "Towed Array"
	}
	return "Single Coil"
}

// Axis is the survey's primary direction of travel.
type Axis int

const (
	AxisX Axis = iota
	AxisY
)

func (a Axis) String() string {
	if a == AxisY {
		return "Y"
	}
	return "X"
}

func ParseAxis(s string) (Axis, error) {
	switch normalize(s) {
	case "x":
		return AxisX, nil
	case "y":
		return AxisY, nil
	}
	return 0, fmt.Errorf("unknown major axis %q", s)
}

// Units is the positioning unit system of the survey data.
type Units int

const (
	UnitsMeters Units = iota
	UnitsFeet
)

// FeetPerMeter is the conversion factor used for lane width and mask radius.
const FeetPerMeter = 3.28

func (u Units) String() string {
	if u == UnitsFeet {
		return "Feet"
	}
	return "Meters"
}

func ParseUnits(s string) (Units, error) {
	switch normalize(s) {
	case "meters", "meter", "metres", "m":
		return UnitsMeters, nil
	case "feet", "foot", "ft":
		return UnitsFeet, nil
	}
	return 0, fmt.Errorf("unknown positioning units %q", s)
}

// Placement describes how a seed item is mounted.
type Placement int

const (
	PlacementUnknown Placement = iota
	PlacementVertical
	PlacementInline
	PlacementCrosswise
)

func (p Placement) String() string {
	switch p {
	case PlacementVertical:
		return "Vertical"
	case PlacementInline:
		return "Inline"
	case PlacementCrosswise:
		return "Crosswise"
	default:
		return ""
	}
}

// ParsePlacement maps the free-text placement column by prefix. Text that does
// not match a known prefix yields PlacementUnknown.
func ParsePlacement(s string) Placement {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "Vert"):
		return PlacementVertical
	case strings.HasPrefix(s, "In"):
		return PlacementInline
	case strings.HasPrefix(s, "Cross"):
		return PlacementCrosswise
	}
	return PlacementUnknown
}

// PassLabel identifies the traversal direction of a pass.
type PassLabel int

const (
	PassForward PassLabel = iota
	PassBackward
)

// Suffix is the token appended to the line name in exported filenames.
func (p PassLabel) Suffix() string {
	if p == PassBackward {
		return "bck"
	}
	return "fwd"
}

func (p PassLabel) String() string {
	return p.Suffix()
}

// Outcome is the terminal state of reconciling one (track, seed) pair.
type Outcome int

const (
	OutcomeReject Outcome = iota
	OutcomeAcceptBoth
	OutcomeAcceptForward
	OutcomeAcceptBackward
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAcceptBoth:
		return "accept-both"
	case OutcomeAcceptForward:
		return "accept-forward"
	case OutcomeAcceptBackward:
		return "accept-backward"
	default:
		return "reject"
	}
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "_", "")
	return strings.ReplaceAll(s, "-", "")
}
