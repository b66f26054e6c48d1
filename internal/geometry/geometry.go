// Package geometry provides the distance and directional rounding primitives
// shared by the seed proximity filter and the peak response extractor.
package geometry

import (
	"errors"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// ErrZeroDenominator is returned by RelativeDifference when both operands are zero.
var ErrZeroDenominator = errors.New("relative difference of two zero values")

// Direction selects the truncation direction of DecimalRound.
type Direction int

const (
	Down Direction = iota
	Up
)

// DecimalRound truncates value at precision decimal digits.
//
// Down floors (toward negative infinity) and Up ceils. With towardZero set the
// truncation is toward zero instead: Down ceils negative values and Up floors
// positive ones.
//
//	DecimalRound(-3.57, 1, Down, false) == -3.6
//	DecimalRound(-3.57, 1, Down, true)  == -3.5
func DecimalRound(value float64, precision int, dir Direction, towardZero bool) float64 {
	scale := math.Pow(10, float64(precision))
	ceil := dir == Up
	if towardZero {
		if dir == Down && value < 0 {
			ceil = true
		}
		if dir == Up && value > 0 {
			ceil = false
		}
	}
	if ceil {
		return math.Ceil(value*scale) / scale
	}
	return math.Floor(value*scale) / scale
}

// EuclideanDistance returns the distance between (x1, y1) and (x2, y2). Each
// axis delta is floored at calcPrecision digits before squaring and the result
// is truncated toward zero at outPrecision digits.
func EuclideanDistance(x1, y1, x2, y2 float64, calcPrecision, outPrecision int) float64 {
	dx := DecimalRound(math.Abs(x1-x2), calcPrecision, Down, false)
	dy := DecimalRound(math.Abs(y1-y2), calcPrecision, Down, false)
	dist := math.Sqrt(dx*dx + dy*dy)
	return DecimalRound(dist, outPrecision, Down, true)
}

// PlanarDistance is the unrounded distance between two points.
func PlanarDistance(x1, y1, x2, y2 float64) float64 {
	return planar.Distance(orb.Point{x1, y1}, orb.Point{x2, y2})
}

// RelativeDifference is |(|a| - |b|)| / max(|a|, |b|).
func RelativeDifference(a, b float64) (float64, error) {
	a, b = math.Abs(a), math.Abs(b)
	denom := math.Max(a, b)
	if denom == 0 {
		return 0, ErrZeroDenominator
	}
	return math.Abs(a-b) / denom, nil
}
