package seeds

import "github.com/himanishpuri/DesertMirage/internal/model"

// Geometry returns the nose orientation and inclination in degrees for a seed
// mounted with placement on a survey travelling along axis.
//
// Orientation: 0/180 is N/S, 90/270 is W/E.
// Inclination: 0/360 is flat, 90/270 is down/up.
//
// ok is false for PlacementUnknown.
func Geometry(p model.Placement, axis model.Axis) (orientation, inclination float64, ok bool) {
	switch p {
	case model.PlacementVertical:
		return 0, 270, true
	case model.PlacementInline:
		if axis == model.AxisX {
			return 270, 0, true
		}
		return 180, 0, true
	case model.PlacementCrosswise:
		if axis == model.AxisX {
			return 0, 0, true
		}
		return 90, 0, true
	}
	return 0, 0, false
}
