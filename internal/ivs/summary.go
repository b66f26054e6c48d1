package ivs

import (
	"gonum.org/v1/gonum/stat"

	"github.com/himanishpuri/DesertMirage/internal/model"
	"github.com/himanishpuri/DesertMirage/internal/seeds"
)

// Summarize returns the mean online response and offset per
// (sensor, seed) pair, in first-appearance order.
func Summarize(records []model.DynamicResponseRecord) []model.StandardValue {
	type key struct{ sensor, item string }
	type acc struct{ responses, offsets []float64 }

	var order []key
	groups := make(map[key]*acc)
	for _, r := range records {
		k := key{r.SensorID, r.TestItemID}
		g, ok := groups[k]
		if !ok {
			g = &acc{}
			groups[k] = g
			order = append(order, k)
		}
		g.responses = append(g.responses, r.Response)
		g.offsets = append(g.offsets, r.Offset)
	}

	out := make([]model.StandardValue, 0, len(order))
	for _, k := range order {
		g := groups[k]
		out = append(out, model.StandardValue{
			SensorID:     k.sensor,
			TestItemID:   k.item,
			MeanResponse: stat.Mean(g.responses, nil),
			MeanOffset:   stat.Mean(g.offsets, nil),
			Count:        len(g.responses),
		})
	}
	return out
}

// SeedTable joins accepted records with their seed items. Records whose seed
// is not in items are skipped.
func SeedTable(records []model.DynamicResponseRecord, items []model.SeedItem, axis model.Axis) []model.SeedTestItem {
	index := seeds.Index(items)

	out := make([]model.SeedTestItem, 0, len(records))
	for _, r := range records {
		item, ok := index[r.TestItemID]
		if !ok {
			continue
		}
		orientation, inclination, _ := seeds.Geometry(item.Placement, axis)
		out = append(out, model.SeedTestItem{
			TestItemID:  r.TestItemID,
			SensorID:    r.SensorID,
			Date:        r.Date,
			Offset:      r.Offset,
			TrueX:       item.TrueX,
			TrueY:       item.TrueY,
			Placement:   item.Placement,
			Orientation: orientation,
			Inclination: inclination,
		})
	}
	return out
}
