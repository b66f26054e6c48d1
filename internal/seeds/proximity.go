// Package seeds selects the seed items relevant to a survey line and derives
// their mounting geometry.
package seeds

import (
	"github.com/himanishpuri/DesertMirage/internal/geometry"
	"github.com/himanishpuri/DesertMirage/internal/model"
)

// Active returns the IDs of the seed items that have at least one sample
// strictly closer than threshold. Distances are unrounded. Order follows
// items, not distance.
func Active(samples []model.Sample, items []model.SeedItem, threshold float64) []string {
	if len(samples) == 0 {
		return nil
	}

	var ids []string
	for _, item := range items {
		if Count(samples, item, threshold) > 0 {
			ids = append(ids, item.TestItemID)
		}
	}
	return ids
}

// Count returns how many samples lie strictly within threshold of item.
func Count(samples []model.Sample, item model.SeedItem, threshold float64) int {
	n := 0
	for _, s := range samples {
		if geometry.PlanarDistance(s.X, s.Y, item.TrueX, item.TrueY) < threshold {
			n++
		}
	}
	return n
}

// Index maps Test_Item_ID to its seed item.
func Index(items []model.SeedItem) map[string]model.SeedItem {
	idx := make(map[string]model.SeedItem, len(items))
	for _, item := range items {
		idx[item.TestItemID] = item
	}
	return idx
}
