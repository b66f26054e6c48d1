// Package ingest reads survey track files and seed tables.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/himanishpuri/DesertMirage/internal/model"
)

// Track file columns. The response channel column is named by configuration.
const (
	ColLine = "Line"
	ColX    = "X"
	ColY    = "Y"
)

// Seed table columns.
const (
	ColTestItemID = "Test_Item_ID"
	ColTrueX      = "TrueX"
	ColTrueY      = "TrueY"
	ColPlacement  = "Placement"
)

// TrackSet is the content of one survey file.
type TrackSet struct {
	Name    string
	Tracks  []model.Track
	Dropped int // rows with a blank line name or a non-numeric X, Y or channel value
}

// Lines returns the track names in file order.
func (ts TrackSet) Lines() []string {
	lines := make([]string, len(ts.Tracks))
	for i, t := range ts.Tracks {
		lines[i] = t.Line
	}
	return lines
}

// Track returns the track named line.
func (ts TrackSet) Track(line string) (model.Track, bool) {
	for _, t := range ts.Tracks {
		if t.Line == line {
			return t, true
		}
	}
	return model.Track{}, false
}

// ReadTracksFile opens path and reads it with ReadTracks.
func ReadTracksFile(path, channel string) (TrackSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return TrackSet{}, fmt.Errorf("opening track file: %w", err)
	}
	defer f.Close()

	return ReadTracks(f, path, channel)
}

// ReadTracks reads a survey CSV with a header row and groups its rows into
// tracks by line name. Tracks are ordered by first appearance and samples keep
// acquisition order. Sample metadata is left for the line decoder.
//
// A header without the channel column returns a DataQualityError wrapping
// model.ErrMissingChannel; without Line, X or Y it wraps model.ErrMissingColumn.
func ReadTracks(r io.Reader, name, channel string) (TrackSet, error) {
	cr := newReader(r)

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return TrackSet{}, model.NewDataQualityError(name, fmt.Errorf("%w: empty file", model.ErrMissingColumn))
		}
		return TrackSet{}, fmt.Errorf("reading header of %s: %w", name, err)
	}
	cols := columnIndex(header)

	idx := make(map[string]int, 4)
	for _, c := range []string{ColLine, ColX, ColY} {
		i, ok := cols[c]
		if !ok {
			return TrackSet{}, model.NewDataQualityError(name, fmt.Errorf("%w: %s", model.ErrMissingColumn, c))
		}
		idx[c] = i
	}
	ch, ok := cols[channel]
	if !ok {
		return TrackSet{}, model.NewDataQualityError(name, fmt.Errorf("%w: %s", model.ErrMissingChannel, channel))
	}

	ts := TrackSet{Name: name}
	byLine := make(map[string]int)

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return TrackSet{}, fmt.Errorf("reading %s: %w", name, err)
		}

		line := field(rec, idx[ColLine])
		x, okX := number(rec, idx[ColX])
		y, okY := number(rec, idx[ColY])
		resp, okR := number(rec, ch)
		if line == "" || !okX || !okY || !okR {
			ts.Dropped++
			continue
		}

		i, seen := byLine[line]
		if !seen {
			i = len(ts.Tracks)
			byLine[line] = i
			ts.Tracks = append(ts.Tracks, model.Track{Line: line})
		}
		ts.Tracks[i].Samples = append(ts.Tracks[i].Samples, model.Sample{
			Line:     line,
			X:        x,
			Y:        y,
			Response: resp,
		})
	}

	return ts, nil
}

// ReadSeedsFile opens path and reads it with ReadSeeds.
func ReadSeedsFile(path string) ([]model.SeedItem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, model.NewConfigError("seed_file", "%v", err)
	}
	defer f.Close()

	return ReadSeeds(f)
}

// ReadSeeds reads the seed table. Test_Item_ID, TrueX and TrueY are required
// and every row must carry valid values; Placement is optional. Any problem
// with the table is a ConfigError since no unit can be analysed without it.
func ReadSeeds(r io.Reader) ([]model.SeedItem, error) {
	cr := newReader(r)

	header, err := cr.Read()
	if err != nil {
		return nil, model.NewConfigError("seed_file", "reading header: %v", err)
	}
	cols := columnIndex(header)
	for _, c := range []string{ColTestItemID, ColTrueX, ColTrueY} {
		if _, ok := cols[c]; !ok {
			return nil, model.NewConfigError("seed_file", "missing column %s", c)
		}
	}
	placementCol, hasPlacement := cols[ColPlacement]

	var items []model.SeedItem
	seen := make(map[string]bool)
	for row := 2; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, model.NewConfigError("seed_file", "row %d: %v", row, err)
		}

		id := field(rec, cols[ColTestItemID])
		if id == "" {
			return nil, model.NewConfigError("seed_file", "row %d: empty %s", row, ColTestItemID)
		}
		if seen[id] {
			return nil, model.NewConfigError("seed_file", "row %d: duplicate %s %q", row, ColTestItemID, id)
		}
		seen[id] = true

		x, okX := number(rec, cols[ColTrueX])
		y, okY := number(rec, cols[ColTrueY])
		if !okX || !okY {
			return nil, model.NewConfigError("seed_file", "row %d: invalid true position for %q", row, id)
		}

		item := model.SeedItem{TestItemID: id, TrueX: x, TrueY: y}
		if hasPlacement {
			item.Placement = model.ParsePlacement(field(rec, placementCol))
		}
		items = append(items, item)
	}

	return items, nil
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true
	return cr
}

func columnIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		h = strings.TrimSpace(h)
		if _, dup := cols[h]; !dup {
			cols[h] = i
		}
	}
	return cols
}

func field(rec []string, i int) string {
	if i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func number(rec []string, i int) (float64, bool) {
	v, err := strconv.ParseFloat(field(rec, i), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
