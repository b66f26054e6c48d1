// Package linename decodes survey line identifiers.
//
// Two naming conventions are recognised:
//
//	Single Coil - L[*][TN][MMDD][*]a   sensor ID occupies either [*] slot
//	Towed Array - L[*][TN][*]a_SN      MMDD occupies either [*] slot
//
// where TN is the test identifier, MMDD the collection date, a the am/pm code
// and SN the sensor ID. Single-coil sensor IDs are alphanumeric; towed-array
// IDs are two-digit numeric suffixes (01, 02, 03).
package linename

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/himanishpuri/DesertMirage/internal/model"
)

// DateMinDigits is the minimum digit-run length considered a date when
// parsing full line identifiers.
const DateMinDigits = 4

var digitRun = regexp.MustCompile(`\d+`)

// Decode extracts sensor, date and AM/PM metadata from line for sensorID.
//
// The towed-array convention applies when line ends with sensorID and the
// survey is not single-coil; the AM/PM code is then the 4th character from
// the end. Otherwise the single-coil convention reads it from the last
// character.
func Decode(line, sensorID string, survey model.SurveyType, testID string) (model.LineMeta, error) {
	towed := strings.HasSuffix(line, sensorID) && survey != model.SurveySingleCoil

	offset := 1
	if towed {
		offset = 4
	}
	if len(line) < offset {
		return model.LineMeta{}, fmt.Errorf("line %q: %w", line, model.ErrNoAMPM)
	}
	code := line[len(line)-offset : len(line)-offset+1]

	date, err := ParseDate(line, DateMinDigits)
	if err != nil {
		return model.LineMeta{}, fmt.Errorf("line %q: %w", line, err)
	}

	return model.LineMeta{
		SensorID: sensorID,
		Filename: line,
		TestID:   testID,
		AMPM:     strings.ToUpper(code + "m"),
		Date:     date,
	}, nil
}

// ParseDate returns the first run of at least minLen digits in s formatted as
// MM/DD. Runs longer than four digits contribute their last four.
func ParseDate(s string, minLen int) (string, error) {
	for _, run := range digitRun.FindAllString(s, -1) {
		if len(run) < minLen {
			continue
		}
		lo, mid := max(len(run)-4, 0), max(len(run)-2, 0)
		return run[lo:mid] + "/" + run[mid:], nil
	}
	return "", model.ErrNoDate
}

// SelectLines returns the lines that belong to sensorID within the test
// identified by testID, preserving input order.
//
// A line must contain both testID and sensorID. One-character sensor IDs must
// appear as the "L<id>" prefix, and towed-array IDs must be the line suffix.
func SelectLines(lines []string, sensorID, testID string, towedIDs []string) ([]string, error) {
	if sensorID == "" {
		return nil, model.NewConfigError("sensor_id", "sensor ID is empty")
	}

	towed := slices.Contains(towedIDs, sensorID)
	prefix := "L" + sensorID

	var out []string
	for _, line := range lines {
		if !strings.Contains(line, testID) || !strings.Contains(line, sensorID) {
			continue
		}
		switch {
		case len(sensorID) == 1:
			if !strings.HasPrefix(line, prefix) {
				continue
			}
		case towed:
			if !strings.HasSuffix(line, sensorID) {
				continue
			}
		}
		out = append(out, line)
	}
	return out, nil
}
