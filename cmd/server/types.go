package main

import (
	"time"

	"github.com/himanishpuri/DesertMirage/internal/model"
	"github.com/himanishpuri/DesertMirage/pkg/desertmirage"
)

// RunDTO represents a stored run in API responses
type RunDTO struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	TestID     string    `json:"test_id"`
	SurveyType string    `json:"survey_type"`
	Channel    string    `json:"channel"`
	Files      int       `json:"files"`
	Units      int       `json:"units"`
	Records    int       `json:"records"`
	Inserted   int       `json:"inserted"`
}

func toRunDTO(r desertmirage.Run) RunDTO {
	return RunDTO{
		ID:         r.ID,
		CreatedAt:  r.CreatedAt,
		TestID:     r.TestID,
		SurveyType: r.SurveyType,
		Channel:    r.Channel,
		Files:      r.Files,
		Units:      r.Units,
		Records:    r.Records,
		Inserted:   r.Inserted,
	}
}

// ListRunsResponse is the response for GET /api/runs
type ListRunsResponse struct {
	Runs  []RunDTO `json:"runs"`
	Count int      `json:"count"`
}

// ResultDTO is one accepted dynamic response
type ResultDTO struct {
	Filename   string  `json:"filename"`
	Pass       string  `json:"pass"`
	Date       string  `json:"date"`
	AMPM       string  `json:"am_pm"`
	SensorID   string  `json:"sensor_id"`
	TestItemID string  `json:"test_item_id"`
	TestID     string  `json:"test_id"`
	Response   float64 `json:"response"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Offset     float64 `json:"offset"`
	Channel    string  `json:"channel"`
}

func toResultDTO(r model.DynamicResponseRecord) ResultDTO {
	return ResultDTO{
		Filename:   r.Filename,
		Pass:       r.Pass.Suffix(),
		Date:       r.Date,
		AMPM:       r.AMPM,
		SensorID:   r.SensorID,
		TestItemID: r.TestItemID,
		TestID:     r.TestID,
		Response:   r.Response,
		X:          r.X,
		Y:          r.Y,
		Offset:     r.Offset,
		Channel:    r.Channel,
	}
}

// ResultsResponse is the response for GET /api/runs/{id}/results
type ResultsResponse struct {
	RunID   string      `json:"run_id"`
	Results []ResultDTO `json:"results"`
	Count   int         `json:"count"`
}

// StandardValueDTO is the mean response of one sensor over one seed item
type StandardValueDTO struct {
	SensorID     string  `json:"sensor_id"`
	TestItemID   string  `json:"test_item_id"`
	MeanResponse float64 `json:"mean_response"`
	MeanOffset   float64 `json:"mean_offset"`
	Count        int     `json:"count"`
}

// StandardValuesResponse is the response for GET /api/runs/{id}/standard-values
type StandardValuesResponse struct {
	RunID  string             `json:"run_id"`
	Values []StandardValueDTO `json:"values"`
	Count  int                `json:"count"`
}

// SeedItemDTO joins an accepted response with its seed item
type SeedItemDTO struct {
	TestItemID  string  `json:"test_item_id"`
	SensorID    string  `json:"sensor_id"`
	Date        string  `json:"date"`
	Offset      float64 `json:"offset"`
	TrueX       float64 `json:"true_x"`
	TrueY       float64 `json:"true_y"`
	Placement   string  `json:"placement,omitempty"`
	Orientation float64 `json:"orientation"`
	Inclination float64 `json:"inclination"`
}

// SeedItemsResponse is the response for GET /api/runs/{id}/seed-items
type SeedItemsResponse struct {
	RunID string        `json:"run_id"`
	Items []SeedItemDTO `json:"items"`
	Count int           `json:"count"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}
