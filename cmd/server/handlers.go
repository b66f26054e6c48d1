package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/himanishpuri/DesertMirage/pkg/desertmirage"
	"github.com/himanishpuri/DesertMirage/pkg/logger"
)

// Server encapsulates the HTTP server and its dependencies
type Server struct {
	store  desertmirage.Storage
	config *ServerConfig
	log    desertmirage.Logger
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	DBPath         string
	AllowedOrigins []string
	LogRequests    bool
}

// NewServer creates a new server instance
func NewServer(store desertmirage.Storage, config *ServerConfig) *Server {
	return &Server{
		store:  store,
		config: config,
		log:    logger.GetLogger(),
	}
}

// respondJSON writes a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Errorf("Failed to encode JSON response: %v", err)
	}
}

// respondError writes an error response
func (s *Server) respondError(w http.ResponseWriter, statusCode int, message string) {
	s.respondJSON(w, statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	})
}

// respondStoreError maps a store failure for run id to a status code
func (s *Server) respondStoreError(w http.ResponseWriter, id string, err error) {
	if errors.Is(err, desertmirage.ErrRunNotFound) {
		s.respondError(w, http.StatusNotFound, fmt.Sprintf("Run %s not found", id))
		return
	}
	s.log.Errorf("Store query for run %s failed: %v", id, err)
	s.respondError(w, http.StatusInternalServerError, "Failed to query result store")
}

// handleRoot handles GET /
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"service": "DesertMirage results API",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"health":         "GET /health",
			"runs":           "GET /api/runs",
			"run":            "GET /api/runs/{id}",
			"results":        "GET /api/runs/{id}/results",
			"standardValues": "GET /api/runs/{id}/standard-values",
			"seedItems":      "GET /api/runs/{id}/seed-items",
		},
	})
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// handleListRuns handles GET /api/runs
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.store.ListRuns()
	if err != nil {
		s.log.Errorf("Failed to list runs: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to retrieve runs")
		return
	}

	dtos := make([]RunDTO, len(runs))
	for i, run := range runs {
		dtos[i] = toRunDTO(run)
	}
	s.respondJSON(w, http.StatusOK, ListRunsResponse{Runs: dtos, Count: len(dtos)})
}

// handleGetRun handles GET /api/runs/{id}
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	run, err := s.store.GetRun(id)
	if err != nil {
		s.respondStoreError(w, id, err)
		return
	}
	s.respondJSON(w, http.StatusOK, toRunDTO(*run))
}

// handleResults handles GET /api/runs/{id}/results
func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	records, err := s.store.DailyResults(id)
	if err != nil {
		s.respondStoreError(w, id, err)
		return
	}

	dtos := make([]ResultDTO, len(records))
	for i, rec := range records {
		dtos[i] = toResultDTO(rec)
	}
	s.respondJSON(w, http.StatusOK, ResultsResponse{RunID: id, Results: dtos, Count: len(dtos)})
}

// handleStandardValues handles GET /api/runs/{id}/standard-values
func (s *Server) handleStandardValues(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	values, err := s.store.StandardValues(id)
	if err != nil {
		s.respondStoreError(w, id, err)
		return
	}

	dtos := make([]StandardValueDTO, len(values))
	for i, v := range values {
		dtos[i] = StandardValueDTO{
			SensorID:     v.SensorID,
			TestItemID:   v.TestItemID,
			MeanResponse: v.MeanResponse,
			MeanOffset:   v.MeanOffset,
			Count:        v.Count,
		}
	}
	s.respondJSON(w, http.StatusOK, StandardValuesResponse{RunID: id, Values: dtos, Count: len(dtos)})
}

// handleSeedItems handles GET /api/runs/{id}/seed-items
func (s *Server) handleSeedItems(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	items, err := s.store.SeedTestItems(id)
	if err != nil {
		s.respondStoreError(w, id, err)
		return
	}

	dtos := make([]SeedItemDTO, len(items))
	for i, it := range items {
		dtos[i] = SeedItemDTO{
			TestItemID:  it.TestItemID,
			SensorID:    it.SensorID,
			Date:        it.Date,
			Offset:      it.Offset,
			TrueX:       it.TrueX,
			TrueY:       it.TrueY,
			Placement:   it.Placement.String(),
			Orientation: it.Orientation,
			Inclination: it.Inclination,
		}
	}
	s.respondJSON(w, http.StatusOK, SeedItemsResponse{RunID: id, Items: dtos, Count: len(dtos)})
}
