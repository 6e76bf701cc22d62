package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/Veraticus/deductible/internal/common"
	"github.com/Veraticus/deductible/internal/model"
	"github.com/Veraticus/deductible/internal/reference"
)

func (s *Server) handleBulk(w http.ResponseWriter, r *http.Request) {
	var req BulkRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.respondError(w, err)
		return
	}

	items, err := req.toItems()
	if err != nil {
		s.respondError(w, err)
		return
	}

	overrides, err := s.loadOverrides(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}
	if req.Toggles != nil {
		overrides.Toggles = model.DeductionToggleState(req.Toggles)
	}

	result, err := s.engine.ClassifyBulk(r.Context(), items, overrides)
	if err != nil {
		s.respondError(w, err)
		return
	}

	if s.history != nil {
		if err := s.history.SaveClassifications(r.Context(), s.userID, result.BatchID, result.Ordered); err != nil {
			s.logger.Warn("Failed to record classification history",
				"batch_id", result.BatchID,
				"error", err)
		}
	}

	resp := BulkResponse{
		BatchID: result.BatchID,
		Results: make(map[string]ResultJSON, len(result.Results)),
		Stats:   result.Stats,
	}
	for desc, processed := range result.Results {
		resp.Results[desc] = NewResultJSON(processed)
	}

	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSingle(w http.ResponseWriter, r *http.Request) {
	var req SingleRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.respondError(w, err)
		return
	}

	item, err := req.toItem()
	if err != nil {
		s.respondError(w, err)
		return
	}

	overrides, err := s.loadOverrides(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}
	if req.Toggles != nil {
		overrides.Toggles = model.DeductionToggleState(req.Toggles)
	}

	processed, err := s.engine.ClassifyOne(r.Context(), item, overrides)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, NewResultJSON(processed))
}

func (s *Server) handleCacheStats(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, s.engine.CacheStats())
}

func (s *Server) handleTableStats(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, reference.TableStats())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"aiEnabled": s.engine.AIEnabled(),
	})
}

// decodeBody reads a JSON body. Syntax and type errors are client errors.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed request body: %w", common.ErrInvalidInput, err)
	}
	return nil
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("Failed to encode response", "error", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytesErr):
		status = http.StatusRequestEntityTooLarge
	case common.IsClientError(err):
		status = http.StatusBadRequest
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed", "error", err)
	} else {
		s.logger.Debug("Rejected request", "status", status, "error", err)
	}

	s.respondJSON(w, status, ErrorResponse{Success: false, Error: err.Error()})
}
