package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/raaihank/data-laundry/internal/store"
)

const presetExportName = "presets.laundry"

var errStoreDisabled = errors.New("preset storage is disabled")

// lookupPreset finds a preset in the store, or among the built-ins when no
// store is configured
func (s *Server) lookupPreset(ctx context.Context, id string) (*store.Preset, error) {
	if s.store != nil {
		return s.store.GetPreset(ctx, id)
	}
	if p, ok := store.SystemPreset(id); ok {
		return &p, nil
	}
	return nil, fmt.Errorf("preset %q: %w", id, store.ErrNotFound)
}

// handleListPresets lists built-in and user presets
func (s *Server) handleListPresets(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeJSON(w, http.StatusOK, store.SystemPresets())
		return
	}

	presets, err := s.store.ListPresets(r.Context())
	if err != nil {
		s.logger.Error("Failed to list presets", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list presets")
		return
	}
	writeJSON(w, http.StatusOK, presets)
}

// handleSavePreset creates or replaces a user preset
func (s *Server) handleSavePreset(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, errStoreDisabled.Error())
		return
	}

	var preset store.Preset
	if err := decodeJSON(w, r, &preset); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.store.SavePreset(r.Context(), &preset); err != nil {
		writeError(w, errorStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, preset)
}

// handleDeletePreset removes a user preset
func (s *Server) handleDeletePreset(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if store.IsSystemPreset(id) {
		writeError(w, http.StatusForbidden, store.ErrSystemPreset.Error())
		return
	}
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, errStoreDisabled.Error())
		return
	}

	if err := s.store.DeletePreset(r.Context(), id); err != nil {
		writeError(w, errorStatus(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleExportPresets downloads user presets as a .laundry file
func (s *Server) handleExportPresets(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, errStoreDisabled.Error())
		return
	}

	data, err := s.store.ExportPresets(r.Context())
	if err != nil {
		s.logger.Error("Failed to export presets", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to export presets")
		return
	}
	w.Header().Set("Content-Type", jsonContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+presetExportName+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// handleImportPresets stores the presets of an uploaded export file
func (s *Server) handleImportPresets(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, errStoreDisabled.Error())
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}
	presets, err := s.store.ImportPresets(r.Context(), data)
	if err != nil {
		writeError(w, errorStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, presets)
}

// handleListJobs lists recent cleaning jobs
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeJSON(w, http.StatusOK, []store.JobRecord{})
		return
	}

	limit := defaultJobsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	jobs, err := s.store.ListJobs(r.Context(), limit)
	if err != nil {
		s.logger.Error("Failed to list jobs", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list jobs")
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}
