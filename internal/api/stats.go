package api

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/raaihank/data-laundry/internal/cache"
	"github.com/raaihank/data-laundry/internal/etl"
	"github.com/raaihank/data-laundry/internal/websocket"
)

var errCacheDisabled = errors.New("result cache is disabled")

// StatsResponse reports runtime counters of the pipeline, hub and cache
type StatsResponse struct {
	Pipeline  *etl.ProcessingStats `json:"pipeline"`
	WebSocket websocket.HubStats   `json:"websocket"`
	Cache     *cache.CacheStats    `json:"cache,omitempty"`
}

// handleStats reports runtime counters
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	resp := StatsResponse{
		Pipeline:  s.pipeline.GetStats(),
		WebSocket: s.wsHub.GetStats(),
	}
	if s.cache != nil {
		stats, err := s.cache.GetStats(r.Context())
		if err != nil {
			s.logger.Warn("Failed to read cache stats", zap.Error(err))
		} else {
			resp.Cache = stats
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleClearCache drops every cached cleaning result
func (s *Server) handleClearCache(w http.ResponseWriter, r *http.Request) {
	if s.cache == nil {
		writeError(w, http.StatusServiceUnavailable, errCacheDisabled.Error())
		return
	}
	if err := s.cache.Clear(r.Context()); err != nil {
		s.logger.Error("Failed to clear cache", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to clear cache")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
