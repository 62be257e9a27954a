package api

import (
	"encoding/json"
	"net/http"
)

// handleLLMStats reports generator latency over the rolling window. It is
// unavailable when the server runs without a generator.
func (s *Server) handleLLMStats(w http.ResponseWriter, r *http.Request) {
	if s.claude == nil || s.claude.Stats == nil {
		jsonError(w, "llm stats unavailable", http.StatusServiceUnavailable)
		return
	}

	snap := s.claude.Stats.Snapshot()
	var failureRate float64
	if snap.Count > 0 {
		failureRate = float64(snap.Failures) / float64(snap.Count)
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"model":        s.claude.Model(),
		"stats":        snap,
		"failure_rate": failureRate,
	})
}
