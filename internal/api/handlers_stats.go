package api

import (
	"net/http"
)

func (s *Server) handleConvertStats(w http.ResponseWriter, r *http.Request) {
	if s.converter == nil || s.converter.Stats == nil {
		jsonError(w, "conversion service not configured", http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"url":   s.cfg.MinerUURL,
		"stats": s.converter.Stats.Snapshot(),
	})
}
