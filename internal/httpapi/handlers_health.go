package httpapi

import "net/http"

// HandleHealth returns admin API health and current segment count.
func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	segments := h.j.Segments()
	resp := HealthResponse{
		Status:       "healthy",
		SegmentCount: len(segments),
	}
	h.logger.Debug().Int("segment_count", len(segments)).Msg("health check")
	writeJSON(w, http.StatusOK, resp)
}
