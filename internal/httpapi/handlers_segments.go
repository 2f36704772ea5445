package httpapi

import "net/http"

// HandleSegments lists every segment currently in the journal's chain.
func (h *Handler) HandleSegments(w http.ResponseWriter, _ *http.Request) {
	segments := h.j.Segments()
	resp := SegmentsResponse{
		Segments: make([]SegmentInfo, len(segments)),
		Count:    len(segments),
	}
	for i, s := range segments {
		resp.Segments[i] = SegmentInfo{ID: s.ID, State: s.State}
	}
	writeJSON(w, http.StatusOK, resp)
}
