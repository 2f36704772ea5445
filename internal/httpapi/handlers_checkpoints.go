package httpapi

import "net/http"

// HandleListCheckpoints lists every currently live checkpoint id.
func (h *Handler) HandleListCheckpoints(w http.ResponseWriter, _ *http.Request) {
	ids := h.j.CheckpointIDs()
	writeJSON(w, http.StatusOK, CheckpointsResponse{CheckpointIDs: ids, Count: len(ids)})
}

// HandleRegisterCheckpoint marks the current tail segment as a checkpoint
// boundary.
func (h *Handler) HandleRegisterCheckpoint(w http.ResponseWriter, _ *http.Request) {
	id, err := h.j.RegisterCheckpoint()
	if err != nil {
		h.logger.Error().Err(err).Msg("register checkpoint failed")
		writeError(w, statusFor(err), err.Error(), "checkpoint_failed")
		return
	}
	writeJSON(w, http.StatusCreated, CheckpointResponse{ID: id})
}

// HandleGC reclaims every segment older than the oldest live checkpoint.
func (h *Handler) HandleGC(w http.ResponseWriter, _ *http.Request) {
	if err := h.j.CheckCheckpoint(); err != nil {
		h.logger.Error().Err(err).Msg("gc failed")
		writeError(w, statusFor(err), err.Error(), "gc_failed")
		return
	}
	writeJSON(w, http.StatusOK, GCResponse{Success: true})
}
