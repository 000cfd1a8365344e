package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/devices-configuration/internal/audit"
)

// handleListDeviceEvents returns a device's recorded events, newest first.
// Query parameters: event_type, limit, offset.
func (s *Server) handleListDeviceEvents(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	q := r.URL.Query()

	filter := audit.Filter{
		DeviceID:  id,
		EventType: q.Get("event_type"),
	}

	var err error
	if v := q.Get("limit"); v != "" {
		if filter.Limit, err = strconv.Atoi(v); err != nil || filter.Limit < 0 {
			writeBadRequest(w, "limit must be a non-negative integer")
			return
		}
	}
	if v := q.Get("offset"); v != "" {
		if filter.Offset, err = strconv.Atoi(v); err != nil || filter.Offset < 0 {
			writeBadRequest(w, "offset must be a non-negative integer")
			return
		}
	}

	res, err := s.history.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("listing device events failed", "device_id", id, "error", err)
		writeInternalError(w, "failed to list device events")
		return
	}

	writeJSON(w, http.StatusOK, res)
}
