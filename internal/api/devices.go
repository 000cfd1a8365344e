package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/devices-configuration/internal/device"
)

// deviceRequest is the body of PUT and PATCH /devices/{id}. Omitted facets
// are left untouched.
type deviceRequest struct {
	Ownership    *device.Ownership     `json:"ownership"`
	Location     optionalLocation      `json:"location"`
	OpeningHours *device.OpeningHours  `json:"opening_hours"`
	Settings     *device.SettingsPatch `json:"settings"`
}

// optionalLocation tells an omitted "location" key apart from an explicit
// null, which removes the location.
type optionalLocation struct {
	present bool
	null    bool
	input   device.LocationInput
}

func (o *optionalLocation) UnmarshalJSON(data []byte) error {
	o.present = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.null = true
		return nil
	}
	return json.Unmarshal(data, &o.input)
}

// toUpdate maps the request onto a device.Update. Only null removes the
// location; an object without any location field is rejected.
func (req deviceRequest) toUpdate() (device.Update, error) {
	u := device.Update{
		Ownership:    req.Ownership,
		OpeningHours: req.OpeningHours,
		Settings:     req.Settings,
	}

	if req.Location.present {
		if req.Location.null {
			u.ClearLocation = true
			return u, nil
		}
		loc, err := req.Location.input.ToLocation()
		if err != nil {
			return device.Update{}, err
		}
		if loc == nil {
			return device.Update{}, fmt.Errorf("%w: empty location, send null to remove it", device.ErrInvalidLocation)
		}
		u.Location = loc
	}

	return u, nil
}

// decodeDeviceRequest reads the body into an update. It writes the error
// response itself and reports false on failure.
func decodeDeviceRequest(w http.ResponseWriter, r *http.Request) (device.Update, bool) {
	var req deviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, ErrCodeRequestTooLarge, "request body too large")
		case device.IsValidationError(err):
			writeValidationError(w, err.Error())
		default:
			writeBadRequest(w, "invalid JSON body")
		}
		return device.Update{}, false
	}

	u, err := req.toUpdate()
	if err != nil {
		writeValidationError(w, err.Error())
		return device.Update{}, false
	}
	return u, true
}

// handleGetDevice returns a device's configuration.
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	cfg, found, err := s.service.Get(r.Context(), id)
	if err != nil {
		s.logger.Error("get device failed", "device_id", id, "error", err)
		writeInternalError(w, "failed to get device")
		return
	}
	if !found {
		writeNotFound(w, "device not found")
		return
	}

	writeJSON(w, http.StatusOK, cfg)
}

// handleCreateDevice creates or replaces a device.
func (s *Server) handleCreateDevice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	u, ok := decodeDeviceRequest(w, r)
	if !ok {
		return
	}

	cfg, err := s.service.CreateNewDevice(r.Context(), id, u)
	if err != nil {
		s.writeServiceError(w, id, err)
		return
	}

	writeJSON(w, http.StatusCreated, cfg)
}

// handleUpdateDevice applies a partial update to an existing device.
func (s *Server) handleUpdateDevice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	u, ok := decodeDeviceRequest(w, r)
	if !ok {
		return
	}

	cfg, found, err := s.service.Update(r.Context(), id, u)
	if err != nil {
		s.writeServiceError(w, id, err)
		return
	}
	if !found {
		writeNotFound(w, "device not found")
		return
	}

	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) writeServiceError(w http.ResponseWriter, id string, err error) {
	switch {
	case device.IsValidationError(err):
		writeValidationError(w, err.Error())
	case errors.Is(err, device.ErrConflict):
		writeConflict(w, "device was modified concurrently, reload and retry")
	default:
		s.logger.Error("device write failed", "device_id", id, "error", err)
		writeInternalError(w, "failed to save device")
	}
}
