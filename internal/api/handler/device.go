package handler

import (
	"net/http"

	"github.com/zabecode/dac/internal/api/response"
	"github.com/zabecode/dac/internal/service"
)

// DeviceHandler serves device CRUD and the gateway publish endpoint.
type DeviceHandler struct {
	svc *service.DeviceService
}

func NewDeviceHandler(svc *service.DeviceService) *DeviceHandler {
	return &DeviceHandler{svc: svc}
}

// List handles GET /api/v1/devices.
func (h *DeviceHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := identifier(w, r)
	if !ok {
		return
	}
	devices, err := h.svc.List(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.JSON(w, devices)
}

// Get handles GET /api/v1/devices/{deviceID}.
func (h *DeviceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := identifier(w, r)
	if !ok {
		return
	}
	deviceID, ok := pathID(w, r, "deviceID")
	if !ok {
		return
	}
	device, err := h.svc.Get(r.Context(), deviceID, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.JSON(w, device)
}

// Create handles POST /api/v1/devices.
func (h *DeviceHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := identifier(w, r)
	if !ok {
		return
	}
	var params service.CreateDeviceParams
	if !decodeJSON(w, r, &params) {
		return
	}
	device, err := h.svc.Create(r.Context(), id, params)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.Created(w, device)
}

// Update handles PUT /api/v1/devices/{deviceID}.
func (h *DeviceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := identifier(w, r)
	if !ok {
		return
	}
	deviceID, ok := pathID(w, r, "deviceID")
	if !ok {
		return
	}
	var params service.UpdateDeviceParams
	if !decodeJSON(w, r, &params) {
		return
	}
	device, err := h.svc.Update(r.Context(), deviceID, id, params)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.JSON(w, device)
}

// Delete handles DELETE /api/v1/devices/{deviceID}.
func (h *DeviceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := identifier(w, r)
	if !ok {
		return
	}
	deviceID, ok := pathID(w, r, "deviceID")
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), deviceID, id); err != nil {
		writeServiceError(w, err)
		return
	}
	response.NoContent(w)
}

// Publish handles POST /api/v1/dac/devices/publish, the gateway device and
// sensor upsert.
func (h *DeviceHandler) Publish(w http.ResponseWriter, r *http.Request) {
	id, ok := identifier(w, r)
	if !ok {
		return
	}
	var payload service.PublishPayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	device, err := h.svc.Publish(r.Context(), id, payload)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.JSON(w, map[string]any{"success": true, "device_id": device.ID})
}
