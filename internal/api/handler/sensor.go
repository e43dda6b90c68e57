package handler

import (
	"net/http"

	"github.com/zabecode/dac/internal/api/response"
	"github.com/zabecode/dac/internal/service"
)

// SensorHandler serves sensor CRUD.
type SensorHandler struct {
	svc *service.SensorService
}

func NewSensorHandler(svc *service.SensorService) *SensorHandler {
	return &SensorHandler{svc: svc}
}

// List handles GET /api/v1/sensors. An optional deviceId query parameter
// narrows the list to one device.
func (h *SensorHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := identifier(w, r)
	if !ok {
		return
	}
	sensors, err := h.svc.List(r.Context(), id, queryInt64(r, "deviceId"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.JSON(w, sensors)
}

// Get handles GET /api/v1/sensors/{sensorID}.
func (h *SensorHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := identifier(w, r)
	if !ok {
		return
	}
	sensorID, ok := pathID(w, r, "sensorID")
	if !ok {
		return
	}
	sensor, err := h.svc.Get(r.Context(), sensorID, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.JSON(w, sensor)
}

// Create handles POST /api/v1/sensors.
func (h *SensorHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := identifier(w, r)
	if !ok {
		return
	}
	var params service.CreateSensorParams
	if !decodeJSON(w, r, &params) {
		return
	}
	sensor, err := h.svc.Create(r.Context(), id, params)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.Created(w, sensor)
}

// Update handles PUT /api/v1/sensors/{sensorID}.
func (h *SensorHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := identifier(w, r)
	if !ok {
		return
	}
	sensorID, ok := pathID(w, r, "sensorID")
	if !ok {
		return
	}
	var params service.UpdateSensorParams
	if !decodeJSON(w, r, &params) {
		return
	}
	sensor, err := h.svc.Update(r.Context(), sensorID, id, params)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.JSON(w, sensor)
}

// Delete handles DELETE /api/v1/sensors/{sensorID}.
func (h *SensorHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := identifier(w, r)
	if !ok {
		return
	}
	sensorID, ok := pathID(w, r, "sensorID")
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), sensorID, id); err != nil {
		writeServiceError(w, err)
		return
	}
	response.NoContent(w)
}
