package handler

import (
	"net/http"

	"github.com/zabecode/dac/internal/api/response"
	"github.com/zabecode/dac/internal/service"
)

// ReadingHandler serves reading CRUD and the gateway batch endpoint.
type ReadingHandler struct {
	svc *service.ReadingService
}

func NewReadingHandler(svc *service.ReadingService) *ReadingHandler {
	return &ReadingHandler{svc: svc}
}

// List handles GET /api/v1/readings. Optional query parameters: sensorId,
// limit, orderBy, orderDirection.
func (h *ReadingHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := identifier(w, r)
	if !ok {
		return
	}
	readings, err := h.svc.List(r.Context(), id, service.ListReadingsParams{
		SensorID:       queryInt64(r, "sensorId"),
		Limit:          queryInt(r, "limit"),
		OrderBy:        r.URL.Query().Get("orderBy"),
		OrderDirection: r.URL.Query().Get("orderDirection"),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.JSON(w, readings)
}

// Get handles GET /api/v1/readings/{readingID}.
func (h *ReadingHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := identifier(w, r)
	if !ok {
		return
	}
	readingID, ok := pathID(w, r, "readingID")
	if !ok {
		return
	}
	reading, err := h.svc.Get(r.Context(), readingID, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.JSON(w, reading)
}

// Create handles POST /api/v1/readings.
func (h *ReadingHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := identifier(w, r)
	if !ok {
		return
	}
	var params service.CreateReadingParams
	if !decodeJSON(w, r, &params) {
		return
	}
	reading, err := h.svc.Create(r.Context(), id, params)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.Created(w, reading)
}

// Update handles PUT /api/v1/readings/{readingID}.
func (h *ReadingHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := identifier(w, r)
	if !ok {
		return
	}
	readingID, ok := pathID(w, r, "readingID")
	if !ok {
		return
	}
	var params service.UpdateReadingParams
	if !decodeJSON(w, r, &params) {
		return
	}
	reading, err := h.svc.Update(r.Context(), readingID, id, params)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.JSON(w, reading)
}

// Delete handles DELETE /api/v1/readings/{readingID}.
func (h *ReadingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := identifier(w, r)
	if !ok {
		return
	}
	readingID, ok := pathID(w, r, "readingID")
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), readingID, id); err != nil {
		writeServiceError(w, err)
		return
	}
	response.NoContent(w)
}

type batchRequest struct {
	Readings []service.BatchReadingItem `json:"readings"`
}

// BatchPublish handles POST /api/v1/dac/readings/batch. The response is a
// per-item outcome summary; a batch with failures still returns 200.
func (h *ReadingHandler) BatchPublish(w http.ResponseWriter, r *http.Request) {
	id, ok := identifier(w, r)
	if !ok {
		return
	}
	var req batchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	summary := h.svc.BatchPublish(r.Context(), id, req.Readings)
	response.JSON(w, summary)
}
