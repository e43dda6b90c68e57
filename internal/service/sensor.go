package service

import (
	"context"
	"errors"
	"time"

	"github.com/zabecode/dac/internal/events"
	"github.com/zabecode/dac/internal/store"
	"github.com/zabecode/dac/pkg/models"
)

// SensorService owns identifier-scoped sensor CRUD.
type SensorService struct {
	store    store.Store
	notifier events.Notifier
}

func NewSensorService(s store.Store, n events.Notifier) *SensorService {
	return &SensorService{store: s, notifier: n}
}

// List returns sensors for an identifier, optionally filtered to one device.
func (s *SensorService) List(ctx context.Context, identifier string, deviceID *int64) ([]*models.Sensor, error) {
	return s.store.ListSensors(ctx, identifier, deviceID)
}

func (s *SensorService) Get(ctx context.Context, id int64, identifier string) (*models.Sensor, error) {
	return s.store.GetSensor(ctx, id, identifier)
}

// CreateSensorParams holds input for a manually created sensor.
type CreateSensorParams struct {
	DeviceID    int64          `json:"device_id"`
	Code        int            `json:"code"`
	Name        string         `json:"name"`
	Description *string        `json:"description"`
	Active      *bool          `json:"active"`
	Kind        string         `json:"kind"`
	Metadata    map[string]any `json:"metadata"`
}

func (p CreateSensorParams) validate() error {
	f := fieldErrors{}
	if p.DeviceID <= 0 {
		f["device_id"] = "is required"
	}
	if p.Code < 1 {
		f["code"] = "must be at least 1"
	}
	if p.Name == "" || len(p.Name) > 100 {
		f["name"] = "is required and must be at most 100 characters"
	}
	if p.Description != nil && len(*p.Description) > 180 {
		f["description"] = "must be at most 180 characters"
	}
	if len(p.Kind) > 30 {
		f["kind"] = "must be at most 30 characters"
	}
	return f.err()
}

func (s *SensorService) Create(ctx context.Context, identifier string, p CreateSensorParams) (*models.Sensor, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	// The device must belong to the same identifier; a cross-tenant device id
	// behaves as if the device does not exist.
	if _, err := s.store.GetDevice(ctx, p.DeviceID, identifier); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, &ValidationError{Fields: map[string]string{"device_id": "device not found"}}
		}
		return nil, err
	}

	now := time.Now().UTC()
	sensor := &models.Sensor{
		Identifier:  identifier,
		DeviceID:    p.DeviceID,
		Code:        p.Code,
		Name:        p.Name,
		Description: p.Description,
		Active:      true,
		Kind:        p.Kind,
		Metadata:    p.Metadata,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if p.Active != nil {
		sensor.Active = *p.Active
	}
	if sensor.Kind == "" {
		sensor.Kind = models.SensorKindCustom
	}

	if err := s.store.CreateSensor(ctx, sensor); err != nil {
		return nil, err
	}
	s.notifier.DashboardRefresh(ctx, identifier)
	return sensor, nil
}

// UpdateSensorParams is a partial update; nil fields are left unchanged.
type UpdateSensorParams struct {
	DeviceID    *int64         `json:"device_id"`
	Code        *int           `json:"code"`
	Name        *string        `json:"name"`
	Description *string        `json:"description"`
	Active      *bool          `json:"active"`
	Kind        *string        `json:"kind"`
	Metadata    map[string]any `json:"metadata"`
}

func (p UpdateSensorParams) validate() error {
	f := fieldErrors{}
	if p.DeviceID != nil && *p.DeviceID <= 0 {
		f["device_id"] = "must be a valid device id"
	}
	if p.Code != nil && *p.Code < 1 {
		f["code"] = "must be at least 1"
	}
	if p.Name != nil && (*p.Name == "" || len(*p.Name) > 100) {
		f["name"] = "must be between 1 and 100 characters"
	}
	if p.Description != nil && len(*p.Description) > 180 {
		f["description"] = "must be at most 180 characters"
	}
	if p.Kind != nil && len(*p.Kind) > 30 {
		f["kind"] = "must be at most 30 characters"
	}
	return f.err()
}

func (s *SensorService) Update(ctx context.Context, id int64, identifier string, p UpdateSensorParams) (*models.Sensor, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	sensor, err := s.store.GetSensor(ctx, id, identifier)
	if err != nil {
		return nil, err
	}

	if p.DeviceID != nil {
		if _, err := s.store.GetDevice(ctx, *p.DeviceID, identifier); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, &ValidationError{Fields: map[string]string{"device_id": "device not found"}}
			}
			return nil, err
		}
		sensor.DeviceID = *p.DeviceID
	}
	if p.Code != nil {
		sensor.Code = *p.Code
	}
	if p.Name != nil {
		sensor.Name = *p.Name
	}
	if p.Description != nil {
		sensor.Description = p.Description
	}
	if p.Active != nil {
		sensor.Active = *p.Active
	}
	if p.Kind != nil {
		sensor.Kind = *p.Kind
	}
	if p.Metadata != nil {
		sensor.Metadata = p.Metadata
	}

	if err := s.store.UpdateSensor(ctx, sensor); err != nil {
		return nil, err
	}
	s.notifier.DashboardRefresh(ctx, identifier)
	return sensor, nil
}

func (s *SensorService) Delete(ctx context.Context, id int64, identifier string) error {
	if err := s.store.DeleteSensor(ctx, id, identifier); err != nil {
		return err
	}
	s.notifier.DashboardRefresh(ctx, identifier)
	return nil
}
