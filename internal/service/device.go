package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/zabecode/dac/internal/events"
	"github.com/zabecode/dac/internal/store"
	"github.com/zabecode/dac/pkg/models"
)

// DeviceService owns identifier-scoped device CRUD and the gateway publish
// upsert.
type DeviceService struct {
	store    store.Store
	notifier events.Notifier
}

func NewDeviceService(s store.Store, n events.Notifier) *DeviceService {
	return &DeviceService{store: s, notifier: n}
}

// List returns all devices for an identifier with their sensors attached.
func (s *DeviceService) List(ctx context.Context, identifier string) ([]*models.Device, error) {
	devices, err := s.store.ListDevices(ctx, identifier)
	if err != nil {
		return nil, err
	}

	sensors, err := s.store.ListSensors(ctx, identifier, nil)
	if err != nil {
		return nil, err
	}
	byDevice := map[int64][]*models.Sensor{}
	for _, sn := range sensors {
		byDevice[sn.DeviceID] = append(byDevice[sn.DeviceID], sn)
	}
	for _, d := range devices {
		d.Sensors = byDevice[d.ID]
	}
	return devices, nil
}

// Get returns a single device scoped by identifier, sensors attached.
func (s *DeviceService) Get(ctx context.Context, id int64, identifier string) (*models.Device, error) {
	device, err := s.store.GetDevice(ctx, id, identifier)
	if err != nil {
		return nil, err
	}
	device.Sensors, err = s.store.ListSensors(ctx, identifier, &device.ID)
	if err != nil {
		return nil, err
	}
	return device, nil
}

// CreateDeviceParams holds input for a manually created device.
type CreateDeviceParams struct {
	MAC         string         `json:"mac"`
	LastIP      *string        `json:"last_ip"`
	Active      *bool          `json:"active"`
	Description *string        `json:"description"`
	Metadata    map[string]any `json:"metadata"`
}

func (p CreateDeviceParams) validate() error {
	f := fieldErrors{}
	if p.MAC == "" || len(p.MAC) > 17 {
		f["mac"] = "is required and must be at most 17 characters"
	}
	if p.LastIP != nil && len(*p.LastIP) > 45 {
		f["last_ip"] = "must be at most 45 characters"
	}
	if p.Description != nil && len(*p.Description) > 255 {
		f["description"] = "must be at most 255 characters"
	}
	return f.err()
}

func (s *DeviceService) Create(ctx context.Context, identifier string, p CreateDeviceParams) (*models.Device, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	device := &models.Device{
		Identifier:  identifier,
		MAC:         p.MAC,
		LastIP:      p.LastIP,
		Active:      true,
		Description: p.Description,
		Metadata:    p.Metadata,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if p.Active != nil {
		device.Active = *p.Active
	}

	if err := s.store.CreateDevice(ctx, device); err != nil {
		return nil, err
	}
	s.notifier.DashboardRefresh(ctx, identifier)
	return device, nil
}

// UpdateDeviceParams is a partial update; nil fields are left unchanged.
type UpdateDeviceParams struct {
	MAC         *string        `json:"mac"`
	LastIP      *string        `json:"last_ip"`
	Active      *bool          `json:"active"`
	Description *string        `json:"description"`
	Metadata    map[string]any `json:"metadata"`
}

func (p UpdateDeviceParams) validate() error {
	f := fieldErrors{}
	if p.MAC != nil && (*p.MAC == "" || len(*p.MAC) > 17) {
		f["mac"] = "must be between 1 and 17 characters"
	}
	if p.LastIP != nil && len(*p.LastIP) > 45 {
		f["last_ip"] = "must be at most 45 characters"
	}
	if p.Description != nil && len(*p.Description) > 255 {
		f["description"] = "must be at most 255 characters"
	}
	return f.err()
}

func (s *DeviceService) Update(ctx context.Context, id int64, identifier string, p UpdateDeviceParams) (*models.Device, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	device, err := s.store.GetDevice(ctx, id, identifier)
	if err != nil {
		return nil, err
	}

	if p.MAC != nil {
		device.MAC = *p.MAC
	}
	if p.LastIP != nil {
		device.LastIP = p.LastIP
	}
	if p.Active != nil {
		device.Active = *p.Active
	}
	if p.Description != nil {
		device.Description = p.Description
	}
	if p.Metadata != nil {
		device.Metadata = p.Metadata
	}

	if err := s.store.UpdateDevice(ctx, device); err != nil {
		return nil, err
	}
	s.notifier.DashboardRefresh(ctx, identifier)
	return device, nil
}

func (s *DeviceService) Delete(ctx context.Context, id int64, identifier string) error {
	if err := s.store.DeleteDevice(ctx, id, identifier); err != nil {
		return err
	}
	s.notifier.DashboardRefresh(ctx, identifier)
	return nil
}

// PublishPayload is the gateway's device+sensors upsert submission.
type PublishPayload struct {
	Device  PublishDevice   `json:"device"`
	Sensors []PublishSensor `json:"sensors"`
}

type PublishDevice struct {
	MAC     string         `json:"mac"`
	IP      string         `json:"ip"`
	Metrics map[string]any `json:"metrics"`
}

type PublishSensor struct {
	Code        int    `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Kind        string `json:"kind"`
	Metric      any    `json:"metric"`
	Meta        any    `json:"meta"`
}

// Publish upserts a device by (identifier, mac) and then each submitted
// sensor by (identifier, device, code). A sensor-level failure is logged and
// skipped; the already-committed device upsert stands.
func (s *DeviceService) Publish(ctx context.Context, identifier string, p PublishPayload) (*models.Device, error) {
	if p.Device.MAC == "" || len(p.Device.MAC) > 17 {
		return nil, &ValidationError{Fields: map[string]string{
			"device.mac": "is required and must be at most 17 characters",
		}}
	}

	now := time.Now().UTC()
	device, err := s.store.GetDeviceByMAC(ctx, identifier, p.Device.MAC)
	switch {
	case errors.Is(err, store.ErrNotFound):
		var metadata map[string]any
		if p.Device.Metrics != nil {
			metadata = map[string]any{"metrics": p.Device.Metrics}
		}
		device = &models.Device{
			Identifier:       identifier,
			MAC:              p.Device.MAC,
			Active:           true,
			Metadata:         metadata,
			LastConnectionAt: &now,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if p.Device.IP != "" {
			device.LastIP = &p.Device.IP
		}
		if err := s.store.CreateDevice(ctx, device); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		if p.Device.IP != "" {
			device.LastIP = &p.Device.IP
		}
		device.LastConnectionAt = &now
		if p.Device.Metrics != nil {
			if device.Metadata == nil {
				device.Metadata = map[string]any{}
			}
			device.Metadata["metrics"] = p.Device.Metrics
		}
		if err := s.store.UpdateDevice(ctx, device); err != nil {
			return nil, err
		}
	}

	for _, sp := range p.Sensors {
		if err := s.publishSensor(ctx, identifier, device.ID, sp, now); err != nil {
			slog.Warn("sensor publish failed",
				"identifier", identifier,
				"device_id", device.ID,
				"code", sp.Code,
				"error", err,
			)
		}
	}

	s.notifier.DashboardRefresh(ctx, identifier)
	return device, nil
}

func (s *DeviceService) publishSensor(ctx context.Context, identifier string, deviceID int64, sp PublishSensor, now time.Time) error {
	if sp.Code < 1 {
		return &ValidationError{Fields: map[string]string{"code": "must be at least 1"}}
	}

	sensor, err := s.store.GetSensorByCode(ctx, identifier, deviceID, sp.Code)
	if errors.Is(err, store.ErrNotFound) {
		name := sp.Name
		if name == "" {
			name = fmt.Sprintf("Sensor %d", sp.Code)
		}
		kind := sp.Kind
		if kind == "" {
			kind = models.SensorKindCustom
		}
		sensor = &models.Sensor{
			Identifier:       identifier,
			DeviceID:         deviceID,
			Code:             sp.Code,
			Name:             name,
			Active:           true,
			Kind:             kind,
			Metadata:         map[string]any{"metric": sp.Metric, "meta": sp.Meta},
			LastConnectionAt: &now,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if sp.Description != "" {
			sensor.Description = &sp.Description
		}
		return s.store.CreateSensor(ctx, sensor)
	}
	if err != nil {
		return err
	}

	if sensor.Metadata == nil {
		sensor.Metadata = map[string]any{}
	}
	sensor.Metadata["metric"] = sp.Metric
	sensor.Metadata["meta"] = sp.Meta
	sensor.LastConnectionAt = &now
	return s.store.UpdateSensor(ctx, sensor)
}
