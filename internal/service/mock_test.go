package service_test

import (
	"context"
	"time"

	"github.com/zabecode/dac/internal/store"
	"github.com/zabecode/dac/pkg/models"
)

// --- In-memory store ---

// memStore implements store.Store with the same scoping and uniqueness rules
// as the Postgres store.
type memStore struct {
	nextID   int64
	keys     []*models.APIKey
	devices  []*models.Device
	sensors  []*models.Sensor
	readings []*models.Reading

	touched []int64
}

var _ store.Store = (*memStore)(nil)

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) Ping(_ context.Context) error { return nil }

func (m *memStore) CreateAPIKey(_ context.Context, key *models.APIKey) error {
	for _, k := range m.keys {
		if k.Prefix == key.Prefix {
			return store.ErrDuplicateKey
		}
	}
	key.ID = m.id()
	m.keys = append(m.keys, key)
	return nil
}

func (m *memStore) GetAPIKey(_ context.Context, id int64) (*models.APIKey, error) {
	for _, k := range m.keys {
		if k.ID == id {
			return k, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memStore) GetAPIKeysByPrefix(_ context.Context, prefix string) ([]*models.APIKey, error) {
	var out []*models.APIKey
	for _, k := range m.keys {
		if k.Prefix == prefix && k.IsActive {
			out = append(out, k)
		}
	}
	return out, nil
}

func (m *memStore) ListAPIKeysForUser(_ context.Context, userID int64) ([]*models.APIKey, error) {
	var out []*models.APIKey
	for _, k := range m.keys {
		if k.UserID != nil && *k.UserID == userID {
			out = append(out, k)
		}
	}
	return out, nil
}

func (m *memStore) UpdateAPIKey(_ context.Context, key *models.APIKey) error {
	for i, k := range m.keys {
		if k.ID == key.ID {
			m.keys[i] = key
			return nil
		}
	}
	return store.ErrNotFound
}

func (m *memStore) TouchAPIKey(_ context.Context, id int64, usedAt time.Time) error {
	for _, k := range m.keys {
		if k.ID == id {
			k.LastUsedAt = &usedAt
			m.touched = append(m.touched, id)
			return nil
		}
	}
	return store.ErrNotFound
}

func (m *memStore) DeleteAPIKey(_ context.Context, id int64) error {
	for i, k := range m.keys {
		if k.ID == id {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (m *memStore) CreateDevice(_ context.Context, d *models.Device) error {
	for _, existing := range m.devices {
		if existing.Identifier == d.Identifier && existing.MAC == d.MAC {
			return store.ErrDuplicateKey
		}
	}
	d.ID = m.id()
	m.devices = append(m.devices, d)
	return nil
}

func (m *memStore) GetDevice(_ context.Context, id int64, identifier string) (*models.Device, error) {
	for _, d := range m.devices {
		if d.ID == id && d.Identifier == identifier {
			return d, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memStore) GetDeviceByMAC(_ context.Context, identifier, mac string) (*models.Device, error) {
	for _, d := range m.devices {
		if d.Identifier == identifier && d.MAC == mac {
			return d, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memStore) ListDevices(_ context.Context, identifier string) ([]*models.Device, error) {
	var out []*models.Device
	for _, d := range m.devices {
		if d.Identifier == identifier {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *memStore) UpdateDevice(_ context.Context, d *models.Device) error {
	for i, existing := range m.devices {
		if existing.ID == d.ID && existing.Identifier == d.Identifier {
			m.devices[i] = d
			return nil
		}
	}
	return store.ErrNotFound
}

func (m *memStore) DeleteDevice(_ context.Context, id int64, identifier string) error {
	for i, d := range m.devices {
		if d.ID == id && d.Identifier == identifier {
			m.devices = append(m.devices[:i], m.devices[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (m *memStore) CreateSensor(_ context.Context, s *models.Sensor) error {
	for _, existing := range m.sensors {
		if existing.Identifier == s.Identifier && existing.DeviceID == s.DeviceID && existing.Code == s.Code {
			return store.ErrDuplicateKey
		}
	}
	s.ID = m.id()
	m.sensors = append(m.sensors, s)
	return nil
}

func (m *memStore) GetSensor(_ context.Context, id int64, identifier string) (*models.Sensor, error) {
	for _, s := range m.sensors {
		if s.ID == id && s.Identifier == identifier {
			return s, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memStore) GetSensorByCode(_ context.Context, identifier string, deviceID int64, code int) (*models.Sensor, error) {
	for _, s := range m.sensors {
		if s.Identifier == identifier && s.DeviceID == deviceID && s.Code == code {
			return s, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memStore) ListSensors(_ context.Context, identifier string, deviceID *int64) ([]*models.Sensor, error) {
	var out []*models.Sensor
	for _, s := range m.sensors {
		if s.Identifier != identifier {
			continue
		}
		if deviceID != nil && s.DeviceID != *deviceID {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (m *memStore) UpdateSensor(_ context.Context, s *models.Sensor) error {
	for i, existing := range m.sensors {
		if existing.ID == s.ID && existing.Identifier == s.Identifier {
			m.sensors[i] = s
			return nil
		}
	}
	return store.ErrNotFound
}

func (m *memStore) DeleteSensor(_ context.Context, id int64, identifier string) error {
	for i, s := range m.sensors {
		if s.ID == id && s.Identifier == identifier {
			m.sensors = append(m.sensors[:i], m.sensors[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (m *memStore) CreateReading(_ context.Context, r *models.Reading) error {
	if r.UniqueID != nil {
		for _, existing := range m.readings {
			if existing.Identifier == r.Identifier && existing.UniqueID != nil && *existing.UniqueID == *r.UniqueID {
				return store.ErrDuplicateKey
			}
		}
	}
	r.ID = m.id()
	m.readings = append(m.readings, r)
	return nil
}

func (m *memStore) GetReading(_ context.Context, id int64, identifier string) (*models.Reading, error) {
	for _, r := range m.readings {
		if r.ID == id && r.Identifier == identifier {
			return r, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memStore) GetReadingByUniqueID(_ context.Context, identifier string, uniqueID int64) (*models.Reading, error) {
	for _, r := range m.readings {
		if r.Identifier == identifier && r.UniqueID != nil && *r.UniqueID == uniqueID {
			return r, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memStore) ListReadings(_ context.Context, filter store.ReadingFilter) ([]*models.Reading, error) {
	var out []*models.Reading
	for _, r := range m.readings {
		if r.Identifier != filter.Identifier {
			continue
		}
		if filter.SensorID != nil && r.SensorID != *filter.SensorID {
			continue
		}
		out = append(out, r)
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (m *memStore) UpdateReading(_ context.Context, r *models.Reading) error {
	for i, existing := range m.readings {
		if existing.ID == r.ID && existing.Identifier == r.Identifier {
			m.readings[i] = r
			return nil
		}
	}
	return store.ErrNotFound
}

func (m *memStore) DeleteReading(_ context.Context, id int64, identifier string) error {
	for i, r := range m.readings {
		if r.ID == id && r.Identifier == identifier {
			m.readings = append(m.readings[:i], m.readings[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

// --- Notifier spy ---

type spyNotifier struct {
	refreshes []string
}

func (n *spyNotifier) DashboardRefresh(_ context.Context, identifier string) {
	n.refreshes = append(n.refreshes, identifier)
}
