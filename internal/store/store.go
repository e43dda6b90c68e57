package store

import (
	"context"
	"errors"
	"time"

	"github.com/zabecode/dac/pkg/models"
)

var ErrNotFound = errors.New("resource not found")
var ErrDuplicateKey = errors.New("duplicate key violation")

// Store is the data access interface. All database operations go through here.
type Store interface {
	Ping(ctx context.Context) error

	CreateAPIKey(ctx context.Context, key *models.APIKey) error
	GetAPIKey(ctx context.Context, id int64) (*models.APIKey, error)
	GetAPIKeysByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error)
	ListAPIKeysForUser(ctx context.Context, userID int64) ([]*models.APIKey, error)
	UpdateAPIKey(ctx context.Context, key *models.APIKey) error
	TouchAPIKey(ctx context.Context, id int64, usedAt time.Time) error
	DeleteAPIKey(ctx context.Context, id int64) error

	CreateDevice(ctx context.Context, d *models.Device) error
	GetDevice(ctx context.Context, id int64, identifier string) (*models.Device, error)
	GetDeviceByMAC(ctx context.Context, identifier, mac string) (*models.Device, error)
	ListDevices(ctx context.Context, identifier string) ([]*models.Device, error)
	UpdateDevice(ctx context.Context, d *models.Device) error
	DeleteDevice(ctx context.Context, id int64, identifier string) error

	CreateSensor(ctx context.Context, s *models.Sensor) error
	GetSensor(ctx context.Context, id int64, identifier string) (*models.Sensor, error)
	GetSensorByCode(ctx context.Context, identifier string, deviceID int64, code int) (*models.Sensor, error)
	ListSensors(ctx context.Context, identifier string, deviceID *int64) ([]*models.Sensor, error)
	UpdateSensor(ctx context.Context, s *models.Sensor) error
	DeleteSensor(ctx context.Context, id int64, identifier string) error

	CreateReading(ctx context.Context, r *models.Reading) error
	GetReading(ctx context.Context, id int64, identifier string) (*models.Reading, error)
	GetReadingByUniqueID(ctx context.Context, identifier string, uniqueID int64) (*models.Reading, error)
	ListReadings(ctx context.Context, filter ReadingFilter) ([]*models.Reading, error)
	UpdateReading(ctx context.Context, r *models.Reading) error
	DeleteReading(ctx context.Context, id int64, identifier string) error
}

// ReadingFilter bounds and orders a reading list query. Zero values fall back
// to the defaults (datetime desc, limit 50).
type ReadingFilter struct {
	Identifier     string
	SensorID       *int64
	OrderBy        string
	OrderDirection string
	Limit          int
}
