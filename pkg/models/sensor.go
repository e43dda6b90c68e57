package models

import "time"

// Sensor kinds describe how a sensor is attached to its device.
const (
	SensorKindModbus = "modbus"
	SensorKindMQTT   = "mqtt"
	SensorKindHTTP   = "http"
	SensorKindCustom = "custom"
)

// Sensor belongs to a device and is unique per (identifier, device_id, code).
type Sensor struct {
	ID               int64          `db:"id"                 json:"id"`
	Identifier       string         `db:"identifier"         json:"identifier"`
	DeviceID         int64          `db:"device_id"          json:"device_id"`
	Code             int            `db:"code"               json:"code"`
	Name             string         `db:"name"               json:"name"`
	Description      *string        `db:"description"        json:"description,omitempty"`
	Active           bool           `db:"active"             json:"active"`
	Kind             string         `db:"kind"               json:"kind"`
	Metadata         map[string]any `db:"metadata"           json:"metadata,omitempty"`
	LastConnectionAt *time.Time     `db:"last_connection_at" json:"last_connection_at,omitempty"`
	CreatedAt        time.Time      `db:"created_at"         json:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"         json:"updated_at"`
}
