package models

import "time"

// Device is a field gateway unit, unique per (identifier, mac).
type Device struct {
	ID               int64          `db:"id"                 json:"id"`
	Identifier       string         `db:"identifier"         json:"identifier"`
	MAC              string         `db:"mac"                json:"mac"`
	LastIP           *string        `db:"last_ip"            json:"last_ip,omitempty"`
	Active           bool           `db:"active"             json:"active"`
	Description      *string        `db:"description"        json:"description,omitempty"`
	Metadata         map[string]any `db:"metadata"           json:"metadata,omitempty"`
	LastConnectionAt *time.Time     `db:"last_connection_at" json:"last_connection_at,omitempty"`
	CreatedAt        time.Time      `db:"created_at"         json:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"         json:"updated_at"`

	Sensors []*Sensor `db:"-" json:"sensors,omitempty"`
}
