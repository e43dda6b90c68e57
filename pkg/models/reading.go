package models

import (
	"encoding/json"
	"time"
)

// Reading entry values mark how a reading entered the system.
const (
	ReadingEntryAutomatic = "automatic"
	ReadingEntryManual    = "manual"
	ReadingEntryScheduled = "scheduled"
	ReadingEntryEdit      = "edit"
)

// Reading kind values.
const (
	ReadingKindUnique   = "unique"
	ReadingKindMultiple = "multiple"
	ReadingKindCustom   = "custom"
)

// Reading is a single telemetry measurement. UniqueID, when present, acts as
// an idempotency key within the owning identifier.
type Reading struct {
	ID         int64           `db:"id"         json:"id"`
	UniqueID   *int64          `db:"unique_id"  json:"unique_id,omitempty"`
	Identifier string          `db:"identifier" json:"identifier"`
	SensorID   int64           `db:"sensor_id"  json:"sensor_id"`
	Entry      string          `db:"entry"      json:"entry"`
	Kind       string          `db:"kind"       json:"kind"`
	Value      json.RawMessage `db:"value"      json:"value,omitempty"`
	Opened     bool            `db:"opened"     json:"opened"`
	Grouping   *string         `db:"grouping"   json:"grouping,omitempty"`
	Datetime   time.Time       `db:"datetime"   json:"datetime"`
	OpenedAt   *time.Time      `db:"opened_at"  json:"opened_at,omitempty"`
	ClosedAt   *time.Time      `db:"closed_at"  json:"closed_at,omitempty"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time       `db:"updated_at" json:"updated_at"`
}
