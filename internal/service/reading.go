package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/zabecode/dac/internal/events"
	"github.com/zabecode/dac/internal/store"
	"github.com/zabecode/dac/pkg/models"
)

// ReadingService owns identifier-scoped reading CRUD and the gateway batch
// publish.
type ReadingService struct {
	store    store.Store
	notifier events.Notifier
}

func NewReadingService(s store.Store, n events.Notifier) *ReadingService {
	return &ReadingService{store: s, notifier: n}
}

// ListReadingsParams bounds and orders a reading list.
type ListReadingsParams struct {
	SensorID       *int64
	Limit          int
	OrderBy        string
	OrderDirection string
}

func (s *ReadingService) List(ctx context.Context, identifier string, p ListReadingsParams) ([]*models.Reading, error) {
	return s.store.ListReadings(ctx, store.ReadingFilter{
		Identifier:     identifier,
		SensorID:       p.SensorID,
		OrderBy:        p.OrderBy,
		OrderDirection: p.OrderDirection,
		Limit:          p.Limit,
	})
}

func (s *ReadingService) Get(ctx context.Context, id int64, identifier string) (*models.Reading, error) {
	return s.store.GetReading(ctx, id, identifier)
}

// CreateReadingParams holds input for a manually entered reading.
type CreateReadingParams struct {
	UniqueID *int64          `json:"unique_id"`
	SensorID int64           `json:"sensor_id"`
	Kind     string          `json:"kind"`
	Value    json.RawMessage `json:"value"`
	Opened   bool            `json:"opened"`
	Grouping *string         `json:"grouping"`
	Datetime time.Time       `json:"datetime"`
	OpenedAt *time.Time      `json:"opened_at"`
	ClosedAt *time.Time      `json:"closed_at"`
}

func (p CreateReadingParams) validate() error {
	f := fieldErrors{}
	if p.SensorID <= 0 {
		f["sensor_id"] = "is required"
	}
	if p.Datetime.IsZero() {
		f["datetime"] = "is required"
	}
	if p.UniqueID != nil && *p.UniqueID < 1 {
		f["unique_id"] = "must be at least 1"
	}
	if len(p.Kind) > 20 {
		f["kind"] = "must be at most 20 characters"
	}
	if p.Grouping != nil && len(*p.Grouping) > 50 {
		f["grouping"] = "must be at most 50 characters"
	}
	return f.err()
}

// Create stores a manual reading (entry is always "manual" on this path).
func (s *ReadingService) Create(ctx context.Context, identifier string, p CreateReadingParams) (*models.Reading, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	if _, err := s.store.GetSensor(ctx, p.SensorID, identifier); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, &ValidationError{Fields: map[string]string{"sensor_id": "sensor not found"}}
		}
		return nil, err
	}

	now := time.Now().UTC()
	reading := &models.Reading{
		UniqueID:   p.UniqueID,
		Identifier: identifier,
		SensorID:   p.SensorID,
		Entry:      models.ReadingEntryManual,
		Kind:       p.Kind,
		Value:      p.Value,
		Opened:     p.Opened,
		Grouping:   p.Grouping,
		Datetime:   p.Datetime,
		OpenedAt:   p.OpenedAt,
		ClosedAt:   p.ClosedAt,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if reading.Kind == "" {
		reading.Kind = models.ReadingKindUnique
	}

	if err := s.store.CreateReading(ctx, reading); err != nil {
		return nil, err
	}
	s.notifier.DashboardRefresh(ctx, identifier)
	return reading, nil
}

// UpdateReadingParams is a partial update; nil fields are left unchanged.
type UpdateReadingParams struct {
	Value    json.RawMessage `json:"value"`
	Opened   *bool           `json:"opened"`
	Grouping *string         `json:"grouping"`
	OpenedAt *time.Time      `json:"opened_at"`
	ClosedAt *time.Time      `json:"closed_at"`
}

func (p UpdateReadingParams) validate() error {
	f := fieldErrors{}
	if p.Grouping != nil && len(*p.Grouping) > 50 {
		f["grouping"] = "must be at most 50 characters"
	}
	return f.err()
}

// Update edits a reading; the entry mark changes to "edit".
func (s *ReadingService) Update(ctx context.Context, id int64, identifier string, p UpdateReadingParams) (*models.Reading, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	reading, err := s.store.GetReading(ctx, id, identifier)
	if err != nil {
		return nil, err
	}

	reading.Entry = models.ReadingEntryEdit
	if p.Value != nil {
		reading.Value = p.Value
	}
	if p.Opened != nil {
		reading.Opened = *p.Opened
	}
	if p.Grouping != nil {
		reading.Grouping = p.Grouping
	}
	if p.OpenedAt != nil {
		reading.OpenedAt = p.OpenedAt
	}
	if p.ClosedAt != nil {
		reading.ClosedAt = p.ClosedAt
	}

	if err := s.store.UpdateReading(ctx, reading); err != nil {
		return nil, err
	}
	s.notifier.DashboardRefresh(ctx, identifier)
	return reading, nil
}

func (s *ReadingService) Delete(ctx context.Context, id int64, identifier string) error {
	if err := s.store.DeleteReading(ctx, id, identifier); err != nil {
		return err
	}
	s.notifier.DashboardRefresh(ctx, identifier)
	return nil
}

// BatchReadingItem is one gateway-submitted reading. The wire field names
// match the gateway firmware contract.
type BatchReadingItem struct {
	UniqueID *int64          `json:"uniqueId"`
	SensorID int64           `json:"sensorId"`
	Kind     string          `json:"kind"`
	Value    json.RawMessage `json:"value"`
	Opened   bool            `json:"opened"`
	Grouping *string         `json:"grouping"`
	Datetime time.Time       `json:"datetime"`
	OpenedAt *time.Time      `json:"openedAt"`
	ClosedAt *time.Time      `json:"closedAt"`
}

// BatchSummary counts the outcome of every submitted item.
type BatchSummary struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Errors  int `json:"errors"`
}

// BatchPublish ingests gateway readings best-effort per item. An item with a
// known uniqueId updates the existing row in place; everything else inserts
// a new automatic reading. Failures are counted, logged, and never abort the
// rest of the batch.
func (s *ReadingService) BatchPublish(ctx context.Context, identifier string, items []BatchReadingItem) BatchSummary {
	summary := BatchSummary{}

	for i, item := range items {
		outcome, err := s.publishItem(ctx, identifier, item)
		if err != nil {
			summary.Errors++
			slog.Warn("batch reading failed",
				"identifier", identifier,
				"index", i,
				"sensor_id", item.SensorID,
				"error", err,
			)
			continue
		}
		if outcome == itemUpdated {
			summary.Updated++
		} else {
			summary.Created++
		}
	}

	if summary.Created > 0 || summary.Updated > 0 {
		s.notifier.DashboardRefresh(ctx, identifier)
	}
	return summary
}

type itemOutcome int

const (
	itemCreated itemOutcome = iota
	itemUpdated
)

func (s *ReadingService) publishItem(ctx context.Context, identifier string, item BatchReadingItem) (itemOutcome, error) {
	if item.SensorID <= 0 {
		return 0, &ValidationError{Fields: map[string]string{"sensorId": "is required"}}
	}
	if item.Datetime.IsZero() {
		return 0, &ValidationError{Fields: map[string]string{"datetime": "is required"}}
	}

	if item.UniqueID != nil {
		existing, err := s.store.GetReadingByUniqueID(ctx, identifier, *item.UniqueID)
		if err == nil {
			existing.Value = item.Value
			existing.Grouping = item.Grouping
			existing.Opened = item.Opened
			existing.OpenedAt = item.OpenedAt
			existing.ClosedAt = item.ClosedAt
			if err := s.store.UpdateReading(ctx, existing); err != nil {
				return 0, err
			}
			return itemUpdated, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return 0, err
		}
	}

	now := time.Now().UTC()
	reading := &models.Reading{
		UniqueID:   item.UniqueID,
		Identifier: identifier,
		SensorID:   item.SensorID,
		Entry:      models.ReadingEntryAutomatic,
		Kind:       item.Kind,
		Value:      item.Value,
		Opened:     item.Opened,
		Grouping:   item.Grouping,
		Datetime:   item.Datetime,
		OpenedAt:   item.OpenedAt,
		ClosedAt:   item.ClosedAt,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if reading.Kind == "" {
		reading.Kind = models.ReadingKindUnique
	}

	if err := s.store.CreateReading(ctx, reading); err != nil {
		return 0, err
	}
	return itemCreated, nil
}
