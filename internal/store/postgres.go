package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/zabecode/dac/pkg/models"
)

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

// --- API Keys ---

const apiKeyColumns = `id, code, identifier, name, prefix, key_hash, user_id, permissions, is_active, last_used_at, expires_at, created_at, updated_at`

func scanAPIKey(row rowScanner) (*models.APIKey, error) {
	var k models.APIKey
	var permissions []byte
	if err := row.Scan(&k.ID, &k.Code, &k.Identifier, &k.Name, &k.Prefix, &k.KeyHash,
		&k.UserID, &permissions, &k.IsActive, &k.LastUsedAt, &k.ExpiresAt,
		&k.CreatedAt, &k.UpdatedAt); err != nil {
		return nil, err
	}
	k.Permissions = decodeStrings(permissions)
	return &k, nil
}

func (s *PostgresStore) CreateAPIKey(ctx context.Context, key *models.APIKey) error {
	permissions, err := encodeStrings(key.Permissions)
	if err != nil {
		return fmt.Errorf("encode permissions: %w", err)
	}
	err = s.pool.QueryRow(ctx,
		`INSERT INTO api_keys (code, identifier, name, prefix, key_hash, user_id, permissions, is_active, expires_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING id`,
		key.Code, key.Identifier, key.Name, key.Prefix, key.KeyHash, key.UserID,
		permissions, key.IsActive, key.ExpiresAt, key.CreatedAt, key.UpdatedAt,
	).Scan(&key.ID)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create api key: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetAPIKey(ctx context.Context, id int64) (*models.APIKey, error) {
	key, err := scanAPIKey(s.pool.QueryRow(ctx,
		`SELECT `+apiKeyColumns+` FROM api_keys WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get api key: %w", err)
	}
	return key, nil
}

func (s *PostgresStore) GetAPIKeysByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+apiKeyColumns+` FROM api_keys WHERE prefix = $1 AND is_active = TRUE`, prefix)
	if err != nil {
		return nil, fmt.Errorf("get api keys by prefix: %w", err)
	}
	defer rows.Close()

	var keys []*models.APIKey
	for rows.Next() {
		key, err := scanAPIKey(rows)
		if err != nil {
			return nil, fmt.Errorf("scan api key: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

func (s *PostgresStore) ListAPIKeysForUser(ctx context.Context, userID int64) ([]*models.APIKey, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+apiKeyColumns+` FROM api_keys WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	defer rows.Close()

	var keys []*models.APIKey
	for rows.Next() {
		key, err := scanAPIKey(rows)
		if err != nil {
			return nil, fmt.Errorf("scan api key: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

func (s *PostgresStore) UpdateAPIKey(ctx context.Context, key *models.APIKey) error {
	permissions, err := encodeStrings(key.Permissions)
	if err != nil {
		return fmt.Errorf("encode permissions: %w", err)
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE api_keys SET name = $2, identifier = $3, is_active = $4, expires_at = $5, permissions = $6, updated_at = NOW()
		 WHERE id = $1`,
		key.ID, key.Name, key.Identifier, key.IsActive, key.ExpiresAt, permissions)
	if err != nil {
		return fmt.Errorf("update api key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) TouchAPIKey(ctx context.Context, id int64, usedAt time.Time) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE api_keys SET last_used_at = $2, updated_at = $2 WHERE id = $1`, id, usedAt)
	if err != nil {
		return fmt.Errorf("touch api key: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteAPIKey(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM api_keys WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete api key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Devices ---

const deviceColumns = `id, identifier, mac, last_ip, active, description, metadata, last_connection_at, created_at, updated_at`

func scanDevice(row rowScanner) (*models.Device, error) {
	var d models.Device
	var metadata []byte
	if err := row.Scan(&d.ID, &d.Identifier, &d.MAC, &d.LastIP, &d.Active,
		&d.Description, &metadata, &d.LastConnectionAt, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	d.Metadata = decodeMap(metadata)
	return &d, nil
}

func (s *PostgresStore) CreateDevice(ctx context.Context, d *models.Device) error {
	metadata, err := encodeMap(d.Metadata)
	if err != nil {
		return fmt.Errorf("encode device metadata: %w", err)
	}
	err = s.pool.QueryRow(ctx,
		`INSERT INTO devices (identifier, mac, last_ip, active, description, metadata, last_connection_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id`,
		d.Identifier, d.MAC, d.LastIP, d.Active, d.Description, metadata,
		d.LastConnectionAt, d.CreatedAt, d.UpdatedAt,
	).Scan(&d.ID)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create device: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetDevice(ctx context.Context, id int64, identifier string) (*models.Device, error) {
	d, err := scanDevice(s.pool.QueryRow(ctx,
		`SELECT `+deviceColumns+` FROM devices WHERE id = $1 AND identifier = $2`, id, identifier))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get device: %w", err)
	}
	return d, nil
}

func (s *PostgresStore) GetDeviceByMAC(ctx context.Context, identifier, mac string) (*models.Device, error) {
	d, err := scanDevice(s.pool.QueryRow(ctx,
		`SELECT `+deviceColumns+` FROM devices WHERE identifier = $1 AND mac = $2`, identifier, mac))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get device by mac: %w", err)
	}
	return d, nil
}

func (s *PostgresStore) ListDevices(ctx context.Context, identifier string) ([]*models.Device, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+deviceColumns+` FROM devices WHERE identifier = $1 ORDER BY created_at DESC`, identifier)
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	defer rows.Close()

	var devices []*models.Device
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan device: %w", err)
		}
		devices = append(devices, d)
	}
	return devices, rows.Err()
}

func (s *PostgresStore) UpdateDevice(ctx context.Context, d *models.Device) error {
	metadata, err := encodeMap(d.Metadata)
	if err != nil {
		return fmt.Errorf("encode device metadata: %w", err)
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE devices SET mac = $3, last_ip = $4, active = $5, description = $6, metadata = $7, last_connection_at = $8, updated_at = NOW()
		 WHERE id = $1 AND identifier = $2`,
		d.ID, d.Identifier, d.MAC, d.LastIP, d.Active, d.Description, metadata, d.LastConnectionAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("update device: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteDevice(ctx context.Context, id int64, identifier string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM devices WHERE id = $1 AND identifier = $2`, id, identifier)
	if err != nil {
		return fmt.Errorf("delete device: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Sensors ---

const sensorColumns = `id, identifier, device_id, code, name, description, active, kind, metadata, last_connection_at, created_at, updated_at`

func scanSensor(row rowScanner) (*models.Sensor, error) {
	var sn models.Sensor
	var metadata []byte
	if err := row.Scan(&sn.ID, &sn.Identifier, &sn.DeviceID, &sn.Code, &sn.Name,
		&sn.Description, &sn.Active, &sn.Kind, &metadata, &sn.LastConnectionAt,
		&sn.CreatedAt, &sn.UpdatedAt); err != nil {
		return nil, err
	}
	sn.Metadata = decodeMap(metadata)
	return &sn, nil
}

func (s *PostgresStore) CreateSensor(ctx context.Context, sn *models.Sensor) error {
	metadata, err := encodeMap(sn.Metadata)
	if err != nil {
		return fmt.Errorf("encode sensor metadata: %w", err)
	}
	err = s.pool.QueryRow(ctx,
		`INSERT INTO sensors (identifier, device_id, code, name, description, active, kind, metadata, last_connection_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING id`,
		sn.Identifier, sn.DeviceID, sn.Code, sn.Name, sn.Description, sn.Active,
		sn.Kind, metadata, sn.LastConnectionAt, sn.CreatedAt, sn.UpdatedAt,
	).Scan(&sn.ID)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create sensor: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetSensor(ctx context.Context, id int64, identifier string) (*models.Sensor, error) {
	sn, err := scanSensor(s.pool.QueryRow(ctx,
		`SELECT `+sensorColumns+` FROM sensors WHERE id = $1 AND identifier = $2`, id, identifier))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get sensor: %w", err)
	}
	return sn, nil
}

func (s *PostgresStore) GetSensorByCode(ctx context.Context, identifier string, deviceID int64, code int) (*models.Sensor, error) {
	sn, err := scanSensor(s.pool.QueryRow(ctx,
		`SELECT `+sensorColumns+` FROM sensors WHERE identifier = $1 AND device_id = $2 AND code = $3`,
		identifier, deviceID, code))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get sensor by code: %w", err)
	}
	return sn, nil
}

func (s *PostgresStore) ListSensors(ctx context.Context, identifier string, deviceID *int64) ([]*models.Sensor, error) {
	query := `SELECT ` + sensorColumns + ` FROM sensors WHERE identifier = $1`
	args := []any{identifier}
	if deviceID != nil {
		query += ` AND device_id = $2`
		args = append(args, *deviceID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sensors: %w", err)
	}
	defer rows.Close()

	var sensors []*models.Sensor
	for rows.Next() {
		sn, err := scanSensor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sensor: %w", err)
		}
		sensors = append(sensors, sn)
	}
	return sensors, rows.Err()
}

func (s *PostgresStore) UpdateSensor(ctx context.Context, sn *models.Sensor) error {
	metadata, err := encodeMap(sn.Metadata)
	if err != nil {
		return fmt.Errorf("encode sensor metadata: %w", err)
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE sensors SET device_id = $3, code = $4, name = $5, description = $6, active = $7, kind = $8, metadata = $9, last_connection_at = $10, updated_at = NOW()
		 WHERE id = $1 AND identifier = $2`,
		sn.ID, sn.Identifier, sn.DeviceID, sn.Code, sn.Name, sn.Description,
		sn.Active, sn.Kind, metadata, sn.LastConnectionAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("update sensor: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteSensor(ctx context.Context, id int64, identifier string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM sensors WHERE id = $1 AND identifier = $2`, id, identifier)
	if err != nil {
		return fmt.Errorf("delete sensor: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Readings ---

const readingColumns = `id, unique_id, identifier, sensor_id, entry, kind, value, opened, grouping, datetime, opened_at, closed_at, created_at, updated_at`

func scanReading(row rowScanner) (*models.Reading, error) {
	var r models.Reading
	var value []byte
	if err := row.Scan(&r.ID, &r.UniqueID, &r.Identifier, &r.SensorID, &r.Entry,
		&r.Kind, &value, &r.Opened, &r.Grouping, &r.Datetime, &r.OpenedAt,
		&r.ClosedAt, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	r.Value = value
	return &r, nil
}

func (s *PostgresStore) CreateReading(ctx context.Context, r *models.Reading) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO readings (unique_id, identifier, sensor_id, entry, kind, value, opened, grouping, datetime, opened_at, closed_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 RETURNING id`,
		r.UniqueID, r.Identifier, r.SensorID, r.Entry, r.Kind, encodeValue(r.Value),
		r.Opened, r.Grouping, r.Datetime, r.OpenedAt, r.ClosedAt, r.CreatedAt, r.UpdatedAt,
	).Scan(&r.ID)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create reading: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetReading(ctx context.Context, id int64, identifier string) (*models.Reading, error) {
	r, err := scanReading(s.pool.QueryRow(ctx,
		`SELECT `+readingColumns+` FROM readings WHERE id = $1 AND identifier = $2`, id, identifier))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get reading: %w", err)
	}
	return r, nil
}

func (s *PostgresStore) GetReadingByUniqueID(ctx context.Context, identifier string, uniqueID int64) (*models.Reading, error) {
	r, err := scanReading(s.pool.QueryRow(ctx,
		`SELECT `+readingColumns+` FROM readings WHERE identifier = $1 AND unique_id = $2`, identifier, uniqueID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get reading by unique id: %w", err)
	}
	return r, nil
}

var readingSortColumns = map[string]string{
	"datetime":   "datetime",
	"created_at": "created_at",
	"id":         "id",
}

func (s *PostgresStore) ListReadings(ctx context.Context, filter ReadingFilter) ([]*models.Reading, error) {
	conditions := []string{"identifier = $1"}
	args := []any{filter.Identifier}
	argIdx := 2

	if filter.SensorID != nil {
		conditions = append(conditions, fmt.Sprintf("sensor_id = $%d", argIdx))
		args = append(args, *filter.SensorID)
		argIdx++
	}

	orderBy, ok := readingSortColumns[filter.OrderBy]
	if !ok {
		orderBy = "datetime"
	}
	direction := "DESC"
	if strings.EqualFold(filter.OrderDirection, "asc") {
		direction = "ASC"
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}

	query := fmt.Sprintf(
		`SELECT %s FROM readings WHERE %s ORDER BY %s %s LIMIT $%d`,
		readingColumns, strings.Join(conditions, " AND "), orderBy, direction, argIdx)
	args = append(args, limit)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list readings: %w", err)
	}
	defer rows.Close()

	var readings []*models.Reading
	for rows.Next() {
		r, err := scanReading(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reading: %w", err)
		}
		readings = append(readings, r)
	}
	return readings, rows.Err()
}

func (s *PostgresStore) UpdateReading(ctx context.Context, r *models.Reading) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE readings SET entry = $3, kind = $4, value = $5, opened = $6, grouping = $7, datetime = $8, opened_at = $9, closed_at = $10, updated_at = NOW()
		 WHERE id = $1 AND identifier = $2`,
		r.ID, r.Identifier, r.Entry, r.Kind, encodeValue(r.Value), r.Opened,
		r.Grouping, r.Datetime, r.OpenedAt, r.ClosedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("update reading: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteReading(ctx context.Context, id int64, identifier string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM readings WHERE id = $1 AND identifier = $2`, id, identifier)
	if err != nil {
		return fmt.Errorf("delete reading: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}
