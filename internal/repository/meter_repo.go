package repository

import (
	"context"
	"database/sql"
	"errors"
)

// MeterReadingRepository persists per-meter readings (append-only).
type MeterReadingRepository struct {
	db *sql.DB
}

// NewMeterReadingRepository returns repository instance.
func NewMeterReadingRepository(db *sql.DB) *MeterReadingRepository {
	return &MeterReadingRepository{db: db}
}

// LastReading returns the most recent reading for a meter, or 0 when the
// meter has no recorded readings yet.
func (r *MeterReadingRepository) LastReading(ctx context.Context, meterNo string) (int64, error) {
	const query = `
		SELECT reading
		FROM meter_readings
		WHERE meter_no = $1
		ORDER BY id DESC
		LIMIT 1
	`
	var reading int64
	if err := r.db.QueryRowContext(ctx, query, meterNo).Scan(&reading); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return reading, nil
}

// Append records a new reading for a meter.
func (r *MeterReadingRepository) Append(ctx context.Context, meterNo string, reading int64) error {
	const query = `
		INSERT INTO meter_readings (meter_no, reading, recorded_at)
		VALUES ($1, $2, NOW())
	`
	_, err := r.db.ExecContext(ctx, query, meterNo, reading)
	return err
}
