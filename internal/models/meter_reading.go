package models

import "time"

// MeterReading is one recorded reading for a meter. Readings are append-only
// and strictly increasing per meter.
type MeterReading struct {
	ID         int64     `db:"id" json:"id"`
	MeterNo    string    `db:"meter_no" json:"meter_no"`
	Reading    int64     `db:"reading" json:"reading"`
	RecordedAt time.Time `db:"recorded_at" json:"recorded_at"`
}
