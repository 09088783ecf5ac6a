package models

import "time"

// User is a registered electricity consumer.
type User struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Address      string    `db:"address" json:"address"`
	MeterNo      string    `db:"meter_no" json:"meter_no"`
	Phone        string    `db:"phone" json:"phone"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
