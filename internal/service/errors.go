package service

import (
	"errors"

	"powerbill/internal/repository"
)

var (
	// ErrInvalidUnits is returned when billed units are negative, or not
	// positive where a positive consumption is required.
	ErrInvalidUnits = errors.New("billing: invalid units")
	// ErrBillNotFound is returned for payments against unknown bills.
	ErrBillNotFound = errors.New("billing: bill not found")
	// ErrBillAlreadyPaid is returned when paying a bill a second time.
	ErrBillAlreadyPaid = errors.New("payment: bill already paid")
	// ErrNonMonotonicReading is returned when a reading does not exceed the
	// meter's last recorded reading.
	ErrNonMonotonicReading = errors.New("meter: reading must exceed last recorded reading")
	// ErrNegativeReading is returned for readings below zero.
	ErrNegativeReading = errors.New("meter: reading cannot be negative")
	// ErrDuplicateUser is returned when signing up with an email or meter
	// number that is already registered.
	ErrDuplicateUser = errors.New("auth: email or meter number already registered")
	// ErrInvalidCredentials represents login or password-change failure.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrPasswordTooShort is returned for new passwords under 6 characters.
	ErrPasswordTooShort = errors.New("auth: password must be at least 6 characters")
)

// translateBillErr maps storage sentinels to service-level errors so HTTP
// handlers only depend on this package.
func translateBillErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrBillNotFound):
		return ErrBillNotFound
	case errors.Is(err, repository.ErrBillAlreadyPaid):
		return ErrBillAlreadyPaid
	}
	return err
}
