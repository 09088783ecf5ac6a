package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// MeterRepository defines the reading-log storage contract.
type MeterRepository interface {
	LastReading(ctx context.Context, meterNo string) (int64, error)
	Append(ctx context.Context, meterNo string, reading int64) error
}

// MeterService maintains the append-only, strictly increasing reading log
// per meter.
type MeterService struct {
	readings MeterRepository
	gateway  MeterGateway
	locks    *keyedMutex
	logger   *zap.Logger
}

// NewMeterService builds service.
func NewMeterService(readings MeterRepository, gateway MeterGateway, logger *zap.Logger) *MeterService {
	return &MeterService{
		readings: readings,
		gateway:  gateway,
		locks:    newKeyedMutex(),
		logger:   logger,
	}
}

// LastReading returns the meter's most recent recorded reading (0 when the
// log is empty).
func (s *MeterService) LastReading(ctx context.Context, meterNo string) (int64, error) {
	return s.readings.LastReading(ctx, meterNo)
}

// NextReading fetches a fresh reading from the meter feed, guaranteed to be
// strictly greater than the last recorded one.
func (s *MeterService) NextReading(ctx context.Context, meterNo string) (int64, error) {
	last, err := s.readings.LastReading(ctx, meterNo)
	if err != nil {
		return 0, err
	}
	return s.gateway.NextReading(ctx, meterNo, last)
}

// RecordReading appends a reading to the meter's log. Validation failures
// leave the log untouched. The read-check-append cycle is serialized per
// meter.
func (s *MeterService) RecordReading(ctx context.Context, meterNo string, reading int64) error {
	if reading < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeReading, reading)
	}

	s.locks.Lock(meterNo)
	defer s.locks.Unlock(meterNo)

	last, err := s.readings.LastReading(ctx, meterNo)
	if err != nil {
		return err
	}
	if reading <= last {
		return fmt.Errorf("%w: %d <= %d", ErrNonMonotonicReading, reading, last)
	}

	if err := s.readings.Append(ctx, meterNo, reading); err != nil {
		return fmt.Errorf("meter: append reading: %w", err)
	}

	s.logger.Info("meter reading recorded",
		zap.String("meter_no", meterNo),
		zap.Int64("reading", reading),
	)
	return nil
}
