package events

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"powerbill/internal/models"
)

// Event types emitted by the billing pipeline.
const (
	TypeBillIssued = "bill.issued"
	TypeBillPaid   = "bill.paid"
)

// BillEvent is the wire payload published for bill lifecycle changes.
type BillEvent struct {
	Type       string      `json:"type"`
	Bill       models.Bill `json:"bill"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// Publisher emits bill lifecycle events.
type Publisher interface {
	BillIssued(ctx context.Context, bill *models.Bill) error
	BillPaid(ctx context.Context, bill *models.Bill) error
}

// KafkaPublisher sends bill events to a Kafka topic, keyed by user id so
// one user's events stay ordered within a partition.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	logger   *zap.Logger
}

// NewKafkaPublisher builds a sync producer against the given brokers.
func NewKafkaPublisher(brokers []string, topic string, logger *zap.Logger) (*KafkaPublisher, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForLocal
	cfg.Producer.Compression = sarama.CompressionSnappy
	cfg.Producer.Retry.Max = 3
	cfg.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}

	return &KafkaPublisher{
		producer: producer,
		topic:    topic,
		logger:   logger,
	}, nil
}

// BillIssued publishes a bill.issued event.
func (p *KafkaPublisher) BillIssued(ctx context.Context, bill *models.Bill) error {
	return p.publish(TypeBillIssued, bill)
}

// BillPaid publishes a bill.paid event.
func (p *KafkaPublisher) BillPaid(ctx context.Context, bill *models.Bill) error {
	return p.publish(TypeBillPaid, bill)
}

func (p *KafkaPublisher) publish(eventType string, bill *models.Bill) error {
	payload, err := json.Marshal(BillEvent{
		Type:       eventType,
		Bill:       *bill,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(strconv.FormatInt(bill.UserID, 10)),
		Value: sarama.ByteEncoder(payload),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return err
	}

	p.logger.Debug("bill event published",
		zap.String("type", eventType),
		zap.Int64("bill_id", bill.ID),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset),
	)
	return nil
}

// Close shuts down the underlying producer.
func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

// NoopPublisher drops all events. Used when no brokers are configured.
type NoopPublisher struct{}

// BillIssued implements Publisher.
func (NoopPublisher) BillIssued(context.Context, *models.Bill) error { return nil }

// BillPaid implements Publisher.
func (NoopPublisher) BillPaid(context.Context, *models.Bill) error { return nil }
