package publisher

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/LavaJover/shvark-dish-request-service/internal/domain"
	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl"
	"github.com/segmentio/kafka-go/sasl/plain"
	"github.com/segmentio/kafka-go/sasl/scram"
)

type KafkaConfig struct {
	Brokers    []string
	Topic      string
	Username   string
	Password   string
	Mechanism  string // "", PLAIN, SCRAM-SHA-256, SCRAM-SHA-512
	TLSEnabled bool
}

// KafkaPublisher writes offer status changes asynchronously; delivery failures are
// logged from the writer's completion callback.
type KafkaPublisher struct {
	writer *kafka.Writer
	logger *slog.Logger
}

func NewKafkaPublisher(cfg KafkaConfig, logger *slog.Logger) (*KafkaPublisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("kafka topic is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	mechanism, err := saslMechanism(cfg)
	if err != nil {
		return nil, err
	}
	transport := &kafka.Transport{SASL: mechanism}
	if cfg.TLSEnabled {
		transport.TLS = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	p := &KafkaPublisher{logger: logger}
	p.writer = &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		Transport:    transport,
		RequiredAcks: kafka.RequireOne,
		Async:        true,
		BatchTimeout: 50 * time.Millisecond,
		Completion:   p.onCompletion,
	}
	return p, nil
}

func saslMechanism(cfg KafkaConfig) (sasl.Mechanism, error) {
	switch strings.ToUpper(cfg.Mechanism) {
	case "":
		return nil, nil
	case "PLAIN":
		return plain.Mechanism{Username: cfg.Username, Password: cfg.Password}, nil
	case "SCRAM-SHA-256":
		return scram.Mechanism(scram.SHA256, cfg.Username, cfg.Password)
	case "SCRAM-SHA-512":
		return scram.Mechanism(scram.SHA512, cfg.Username, cfg.Password)
	}
	return nil, fmt.Errorf("unsupported kafka sasl mechanism %q", cfg.Mechanism)
}

func (p *KafkaPublisher) PublishOfferEvent(ctx context.Context, event domain.OfferStatusEvent, offer *domain.Offer) error {
	msg, err := NewOfferMessage(event, offer)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}

// NewOfferMessage keys the message by request id so every offer of one request lands in
// the same partition, in order.
func NewOfferMessage(event domain.OfferStatusEvent, offer *domain.Offer) (kafka.Message, error) {
	payload := OfferEvent{
		EventType:   "offer." + string(event.ToStatus),
		OfferID:     offer.ID,
		RequestID:   offer.RequestID,
		SellerID:    offer.SellerID,
		CustomerID:  offer.CustomerID,
		FromStatus:  string(event.FromStatus),
		Status:      string(event.ToStatus),
		Reason:      string(event.Reason),
		ActorID:     event.ActorID,
		Price:       offer.Price,
		Fulfillment: string(offer.Fulfillment.Kind),
		ExpiresAt:   offer.ExpiresAt,
		OccurredAt:  event.OccurredAt,
	}
	if payload.Status == string(domain.OfferPending) {
		payload.EventType = "offer.submitted"
	}

	value, err := json.Marshal(payload)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal offer event: %w", err)
	}
	return kafka.Message{
		Key:   []byte(offer.RequestID),
		Value: value,
		Time:  event.OccurredAt,
	}, nil
}

func (p *KafkaPublisher) onCompletion(messages []kafka.Message, err error) {
	if err != nil {
		p.logger.Error("failed to deliver offer events", "count", len(messages), "error", err)
	}
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
