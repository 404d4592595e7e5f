package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/rafabene/onemore-backend/internal/domain/ports"
	"github.com/rafabene/onemore-backend/internal/domain/valueobjects"
	"github.com/rafabene/onemore-backend/internal/infrastructure/config"
)

const publishTimeout = 5 * time.Second

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// EmailProducer implementa ports.Mailer publicando eventos no Kafka;
// a entrega SMTP fica com o cmd/mailer
type EmailProducer struct {
	writer messageWriter
	logger ports.Logger
	now    func() time.Time
}

func NewEmailProducer(cfg config.KafkaConfig, logger ports.Logger) *EmailProducer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Transport:    newTransport(cfg),
		WriteTimeout: 10 * time.Second,
	}
	return newEmailProducer(writer, logger)
}

func newEmailProducer(writer messageWriter, logger ports.Logger) *EmailProducer {
	return &EmailProducer{writer: writer, logger: logger, now: time.Now}
}

func (p *EmailProducer) SendVerificationEmail(ctx context.Context, to, token string) error {
	return p.publish(ctx, EmailEventVerification, to, token)
}

func (p *EmailProducer) SendPasswordResetEmail(ctx context.Context, to, token string) error {
	return p.publish(ctx, EmailEventPasswordReset, to, token)
}

func (p *EmailProducer) Close() error {
	return p.writer.Close()
}

func (p *EmailProducer) publish(ctx context.Context, eventType EmailEventType, to, token string) error {
	value, err := json.Marshal(EmailEvent{
		Type:       eventType,
		Email:      to,
		Token:      token,
		OccurredAt: p.now().UnixMilli(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode email event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	// Chave pelo destinatário mantém a ordem dos emails de um mesmo usuário
	if err := p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(to), Value: value}); err != nil {
		return fmt.Errorf("failed to publish email event: %w", err)
	}

	p.logger.Debug("Email event published", "type", eventType, "to_domain", valueobjects.DomainOf(to))
	return nil
}
