package queue

import (
	"context"
	"errors"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/rafabene/onemore-backend/internal/domain/ports"
	"github.com/rafabene/onemore-backend/internal/infrastructure/config"
)

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// EmailConsumer lê eventos de email e entrega pelo mailer configurado
type EmailConsumer struct {
	reader messageReader
	mailer ports.Mailer
	logger ports.Logger
}

func NewEmailConsumer(cfg config.KafkaConfig, mailer ports.Mailer, logger ports.Logger) *EmailConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		GroupID:  cfg.GroupID,
		Topic:    cfg.Topic,
		MinBytes: 1,
		MaxBytes: 10e6,
		Dialer:   newDialer(cfg),
	})
	return newEmailConsumer(reader, mailer, logger)
}

func newEmailConsumer(reader messageReader, mailer ports.Mailer, logger ports.Logger) *EmailConsumer {
	return &EmailConsumer{reader: reader, mailer: mailer, logger: logger}
}

// Run consome até o contexto ser cancelado.
// Eventos inválidos são descartados; falhas de entrega são logadas e o offset segue.
func (c *EmailConsumer) Run(ctx context.Context) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("failed to fetch email event: %w", err)
		}

		if err := c.HandleMessage(ctx, msg.Value); err != nil {
			c.logger.Error("Failed to handle email event",
				"partition", msg.Partition,
				"offset", msg.Offset,
				"error", err,
			)
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("failed to commit email event: %w", err)
		}
	}
}

// HandleMessage decodifica um evento e despacha para o mailer
func (c *EmailConsumer) HandleMessage(ctx context.Context, value []byte) error {
	event, err := decodeEmailEvent(value)
	if err != nil {
		return err
	}

	switch event.Type {
	case EmailEventVerification:
		return c.mailer.SendVerificationEmail(ctx, event.Email, event.Token)
	case EmailEventPasswordReset:
		return c.mailer.SendPasswordResetEmail(ctx, event.Email, event.Token)
	default:
		return fmt.Errorf("unknown email event type %q", event.Type)
	}
}

func (c *EmailConsumer) Close() error {
	return c.reader.Close()
}
