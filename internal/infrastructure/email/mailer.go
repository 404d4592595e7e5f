package email

import (
	"context"

	"github.com/rafabene/onemore-backend/internal/domain/ports"
	"github.com/rafabene/onemore-backend/internal/domain/valueobjects"
)

// Mailer implementa ports.Mailer montando a mensagem e delegando a entrega
type Mailer struct {
	composer *Composer
	sender   Sender
	logger   ports.Logger
}

func NewMailer(composer *Composer, sender Sender, logger ports.Logger) *Mailer {
	return &Mailer{composer: composer, sender: sender, logger: logger}
}

func (m *Mailer) SendVerificationEmail(ctx context.Context, to, token string) error {
	msg, err := m.composer.Verification(to, token)
	if err != nil {
		return err
	}
	return m.deliver(ctx, msg)
}

func (m *Mailer) SendPasswordResetEmail(ctx context.Context, to, token string) error {
	msg, err := m.composer.PasswordReset(to, token)
	if err != nil {
		return err
	}
	return m.deliver(ctx, msg)
}

func (m *Mailer) deliver(ctx context.Context, msg *Message) error {
	if err := m.sender.Send(ctx, msg); err != nil {
		return err
	}
	m.logger.Info("Email sent", "to_domain", valueobjects.DomainOf(msg.To), "subject", msg.Subject)
	return nil
}

// LogSender apenas registra o envio; usado com EMAIL_TRANSPORT=log
type LogSender struct {
	logger ports.Logger
}

func NewLogSender(logger ports.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, msg *Message) error {
	// Sem corpo: o link carrega o token em texto puro
	s.logger.Debug("Email delivery skipped (log transport)", "to_domain", valueobjects.DomainOf(msg.To), "subject", msg.Subject)
	return nil
}
