package services

import (
	"context"
	"time"

	"github.com/rafabene/onemore-backend/internal/domain/entities"
	"github.com/rafabene/onemore-backend/internal/domain/ports"
	"github.com/rafabene/onemore-backend/internal/domain/repositories"
)

// Notifier grava notificações na transação corrente e as publica depois do commit
type Notifier struct {
	notifications repositories.NotificationRepository
	publisher     ports.NotificationPublisher
	logger        ports.Logger
}

// NewNotifier cria um Notifier; publisher pode ser nil
func NewNotifier(
	notifications repositories.NotificationRepository,
	publisher ports.NotificationPublisher,
	logger ports.Logger,
) *Notifier {
	return &Notifier{
		notifications: notifications,
		publisher:     publisher,
		logger:        logger,
	}
}

// Create grava uma notificação SYSTEM vinculada aos usuários
func (n *Notifier) Create(ctx context.Context, message string, now time.Time, userIDs ...string) (*entities.Notification, error) {
	notification := entities.NewSystemNotification(message, now, userIDs...)
	if err := n.notifications.Create(ctx, notification); err != nil {
		return nil, err
	}
	return notification, nil
}

// Publish entrega aos usuários conectados; só deve ser chamado após o commit
func (n *Notifier) Publish(notifications ...*entities.Notification) {
	if n.publisher == nil {
		return
	}
	for _, notification := range notifications {
		if notification != nil {
			n.publisher.Publish(notification)
		}
	}
}

// ListForUser retorna as notificações ativas do usuário, mais recentes primeiro
func (n *Notifier) ListForUser(ctx context.Context, userID string) ([]*entities.Notification, error) {
	return n.notifications.ListByUser(ctx, userID)
}
