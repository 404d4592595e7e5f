package repositories

import (
	"context"

	"github.com/rafabene/onemore-backend/internal/domain/entities"
)

// NotificationRepository define a interface para persistência de notificações
type NotificationRepository interface {
	// Create grava a notificação e a vincula a todos os UserIDs
	Create(ctx context.Context, notification *entities.Notification) error
	// ListByUser retorna notificações não deletadas do usuário, mais recentes primeiro
	ListByUser(ctx context.Context, userID string) ([]*entities.Notification, error)
}
