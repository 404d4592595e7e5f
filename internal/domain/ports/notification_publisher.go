package ports

import "github.com/rafabene/onemore-backend/internal/domain/entities"

// NotificationPublisher entrega notificações recém-criadas aos usuários conectados
type NotificationPublisher interface {
	Publish(notification *entities.Notification)
}
