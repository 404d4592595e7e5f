package entities

import "time"

// NotificationType classifica notificações
type NotificationType string

const (
	NotificationTypeSystem NotificationType = "SYSTEM"
)

// Mensagens de notificações emitidas pelo próprio sistema
const (
	MessageWelcome       = "Welcome to 1More Game!"
	MessageEmailVerified = "Email verified successfully"
	MessageRoleUpdated   = "Your account role was updated to %s"
)

// Notification é uma mensagem compartilhada por um ou mais usuários
type Notification struct {
	ID        string
	Message   string
	Type      NotificationType
	UserIDs   []string
	CreatedAt time.Time
	DeletedAt *time.Time
}

// NewSystemNotification cria uma notificação do tipo SYSTEM
func NewSystemNotification(message string, now time.Time, userIDs ...string) *Notification {
	return &Notification{
		Message:   message,
		Type:      NotificationTypeSystem,
		UserIDs:   userIDs,
		CreatedAt: now,
	}
}

// IsDeleted verifica se a notificação foi removida (soft delete)
func (n *Notification) IsDeleted() bool {
	return n.DeletedAt != nil
}
