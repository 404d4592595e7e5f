package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rafabene/onemore-backend/internal/domain/entities"
	"github.com/rafabene/onemore-backend/internal/domain/repositories"
)

// NotificationRepository implementa repositories.NotificationRepository
type NotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository cria um novo NotificationRepository
func NewNotificationRepository(db *gorm.DB) repositories.NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, notification *entities.Notification) error {
	if notification.ID == "" {
		notification.ID = uuid.NewString()
	}

	model := &NotificationModel{
		ID:        notification.ID,
		Message:   notification.Message,
		Type:      string(notification.Type),
		CreatedAt: toMillis(notification.CreatedAt),
	}

	links := make([]UserNotificationModel, 0, len(notification.UserIDs))
	for _, userID := range notification.UserIDs {
		links = append(links, UserNotificationModel{UserID: userID, NotificationID: model.ID})
	}

	err := dbFromContext(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(model).Error; err != nil {
			return err
		}
		if len(links) == 0 {
			return nil
		}
		return tx.Create(&links).Error
	})
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	notification.CreatedAt = fromMillis(model.CreatedAt)
	return nil
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID string) ([]*entities.Notification, error) {
	var models []*NotificationModel

	err := dbFromContext(ctx, r.db).
		Select("notifications.*").
		Joins("JOIN user_notifications un ON un.notification_id = notifications.id").
		Where("un.user_id = ? AND notifications.deleted_at IS NULL", userID).
		Order("notifications.created_at DESC, notifications.id DESC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	notifications := make([]*entities.Notification, 0, len(models))
	for _, m := range models {
		notifications = append(notifications, &entities.Notification{
			ID:        m.ID,
			Message:   m.Message,
			Type:      entities.NotificationType(m.Type),
			UserIDs:   []string{userID},
			CreatedAt: fromMillis(m.CreatedAt),
			DeletedAt: fromMillisPtr(m.DeletedAt),
		})
	}
	return notifications, nil
}
