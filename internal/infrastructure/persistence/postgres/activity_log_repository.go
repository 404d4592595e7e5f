package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rafabene/onemore-backend/internal/domain/entities"
	"github.com/rafabene/onemore-backend/internal/domain/repositories"
)

// ActivityLogRepository implementa repositories.ActivityLogRepository
type ActivityLogRepository struct {
	db    *gorm.DB
	users *UserRepository
}

// NewActivityLogRepository cria um novo ActivityLogRepository
func NewActivityLogRepository(db *gorm.DB) repositories.ActivityLogRepository {
	return &ActivityLogRepository{db: db, users: &UserRepository{db: db}}
}

func (r *ActivityLogRepository) Create(ctx context.Context, log *entities.ActivityLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}

	model := &ActivityLogModel{
		ID:           log.ID,
		AdminID:      log.AdminID,
		Action:       string(log.Action),
		TargetUserID: log.TargetUserID,
		Details:      log.Details,
		CreatedAt:    toMillis(log.CreatedAt),
	}

	if err := dbFromContext(ctx, r.db).Omit("Admin").Create(model).Error; err != nil {
		return fmt.Errorf("failed to create activity log: %w", err)
	}

	log.CreatedAt = fromMillis(model.CreatedAt)
	return nil
}

func (r *ActivityLogRepository) List(ctx context.Context, p repositories.Pagination) ([]*entities.ActivityLog, int64, error) {
	p = p.Normalize()
	db := dbFromContext(ctx, r.db)

	var total int64
	if err := db.Model(&ActivityLogModel{}).Where("deleted_at IS NULL").Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count activity logs: %w", err)
	}
	if p.Exceeds(total) {
		return []*entities.ActivityLog{}, total, nil
	}
	offset, _ := p.Offset()

	var models []*ActivityLogModel
	err := db.Preload("Admin").
		Where("deleted_at IS NULL").
		Order("created_at DESC, id DESC").
		Limit(p.Limit).
		Offset(offset).
		Find(&models).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list activity logs: %w", err)
	}

	logs := make([]*entities.ActivityLog, 0, len(models))
	for _, m := range models {
		entry := &entities.ActivityLog{
			ID:           m.ID,
			AdminID:      m.AdminID,
			Action:       entities.ActivityAction(m.Action),
			TargetUserID: m.TargetUserID,
			Details:      m.Details,
			CreatedAt:    fromMillis(m.CreatedAt),
			DeletedAt:    fromMillisPtr(m.DeletedAt),
		}
		if m.Admin != nil {
			admin, err := r.users.toEntity(m.Admin)
			if err != nil {
				return nil, 0, err
			}
			entry.Admin = admin
		}
		logs = append(logs, entry)
	}

	return logs, total, nil
}
