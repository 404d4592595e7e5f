package repositories

import (
	"context"

	"github.com/rafabene/onemore-backend/internal/domain/entities"
)

// ActivityLogRepository define a interface para o log de ações administrativas
type ActivityLogRepository interface {
	Create(ctx context.Context, log *entities.ActivityLog) error
	// List retorna logs não deletados com o admin preenchido, mais recentes primeiro
	List(ctx context.Context, p Pagination) ([]*entities.ActivityLog, int64, error)
}
