package dto

import (
	"time"

	"github.com/rafabene/onemore-backend/internal/domain/entities"
	"github.com/rafabene/onemore-backend/internal/domain/repositories"
	"github.com/rafabene/onemore-backend/internal/services"
)

// ListUsersQuery são os filtros aceitos em GET /admin/users
type ListUsersQuery struct {
	PageQuery
	Search string `form:"search" json:"search"`
	Role   string `form:"role" json:"role"`
}

func (q ListUsersQuery) ToQuery() services.UserListQuery {
	return services.UserListQuery{
		Page:   q.Page,
		Limit:  q.Limit,
		Search: q.Search,
		Role:   q.Role,
	}
}

// UpdateRoleRequest representa a troca de papel de um usuário
type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// ActivityLogResponse representa uma ação administrativa registrada
type ActivityLogResponse struct {
	ID           string       `json:"id"`
	Action       string       `json:"action"`
	TargetUserID string       `json:"target_user_id"`
	Details      string       `json:"details"`
	CreatedAt    time.Time    `json:"created_at"`
	Admin        *UserSummary `json:"admin,omitempty"`
}

func ToActivityLogResponse(log *entities.ActivityLog) ActivityLogResponse {
	response := ActivityLogResponse{
		ID:           log.ID,
		Action:       string(log.Action),
		TargetUserID: log.TargetUserID,
		Details:      log.Details,
		CreatedAt:    log.CreatedAt,
	}
	if log.Admin != nil {
		response.Admin = &UserSummary{
			ID:        log.Admin.ID,
			Email:     log.Admin.Email.String(),
			FirstName: log.Admin.FirstName,
			LastName:  log.Admin.LastName,
		}
	}
	return response
}

// ToPageMetadata converte a metadata de paginação do repositório
func ToPageMetadata(m repositories.PageMetadata) PageMetadata {
	return PageMetadata{
		Total:      m.Total,
		Page:       m.Page,
		Limit:      m.Limit,
		TotalPages: m.TotalPages,
	}
}

func ToUserPage(page *repositories.Page[*entities.User]) PageResponse[UserResponse] {
	return PageResponse[UserResponse]{
		Data:     ToUserResponses(page.Data),
		Metadata: ToPageMetadata(page.Metadata),
	}
}

func ToActivityLogPage(page *repositories.Page[*entities.ActivityLog]) PageResponse[ActivityLogResponse] {
	data := make([]ActivityLogResponse, len(page.Data))
	for i, log := range page.Data {
		data[i] = ToActivityLogResponse(log)
	}
	return PageResponse[ActivityLogResponse]{
		Data:     data,
		Metadata: ToPageMetadata(page.Metadata),
	}
}
